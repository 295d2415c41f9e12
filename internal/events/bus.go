// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
)

// Bus wraps a GoChannel pub/sub for in-process domain events.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the event bus. Publishes never block: slow subscribers
// buffer up to the channel capacity and the publisher moves on.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewZerologAdapter()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger),
	}
}

// Publish marshals the payload and publishes it on the topic. The message
// UUID is generated here; payloads carry their own timestamps.
func (b *Bus) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic).Inc()
	return nil
}

// Subscribe returns the message channel for a topic. The subscription ends
// when ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
