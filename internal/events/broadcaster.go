// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package events

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

// Broadcaster delivers a marshaled envelope to all connected clients. The
// WebSocket hub satisfies this.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Forwarder subscribes to every dashboard topic and forwards the events to
// the Broadcaster as Envelope frames.
type Forwarder struct {
	bus *Bus
	out Broadcaster
}

// NewForwarder creates a forwarder from the bus to the given sink.
func NewForwarder(bus *Bus, out Broadcaster) *Forwarder {
	return &Forwarder{bus: bus, out: out}
}

// forwardedTopics lists the topics surfaced to WebSocket clients.
var forwardedTopics = []string{
	TopicFeedbackSaved,
	TopicAlbumNuked,
	TopicAlbumRestored,
	TopicCoverUpdated,
	TopicPredictionsImported,
}

// Run consumes until ctx is canceled. Implements suture.Service.
func (f *Forwarder) Run(ctx context.Context) error {
	for _, topic := range forwardedTopics {
		ch, err := f.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		topic := topic
		go func() {
			for msg := range ch {
				env := Envelope{Topic: topic, Payload: json.RawMessage(msg.Payload)}
				data, err := json.Marshal(env)
				if err != nil {
					logging.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event envelope")
					msg.Ack()
					continue
				}
				f.out.Broadcast(data)
				msg.Ack()
			}
		}()
	}

	<-ctx.Done()
	return ctx.Err()
}
