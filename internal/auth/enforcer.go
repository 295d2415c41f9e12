// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Roles known to the authorization layer. Every request gets a role:
// authenticated admins from their JWT, everyone else RoleAnonymous.
const (
	RoleAdmin     = "admin"
	RoleAnonymous = "anonymous"
)

// Objects and actions used by the policy. Handlers authorize against
// these rather than URL paths so route refactors cannot silently change
// access rules.
const (
	ObjectPredictions    = "predictions"
	ObjectGraph          = "graph"
	ObjectFeedback       = "feedback"
	ObjectPublicFeedback = "public_feedback"
	ObjectFixer          = "fixer"
	ObjectBackup         = "backup"

	ActionRead  = "read"
	ActionWrite = "write"
)

// casbinModel is the standard RBAC model with role inheritance.
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// casbinPolicy grants anonymous visitors the read-only dashboard plus
// public feedback submission. Admin inherits everything anonymous can do
// and adds the write surfaces.
const casbinPolicy = `
p, anonymous, predictions, read
p, anonymous, graph, read
p, anonymous, feedback, read
p, anonymous, public_feedback, read
p, anonymous, public_feedback, write

p, admin, predictions, write
p, admin, feedback, write
p, admin, fixer, read
p, admin, fixer, write
p, admin, backup, read
p, admin, backup, write

g, admin, anonymous
`

// Enforcer wraps the Casbin enforcer behind the dashboard's role and
// object vocabulary.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the RBAC enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, casbinPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy parses the embedded policy CSV into the enforcer.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// Enforce checks whether the role may perform the action on the object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}
