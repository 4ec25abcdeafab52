// Package events publishes lifecycle events of policies, credentials and
// claims. Publishing is best effort: failures are logged and counted but
// never fail the operation that produced the event.
package events

import (
	"context"
	"time"
)

// Type names a lifecycle event.
type Type string

const (
	TypePolicyRequested    Type = "policy.requested"
	TypeCredentialIssued   Type = "credential.issued"
	TypeIdentityRegistered Type = "identity.registered"
	TypePolicyIssued       Type = "policy.issued"
	TypeClaimSubmitted     Type = "claim.submitted"
	TypeClaimStatusChanged Type = "claim.status_changed"
)

// Aggregate types.
const (
	AggregatePolicyRequest = "policy_request"
	AggregateCredential    = "credential"
	AggregateIdentity      = "identity"
	AggregatePolicy        = "policy"
	AggregateClaim         = "claim"
)

// Event is a lifecycle fact. OccurredAt and RequestID are filled from the
// request context when empty.
type Event struct {
	Type          Type
	AggregateType string
	AggregateID   string
	RequestID     string
	OccurredAt    time.Time
	Data          map[string]any
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
