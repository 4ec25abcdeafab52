// Package tracer provides a lightweight tracing abstraction over OpenTelemetry.
//
// Components depend on the Tracer interface rather than on OpenTelemetry APIs,
// so tests can run with NoopTracer and production wiring can use OTelTracer.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span. The returned context carries the span.
	//
	// Example:
	//   ctx, span := t.Start(ctx, tracer.SpanLedgerSubmit,
	//       tracer.String(tracer.AttrContract, "ClaimContract"),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanLedgerSubmit   = "ledger.submit"
	SpanLedgerCall     = "ledger.call"
	SpanIssueVC        = "orchestrator.issue_vc"
	SpanIssuePolicy    = "orchestrator.issue_policy"
	SpanSubmitClaim    = "orchestrator.submit_claim"
	SpanInsurerAction  = "orchestrator.insurer_action"
	SpanCredentialLoad = "issuance.lookup"
)

// Attribute keys.
const (
	AttrContract = "ledger.contract"
	AttrMethod   = "ledger.method"
	AttrTxHash   = "ledger.tx_hash"
	AttrCacheHit = "cache.hit"
	AttrAction   = "claim.action"
	AttrOnchain  = "vc.onchain"
)

// Event names.
const (
	EventSoftWarning = "soft_warning"
	EventTxConfirmed = "ledger.tx_confirmed"
)
