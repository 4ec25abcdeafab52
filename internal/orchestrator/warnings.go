package orchestrator

import (
	"context"

	"claimchain/internal/platform/tracer"
)

// WarningKind classifies a SoftWarning.
type WarningKind string

const (
	WarningVCVerification  WarningKind = "vc_verification"
	WarningOnchainPolicy   WarningKind = "onchain_policy"
	WarningEventMissing    WarningKind = "event_missing"
	WarningRequestStatus   WarningKind = "request_status"
	WarningCredentialIndex WarningKind = "credential_index"
)

// SoftWarning is a non-fatal issue absorbed by a composite operation. The
// operation still succeeds; the warning makes the partial outcome visible.
type SoftWarning struct {
	Kind    WarningKind
	Message string
}

// warn records a SoftWarning on the active span, the log and the metrics.
func (s *Service) warn(ctx context.Context, span tracer.Span, kind WarningKind, msg string, attrs ...any) SoftWarning {
	span.AddEvent(tracer.EventSoftWarning,
		tracer.String("kind", string(kind)),
		tracer.String("message", msg),
	)
	s.logger.WarnContext(ctx, msg, append([]any{"warning_kind", kind}, attrs...)...)
	s.metrics.IncrementSoftWarning(string(kind))
	return SoftWarning{Kind: kind, Message: msg}
}
