// Package claim models the claim adjudication state machine.
//
// The ledger owns claim state; this package only decides, from a state read
// off the ledger, whether an insurer action may be attempted.
package claim

import (
	"fmt"
	"math/big"
	"strings"

	dErrors "claimchain/pkg/domain-errors"
)

// Status mirrors the uint8 status stored by ClaimContract.
type Status uint8

const (
	StatusSubmitted Status = iota
	StatusUnderReview
	StatusApproved
	StatusRejected
	StatusPaid
)

var statusNames = [...]string{"Submitted", "UnderReview", "Approved", "Rejected", "Paid"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) Valid() bool {
	return s <= StatusPaid
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusPaid
}

// Claim is the ledger record as read through ClaimContract.getClaim.
type Claim struct {
	ID           *big.Int
	PolicyID     *big.Int
	Beneficiary  string
	Insurer      string
	EvidenceHash string
	VCCID        string
	Amount       *big.Int
	Status       Status
}

// Action is an insurer action on a claim. The set is closed: only the
// variants declared in this package implement it.
type Action interface {
	// Method is the ClaimContract method the action maps to.
	Method() string
	// Args are the method arguments following the claim id.
	Args() []any
	from() Status
	to() Status
	validate() error
}

type SetUnderReview struct{}

func (SetUnderReview) Method() string  { return "setUnderReview" }
func (SetUnderReview) Args() []any     { return nil }
func (SetUnderReview) from() Status    { return StatusSubmitted }
func (SetUnderReview) to() Status      { return StatusUnderReview }
func (SetUnderReview) validate() error { return nil }

type ApproveClaim struct{}

func (ApproveClaim) Method() string  { return "approveClaim" }
func (ApproveClaim) Args() []any     { return nil }
func (ApproveClaim) from() Status    { return StatusUnderReview }
func (ApproveClaim) to() Status      { return StatusApproved }
func (ApproveClaim) validate() error { return nil }

// RejectClaim carries the mandatory rejection reason.
type RejectClaim struct {
	Reason string
}

func (RejectClaim) Method() string { return "rejectClaim" }
func (a RejectClaim) Args() []any  { return []any{a.Reason} }
func (RejectClaim) from() Status   { return StatusUnderReview }
func (RejectClaim) to() Status     { return StatusRejected }
func (a RejectClaim) validate() error {
	if strings.TrimSpace(a.Reason) == "" {
		return dErrors.New(dErrors.CodeMissingReason, "reason is required to reject a claim")
	}
	return nil
}

type MarkPaid struct{}

func (MarkPaid) Method() string  { return "markPaid" }
func (MarkPaid) Args() []any     { return nil }
func (MarkPaid) from() Status    { return StatusApproved }
func (MarkPaid) to() Status      { return StatusPaid }
func (MarkPaid) validate() error { return nil }

// ParseAction builds an Action from its wire name. reason is only used by rejectClaim.
func ParseAction(name, reason string) (Action, error) {
	switch name {
	case "setUnderReview":
		return SetUnderReview{}, nil
	case "approveClaim":
		return ApproveClaim{}, nil
	case "rejectClaim":
		return RejectClaim{Reason: reason}, nil
	case "markPaid":
		return MarkPaid{}, nil
	default:
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("unknown action %q: expected setUnderReview, approveClaim, rejectClaim or markPaid", name))
	}
}

// Validate checks the action's own payload, independent of claim state.
func Validate(action Action) error {
	if action == nil {
		return dErrors.New(dErrors.CodeMissingField, "action is required")
	}
	return action.validate()
}

// Transition returns the state reached by applying action to a claim in
// state current, or an error if the action is not legal from that state.
// Payload errors are reported before state errors.
func Transition(current Status, action Action) (Status, error) {
	if err := Validate(action); err != nil {
		return current, err
	}
	if !current.Valid() {
		return current, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unknown claim status %d", uint8(current)))
	}
	if current != action.from() {
		return current, dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot %s a claim in state %s", action.Method(), current))
	}
	return action.to(), nil
}
