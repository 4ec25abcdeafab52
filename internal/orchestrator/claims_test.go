package orchestrator

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"claimchain/internal/claim"
	"claimchain/internal/credential"
	"claimchain/internal/events"
	"claimchain/internal/ledger"
	"claimchain/internal/platform/metrics"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

func (s *ServiceSuite) submitCommand(vcCID string) SubmitClaimCommand {
	return SubmitClaimCommand{
		PrivateKey:   insurerKey,
		PolicyID:     big.NewInt(1),
		Beneficiary:  beneficiaryAddr.Hex(),
		Insurer:      insurerAddr.Hex(),
		EvidenceHash: "QmEvidence",
		VCCID:        vcCID,
		Amount:       big.NewInt(500),
	}
}

// expectStoredVC serves vc from the blob store under its CID.
func (s *ServiceSuite) expectStoredVC(vc *credential.VerifiableCredential) string {
	payload, err := json.Marshal(vc)
	s.Require().NoError(err)
	id := cidOf(s.T(), string(payload))
	s.mockBlobs.EXPECT().Get(gomock.Any(), id).Return(payload, nil)
	return id.String()
}

func (s *ServiceSuite) expectIdentity(account any, did string) {
	s.mockLedger.EXPECT().
		CallInto(gomock.Any(), s.registry, gomock.Any(), "getIdentity", account).
		DoAndReturn(func(_ context.Context, _ *ledger.Contract, dst any, _ string, _ ...any) error {
			*dst.(*ledger.IdentityRecord) = ledger.IdentityRecord{DID: did, Role: ledger.RolePatient, Registered: did != ""}
			return nil
		})
}

func (s *ServiceSuite) expectVerifiedVC(vc *credential.VerifiableCredential) string {
	vcCID := s.expectStoredVC(vc)
	s.mockCredentials.EXPECT().VerifyDocument(gomock.Any(), gomock.Any()).
		Return(&credential.VerificationResult{Verified: true, Issuer: vc.Issuer, Subject: vc.Subject()}, nil)
	s.mockLedger.EXPECT().Contract(ledger.IdentityRegistry, gomock.Nil()).Return(s.registry, nil)
	return vcCID
}

func (s *ServiceSuite) TestSubmitClaim() {
	ctx := context.Background()

	s.Run("verified credential and matching registry", func() {
		t := s.T()
		published := s.captureEvents()
		s.expectClaimContract()
		vcCID := s.expectVerifiedVC(s.signedVC(patientDID))
		s.expectIdentity(insurerAddr, insurerDID)
		s.expectIdentity(beneficiaryAddr, patientDID)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "submitClaim",
				big.NewInt(1), beneficiaryAddr, insurerAddr, "QmEvidence", vcCID, big.NewInt(500)).
			Return(receiptWith(s.claimSubmittedLog(5)), nil)

		result, err := s.service.SubmitClaim(ctx, s.submitCommand(vcCID))

		require.NoError(t, err)
		require.NotNil(t, result.ClaimID)
		assert.Equal(t, int64(5), result.ClaimID.Int64())
		assert.Empty(t, result.Warnings)
		require.Len(t, *published, 1)
		assert.Equal(t, events.TypeClaimSubmitted, (*published)[0].Type)
		assert.Equal(t, "5", (*published)[0].AggregateID)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ClaimsSubmitted))
	})

	s.Run("unverifiable credential is a warning by default", func() {
		t := s.T()
		s.allowEvents()
		s.expectClaimContract()
		vcCID := cidOf(t, "gone").String()
		s.mockBlobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "submitClaim", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(receiptWith(s.claimSubmittedLog(1)), nil)

		result, err := s.service.SubmitClaim(ctx, s.submitCommand(vcCID))

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.ClaimID.Int64())
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningVCVerification, result.Warnings[0].Kind)
		assert.Contains(t, result.Warnings[0].Message, "not found")
	})

	s.Run("unverifiable credential is rejected in strict mode", func() {
		t := s.T()
		strict := New(s.mockCredentials, s.mockBlobs, s.mockLedger, s.requests, s.issued,
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			WithStrictVCVerification(true),
		)
		s.expectClaimContract()
		s.mockBlobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("{}"), nil)
		s.mockCredentials.EXPECT().VerifyDocument(gomock.Any(), gomock.Any()).
			Return(&credential.VerificationResult{Verified: false, Error: "credential has no jwt proof"}, nil)

		_, err := strict.SubmitClaim(ctx, s.submitCommand(cidOf(t, "{}").String()))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "no jwt proof")
	})

	s.Run("registry disagreeing with the credential issuer is a warning", func() {
		t := s.T()
		s.allowEvents()
		s.expectClaimContract()
		vcCID := s.expectVerifiedVC(s.signedVC(patientDID))
		s.expectIdentity(insurerAddr, "did:key:z6MkSomeoneElse")
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "submitClaim", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(receiptWith(s.claimSubmittedLog(2)), nil)

		result, err := s.service.SubmitClaim(ctx, s.submitCommand(vcCID))

		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningVCVerification, result.Warnings[0].Kind)
		assert.Contains(t, result.Warnings[0].Message, "insurer")
	})

	s.Run("missing ClaimSubmitted event leaves the claim id unknown", func() {
		t := s.T()
		s.expectClaimContract()
		s.mockBlobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "submitClaim", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(receiptWith(), nil)

		result, err := s.service.SubmitClaim(ctx, s.submitCommand(cidOf(t, "x").String()))

		require.NoError(t, err)
		assert.Nil(t, result.ClaimID)
		require.Len(t, result.Warnings, 2)
		assert.Equal(t, WarningEventMissing, result.Warnings[1].Kind)
	})

	s.Run("missing fields are reported before any network call", func() {
		cases := map[string]func(*SubmitClaimCommand){
			"policyId":     func(c *SubmitClaimCommand) { c.PolicyID = nil },
			"beneficiary":  func(c *SubmitClaimCommand) { c.Beneficiary = "" },
			"insurer":      func(c *SubmitClaimCommand) { c.Insurer = " " },
			"evidenceHash": func(c *SubmitClaimCommand) { c.EvidenceHash = "" },
			"vcCid":        func(c *SubmitClaimCommand) { c.VCCID = "" },
			"amount":       func(c *SubmitClaimCommand) { c.Amount = nil },
		}
		for field, mutate := range cases {
			s.Run(field, func() {
				cmd := s.submitCommand("bafy")
				mutate(&cmd)

				_, err := s.service.SubmitClaim(ctx, cmd)

				s.True(dErrors.HasCode(err, dErrors.CodeMissingField), "got %v", err)
				s.Contains(err.Error(), field)
			})
		}
	})

	s.Run("malformed address", func() {
		cmd := s.submitCommand("bafy")
		cmd.Insurer = "0xAAA"

		_, err := s.service.SubmitClaim(ctx, cmd)

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid key", func() {
		s.mockLedger.EXPECT().Signer(insurerKey).Return(nil, dErrors.New(dErrors.CodeInvalidKey, "invalid private key"))

		_, err := s.service.SubmitClaim(ctx, s.submitCommand("bafy"))

		s.True(dErrors.HasCode(err, dErrors.CodeInvalidKey))
	})
}

func (s *ServiceSuite) TestInsurerAction() {
	ctx := context.Background()

	s.Run("legal action is submitted", func() {
		t := s.T()
		published := s.captureEvents()
		s.expectClaimContract()
		s.expectClaimState(4, claim.StatusUnderReview)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "approveClaim", big.NewInt(4)).
			Return(receiptWith(), nil)

		result, err := s.service.InsurerAction(ctx, InsurerActionCommand{
			PrivateKey: insurerKey,
			ClaimID:    big.NewInt(4),
			Action:     claim.ApproveClaim{},
		})

		require.NoError(t, err)
		assert.Equal(t, "approveClaim", result.Action)
		assert.Equal(t, claim.StatusApproved, result.Status)
		assert.NotEmpty(t, result.TxHash)
		require.Len(t, *published, 1)
		assert.Equal(t, events.TypeClaimStatusChanged, (*published)[0].Type)
		assert.Equal(t, "Approved", (*published)[0].Data["to"])
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.InsurerActions.WithLabelValues("approveClaim", metrics.OutcomeSuccess)))
	})

	s.Run("reject carries the reason", func() {
		t := s.T()
		s.allowEvents()
		s.expectClaimContract()
		s.expectClaimState(4, claim.StatusUnderReview)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "rejectClaim", big.NewInt(4), "not covered").
			Return(receiptWith(), nil)

		result, err := s.service.InsurerAction(ctx, InsurerActionCommand{
			PrivateKey: insurerKey,
			ClaimID:    big.NewInt(4),
			Action:     claim.RejectClaim{Reason: "not covered"},
		})

		require.NoError(t, err)
		assert.Equal(t, claim.StatusRejected, result.Status)
	})

	s.Run("illegal action is rejected without a transaction", func() {
		t := s.T()
		s.expectClaimContract()
		s.expectClaimState(4, claim.StatusSubmitted)

		_, err := s.service.InsurerAction(ctx, InsurerActionCommand{
			PrivateKey: insurerKey,
			ClaimID:    big.NewInt(4),
			Action:     claim.ApproveClaim{},
		})

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.InsurerActions.WithLabelValues("approveClaim", metrics.OutcomeFailure)))
	})

	s.Run("reject without a reason fails before touching the ledger", func() {
		_, err := s.service.InsurerAction(ctx, InsurerActionCommand{
			PrivateKey: insurerKey,
			ClaimID:    big.NewInt(4),
			Action:     claim.RejectClaim{Reason: "   "},
		})

		s.True(dErrors.HasCode(err, dErrors.CodeMissingReason))
	})

	s.Run("missing action", func() {
		_, err := s.service.InsurerAction(ctx, InsurerActionCommand{PrivateKey: insurerKey, ClaimID: big.NewInt(4)})

		s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
	})

	s.Run("unknown claim", func() {
		s.expectClaimContract()
		s.expectClaimRecord(9, ledger.ClaimRecord{PolicyID: new(big.Int)})

		_, err := s.service.InsurerAction(ctx, InsurerActionCommand{
			PrivateKey: insurerKey,
			ClaimID:    big.NewInt(9),
			Action:     claim.SetUnderReview{},
		})

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("losing a race surfaces the revert", func() {
		s.expectClaimContract()
		s.expectClaimState(4, claim.StatusApproved)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.claims, "markPaid", big.NewInt(4)).
			Return(nil, dErrors.New(dErrors.CodeTransactionReverted, "transaction reverted: invalid claim status"))

		_, err := s.service.InsurerAction(ctx, InsurerActionCommand{
			PrivateKey: insurerKey,
			ClaimID:    big.NewInt(4),
			Action:     claim.MarkPaid{},
		})

		s.True(dErrors.HasCode(err, dErrors.CodeTransactionReverted))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.InsurerActions.WithLabelValues("markPaid", metrics.OutcomeReverted)))
	})
}

func (s *ServiceSuite) TestGetClaim() {
	ctx := context.Background()

	s.Run("found", func() {
		s.mockLedger.EXPECT().Contract(ledger.ClaimContract, gomock.Nil()).Return(s.claims, nil)
		s.expectClaimState(3, claim.StatusPaid)

		got, err := s.service.GetClaim(ctx, big.NewInt(3))

		s.Require().NoError(err)
		s.Equal(int64(3), got.ID.Int64())
		s.Equal(claim.StatusPaid, got.Status)
		s.Equal(insurerAddr.Hex(), got.Insurer)
		s.Equal("QmEvidence", got.EvidenceHash)
	})

	s.Run("not found", func() {
		s.mockLedger.EXPECT().Contract(ledger.ClaimContract, gomock.Nil()).Return(s.claims, nil)
		s.expectClaimRecord(3, ledger.ClaimRecord{PolicyID: new(big.Int)})

		_, err := s.service.GetClaim(ctx, big.NewInt(3))

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
