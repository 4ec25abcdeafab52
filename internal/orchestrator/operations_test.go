package orchestrator

import (
	"context"
	"math/big"

	"go.uber.org/mock/gomock"

	"claimchain/internal/credential"
	"claimchain/internal/events"
	"claimchain/internal/ledger"
	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestCreatePolicyRequest() {
	ctx := context.Background()

	s.Run("requests are listed in creation order with unique ids", func() {
		published := s.captureEvents()
		first, err := s.service.CreatePolicyRequest(ctx, CreatePolicyRequestCommand{
			PatientDID:     patientDID,
			PatientAddress: "0xAAA",
			CoverageAmount: big.NewInt(1000),
		})
		s.Require().NoError(err)
		second, err := s.service.CreatePolicyRequest(ctx, CreatePolicyRequestCommand{
			PatientDID:     "did:key:z6MkOther",
			PatientAddress: "0xBBB",
			CoverageAmount: big.NewInt(0),
			Details:        map[string]any{"plan": "basic"},
		})
		s.Require().NoError(err)

		s.NotEqual(first.ID, second.ID)
		listed, err := s.service.ListPolicyRequests(ctx)
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal(first.ID, listed[0].ID)
		s.Equal(second.ID, listed[1].ID)
		s.True(listed[0].IsPending())
		s.Equal("basic", listed[1].Details["plan"])

		s.Require().Len(*published, 2)
		s.Equal(events.TypePolicyRequested, (*published)[0].Type)
	})

	s.Run("missing field", func() {
		_, err := s.service.CreatePolicyRequest(ctx, CreatePolicyRequestCommand{
			PatientAddress: "0xAAA",
			CoverageAmount: big.NewInt(1000),
		})

		s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
		listed, _ := s.service.ListPolicyRequests(ctx)
		s.Empty(listed)
	})

	s.Run("empty queue lists as empty", func() {
		listed, err := s.service.ListPolicyRequests(ctx)

		s.Require().NoError(err)
		s.NotNil(listed)
		s.Empty(listed)
	})
}

func (s *ServiceSuite) TestCredentialOperations() {
	ctx := context.Background()

	s.Run("create did waits for readiness", func() {
		gomock.InOrder(
			s.mockCredentials.EXPECT().WaitReady(gomock.Any()).Return(nil),
			s.mockCredentials.EXPECT().CreateDID(gomock.Any()).Return("did:key:z6MkNew", nil),
		)

		did, err := s.service.CreateDID(ctx)

		s.Require().NoError(err)
		s.Equal("did:key:z6MkNew", did)
	})

	s.Run("create did while initializing", func() {
		s.mockCredentials.EXPECT().WaitReady(gomock.Any()).
			Return(dErrors.New(dErrors.CodeDependencyUnavailable, "credential service is initializing"))

		_, err := s.service.CreateDID(ctx)

		s.True(dErrors.HasCode(err, dErrors.CodeDependencyUnavailable))
	})

	s.Run("verify returns the verification result", func() {
		s.mockCredentials.EXPECT().WaitReady(gomock.Any()).Return(nil)
		s.mockCredentials.EXPECT().Verify(gomock.Any(), "a.b.c").
			Return(&credential.VerificationResult{Verified: false, Error: "signature invalid"}, nil)

		res, err := s.service.VerifyVC(ctx, "a.b.c")

		s.Require().NoError(err)
		s.False(res.Verified)
	})

	s.Run("verify requires a jwt", func() {
		_, err := s.service.VerifyVC(ctx, "")

		s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
	})
}

func (s *ServiceSuite) TestFiles() {
	ctx := context.Background()

	s.Run("upload and fetch", func() {
		id := cidOf(s.T(), "evidence")
		s.mockBlobs.EXPECT().Put(gomock.Any(), []byte("evidence")).Return(id, nil)
		s.mockBlobs.EXPECT().Get(gomock.Any(), id).Return([]byte("evidence"), nil)

		got, err := s.service.UploadFile(ctx, []byte("evidence"))
		s.Require().NoError(err)
		s.Equal(id.String(), got)

		data, err := s.service.GetFile(ctx, got)
		s.Require().NoError(err)
		s.Equal([]byte("evidence"), data)
	})

	s.Run("empty upload", func() {
		_, err := s.service.UploadFile(ctx, nil)

		s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
	})

	s.Run("malformed cid", func() {
		_, err := s.service.GetFile(ctx, "not-a-cid")

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown cid", func() {
		s.mockBlobs.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.GetFile(ctx, cidOf(s.T(), "missing").String())

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRegisterIdentity() {
	ctx := context.Background()
	cmd := RegisterIdentityCommand{
		PrivateKey: insurerKey,
		Account:    insurerAddr.Hex(),
		DID:        insurerDID,
		Role:       "Insurer",
	}

	s.Run("registers the account", func() {
		published := s.captureEvents()
		s.mockLedger.EXPECT().Signer(insurerKey).Return(s.signer, nil)
		s.mockLedger.EXPECT().Contract(ledger.IdentityRegistry, s.signer).Return(s.registry, nil)
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.registry, "registerIdentity", insurerAddr, insurerDID, ledger.RoleInsurer).
			Return(receiptWith(), nil)

		txHash, err := s.service.RegisterIdentity(ctx, cmd)

		s.Require().NoError(err)
		s.NotEmpty(txHash)
		s.Require().Len(*published, 1)
		s.Equal(events.TypeIdentityRegistered, (*published)[0].Type)
	})

	s.Run("unknown role", func() {
		bad := cmd
		bad.Role = "auditor"

		_, err := s.service.RegisterIdentity(ctx, bad)

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing did", func() {
		bad := cmd
		bad.DID = ""

		_, err := s.service.RegisterIdentity(ctx, bad)

		s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
	})
}

func (s *ServiceSuite) TestIssuePolicy() {
	ctx := context.Background()
	cmd := IssuePolicyCommand{
		PrivateKey:     insurerKey,
		Beneficiary:    beneficiaryAddr.Hex(),
		CoverageAmount: big.NewInt(1000),
	}

	s.Run("returns the policy id", func() {
		s.allowEvents()
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", beneficiaryAddr, big.NewInt(1000)).
			Return(receiptWith(s.policyIssuedLog(11)), nil)

		result, err := s.service.IssuePolicy(ctx, cmd)

		s.Require().NoError(err)
		s.Equal(int64(11), result.PolicyID.Int64())
		s.Empty(result.Warnings)
	})

	s.Run("missing event", func() {
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", gomock.Any(), gomock.Any()).
			Return(receiptWith(), nil)

		result, err := s.service.IssuePolicy(ctx, cmd)

		s.Require().NoError(err)
		s.Nil(result.PolicyID)
		s.Require().Len(result.Warnings, 1)
		s.Equal(WarningEventMissing, result.Warnings[0].Kind)
	})

	s.Run("revert is an error", func() {
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeTransactionReverted, "transaction reverted: caller is not a registered insurer"))

		_, err := s.service.IssuePolicy(ctx, cmd)

		s.True(dErrors.HasCode(err, dErrors.CodeTransactionReverted))
	})

	s.Run("missing key", func() {
		bad := cmd
		bad.PrivateKey = ""

		_, err := s.service.IssuePolicy(ctx, bad)

		s.True(dErrors.HasCode(err, dErrors.CodeMissingField))
		s.Contains(err.Error(), "privateKey")
	})
}
