package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"claimchain/internal/credential"
	"claimchain/internal/events"
	issuance "claimchain/internal/issuance/models"
	policyrequest "claimchain/internal/policyrequest/models"
	dErrors "claimchain/pkg/domain-errors"
)

func (s *ServiceSuite) issueCommand() IssueVCCommand {
	return IssueVCCommand{
		Credential: credential.Credential{
			Type:              []string{"InsurancePolicyCredential"},
			CredentialSubject: map[string]any{"id": patientDID, "plan": "gold"},
		},
		IssuerDID: insurerDID,
	}
}

func (s *ServiceSuite) pendingRequest() *policyrequest.PolicyRequest {
	s.T().Helper()
	req, err := policyrequest.NewPolicyRequest(patientDID, beneficiaryAddr.Hex(), big.NewInt(1000), nil, fixedNow)
	s.Require().NoError(err)
	stored, err := s.requests.Append(context.Background(), req)
	s.Require().NoError(err)
	return stored
}

func (s *ServiceSuite) TestIssueVC() {
	ctx := context.Background()

	s.Run("without an on-chain policy the ledger is never touched", func() {
		t := s.T()
		published := s.captureEvents()
		vc := s.signedVC(patientDID)
		contentID := s.expectIssue(vc)

		result, err := s.service.IssueVC(ctx, s.issueCommand())

		require.NoError(t, err)
		assert.Same(t, vc, result.VC)
		assert.Equal(t, contentID.String(), result.CID)
		assert.True(t, issuance.IsPolicyRef(result.PolicyRef))
		assert.Nil(t, result.OnchainPolicyID)
		assert.Empty(t, result.TxHash)
		assert.Empty(t, result.Warnings)

		stored, err := s.service.GetCredential(ctx, result.PolicyRef)
		require.NoError(t, err)
		assert.Equal(t, result.CID, stored.CID)

		require.Len(t, *published, 1)
		assert.Equal(t, events.TypeCredentialIssued, (*published)[0].Type)
		assert.Equal(t, result.PolicyRef, (*published)[0].AggregateID)
	})

	s.Run("on-chain policy id is decoded from the PolicyIssued event", func() {
		t := s.T()
		published := s.captureEvents()
		s.expectIssue(s.signedVC(patientDID))
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", beneficiaryAddr, big.NewInt(1000)).
			Return(receiptWith(s.policyIssuedLog(7)), nil)

		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = insurerKey
		cmd.Beneficiary = beneficiaryAddr.Hex()
		cmd.CoverageAmount = big.NewInt(1000)
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		require.NotNil(t, result.OnchainPolicyID)
		assert.Equal(t, int64(7), result.OnchainPolicyID.Int64())
		assert.NotEmpty(t, result.TxHash)
		assert.Empty(t, result.Warnings)

		byID, err := s.service.GetCredential(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, result.PolicyRef, byID.PolicyRef)

		var types []events.Type
		for _, e := range *published {
			types = append(types, e.Type)
		}
		assert.Equal(t, []events.Type{events.TypePolicyIssued, events.TypeCredentialIssued}, types)
	})

	s.Run("ledger failure still succeeds with no on-chain policy", func() {
		t := s.T()
		s.allowEvents()
		s.expectIssue(s.signedVC(patientDID))
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeTransactionReverted, "transaction reverted: caller is not a registered insurer"))

		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = insurerKey
		cmd.Beneficiary = beneficiaryAddr.Hex()
		cmd.CoverageAmount = big.NewInt(1000)
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		assert.NotEmpty(t, result.CID)
		assert.Nil(t, result.OnchainPolicyID)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningOnchainPolicy, result.Warnings[0].Kind)
		assert.Contains(t, result.Warnings[0].Message, "not a registered insurer")
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.SoftWarnings.WithLabelValues(string(WarningOnchainPolicy))))
	})

	s.Run("confirmed policy without an event yields event_missing", func() {
		t := s.T()
		s.allowEvents()
		s.expectIssue(s.signedVC(patientDID))
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", gomock.Any(), gomock.Any()).
			Return(receiptWith(), nil)

		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = insurerKey
		cmd.Beneficiary = beneficiaryAddr.Hex()
		cmd.CoverageAmount = big.NewInt(1000)
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		assert.Nil(t, result.OnchainPolicyID)
		assert.NotEmpty(t, result.TxHash)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningEventMissing, result.Warnings[0].Kind)
	})

	s.Run("missing insurer key fails before any side effect", func() {
		t := s.T()
		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.Beneficiary = beneficiaryAddr.Hex()
		cmd.CoverageAmount = big.NewInt(1000)

		_, err := s.service.IssueVC(ctx, cmd)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingField), "got %v", err)
	})

	s.Run("unusable on-chain inputs keep the credential", func() {
		cases := []struct {
			name   string
			mutate func(*IssueVCCommand)
			want   string
		}{
			{"missing beneficiary", func(c *IssueVCCommand) { c.Beneficiary = "" }, "beneficiary is required"},
			{"malformed beneficiary", func(c *IssueVCCommand) { c.Beneficiary = "0xAAA" }, "hex account address"},
			{"zero coverage", func(c *IssueVCCommand) { c.CoverageAmount = big.NewInt(0) }, "must be positive"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				t := s.T()
				s.allowEvents()
				contentID := s.expectIssue(s.signedVC(patientDID))
				cmd := s.issueCommand()
				cmd.CreateOnchain = true
				cmd.InsurerPrivateKey = insurerKey
				cmd.Beneficiary = beneficiaryAddr.Hex()
				cmd.CoverageAmount = big.NewInt(1000)
				tc.mutate(&cmd)

				result, err := s.service.IssueVC(ctx, cmd)

				require.NoError(t, err)
				assert.Equal(t, contentID.String(), result.CID)
				assert.Nil(t, result.OnchainPolicyID)
				require.Len(t, result.Warnings, 1)
				assert.Equal(t, WarningOnchainPolicy, result.Warnings[0].Kind)
				assert.Contains(t, result.Warnings[0].Message, tc.want)
			})
		}
	})

	s.Run("invalid insurer key keeps the credential", func() {
		t := s.T()
		s.allowEvents()
		s.expectIssue(s.signedVC(patientDID))
		s.mockLedger.EXPECT().Signer("0xnot-a-key").
			Return(nil, dErrors.New(dErrors.CodeInvalidKey, "private key is not a valid secp256k1 key"))

		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = "0xnot-a-key"
		cmd.Beneficiary = beneficiaryAddr.Hex()
		cmd.CoverageAmount = big.NewInt(1000)
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		assert.NotEmpty(t, result.CID)
		assert.True(t, issuance.IsPolicyRef(result.PolicyRef))
		assert.Nil(t, result.OnchainPolicyID)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningOnchainPolicy, result.Warnings[0].Kind)
		assert.Contains(t, result.Warnings[0].Message, "secp256k1")
	})

	s.Run("on-chain id held by another credential is dropped from the index", func() {
		t := s.T()
		s.allowEvents()
		earlier := &issuance.Record{
			PolicyRef:       issuance.NewPolicyRef(),
			VC:              s.signedVC(patientDID),
			CID:             "bafyearlier",
			OnchainPolicyID: big.NewInt(7),
			IssuedAt:        fixedNow,
		}
		require.NoError(t, s.issued.Save(ctx, earlier))
		s.expectIssue(s.signedVC(patientDID))
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", beneficiaryAddr, big.NewInt(1000)).
			Return(receiptWith(s.policyIssuedLog(7)), nil)

		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = insurerKey
		cmd.Beneficiary = beneficiaryAddr.Hex()
		cmd.CoverageAmount = big.NewInt(1000)
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		require.NotNil(t, result.OnchainPolicyID)
		assert.Equal(t, int64(7), result.OnchainPolicyID.Int64())
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningOnchainPolicy, result.Warnings[0].Kind)
		assert.Contains(t, result.Warnings[0].Message, "already belongs to another credential")

		stored, err := s.service.GetCredential(ctx, result.PolicyRef)
		require.NoError(t, err)
		assert.Equal(t, result.CID, stored.CID)
		assert.Nil(t, stored.OnchainPolicyID)

		byID, err := s.service.GetCredential(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, earlier.PolicyRef, byID.PolicyRef)
	})

	s.Run("index outage leaves the credential unindexed", func() {
		t := s.T()
		s.allowEvents()
		service := New(s.mockCredentials, s.mockBlobs, s.mockLedger, s.requests, brokenIndex{},
			WithMetrics(s.metrics), WithPublisher(s.mockPublisher))
		contentID := s.expectIssue(s.signedVC(patientDID))

		result, err := service.IssueVC(ctx, s.issueCommand())

		require.NoError(t, err)
		assert.Equal(t, contentID.String(), result.CID)
		assert.Empty(t, result.PolicyRef)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningCredentialIndex, result.Warnings[0].Kind)
	})

	s.Run("missing issuer did", func() {
		t := s.T()
		cmd := s.issueCommand()
		cmd.IssuerDID = "  "

		_, err := s.service.IssueVC(ctx, cmd)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingField))
	})

	s.Run("credential service not ready", func() {
		t := s.T()
		s.mockCredentials.EXPECT().WaitReady(gomock.Any()).
			Return(dErrors.New(dErrors.CodeDependencyUnavailable, "credential service is initializing"))

		_, err := s.service.IssueVC(ctx, s.issueCommand())

		assert.True(t, dErrors.HasCode(err, dErrors.CodeDependencyUnavailable))
	})

	s.Run("blob store failure fails the operation", func() {
		t := s.T()
		vc := s.signedVC(patientDID)
		s.mockCredentials.EXPECT().WaitReady(gomock.Any()).Return(nil)
		s.mockCredentials.EXPECT().Issue(gomock.Any(), insurerDID, gomock.Any()).Return(vc, nil)
		s.mockBlobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return(cid.Undef, errors.New("disk full"))

		_, err := s.service.IssueVC(ctx, s.issueCommand())

		assert.True(t, dErrors.HasCode(err, dErrors.CodeDependencyUnavailable))
	})
}

func (s *ServiceSuite) TestIssueVCForRequest() {
	ctx := context.Background()

	s.Run("fulfils a pending request with its defaults", func() {
		t := s.T()
		s.allowEvents()
		req := s.pendingRequest()
		s.expectIssue(s.signedVC(patientDID))
		s.expectPolicyContract()
		s.mockLedger.EXPECT().
			SubmitAndConfirm(gomock.Any(), s.policy, "issuePolicy", beneficiaryAddr, big.NewInt(1000)).
			Return(receiptWith(s.policyIssuedLog(3)), nil)

		cmd := s.issueCommand()
		cmd.Credential.CredentialSubject = map[string]any{"plan": "gold"}
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = insurerKey
		cmd.RequestID = &req.ID
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		require.NotNil(t, result.Request)
		assert.Equal(t, policyrequest.StatusIssued, result.Request.Status)
		assert.Equal(t, result.PolicyRef, result.Request.PolicyRef)
		assert.Equal(t, result.CID, result.Request.VCCID)

		listed, err := s.service.ListPolicyRequests(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, policyrequest.StatusIssued, listed[0].Status)
	})

	s.Run("subject id defaults to the patient did", func() {
		t := s.T()
		s.allowEvents()
		req := s.pendingRequest()
		vc := s.signedVC(patientDID)
		s.mockCredentials.EXPECT().WaitReady(gomock.Any()).Return(nil)
		s.mockCredentials.EXPECT().Issue(gomock.Any(), insurerDID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, cred credential.Credential) (*credential.VerifiableCredential, error) {
				assert.Equal(t, patientDID, cred.CredentialSubject["id"])
				assert.Equal(t, "gold", cred.CredentialSubject["plan"])
				return vc, nil
			})
		s.mockBlobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return(cidOf(t, "vc"), nil)

		cmd := s.issueCommand()
		cmd.Credential.CredentialSubject = map[string]any{"plan": "gold"}
		cmd.RequestID = &req.ID
		_, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
	})

	s.Run("re-issuing an issued request is a conflict before any side effect", func() {
		t := s.T()
		s.allowEvents()
		req := s.pendingRequest()
		s.expectIssue(s.signedVC(patientDID))
		cmd := s.issueCommand()
		cmd.RequestID = &req.ID
		_, err := s.service.IssueVC(ctx, cmd)
		require.NoError(t, err)

		_, err = s.service.IssueVC(ctx, cmd)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		assert.True(t, strings.Contains(err.Error(), "already issued"), err.Error())
	})

	s.Run("unknown request", func() {
		t := s.T()
		missingID := int64(42)
		cmd := s.issueCommand()
		cmd.RequestID = &missingID

		_, err := s.service.IssueVC(ctx, cmd)

		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unvalidated patient address only costs the on-chain policy", func() {
		t := s.T()
		s.allowEvents()
		req, err := policyrequest.NewPolicyRequest("did:key:p1", "0xAAA", big.NewInt(1000), nil, fixedNow)
		require.NoError(t, err)
		req, err = s.requests.Append(ctx, req)
		require.NoError(t, err)
		s.expectIssue(s.signedVC("did:key:p1"))

		cmd := s.issueCommand()
		cmd.CreateOnchain = true
		cmd.InsurerPrivateKey = insurerKey
		cmd.RequestID = &req.ID
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		assert.NotEmpty(t, result.CID)
		assert.Nil(t, result.OnchainPolicyID)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningOnchainPolicy, result.Warnings[0].Kind)
		require.NotNil(t, result.Request)
		assert.Equal(t, policyrequest.StatusIssued, result.Request.Status)
	})

	s.Run("request already in the index is left to its first credential", func() {
		t := s.T()
		s.allowEvents()
		req := s.pendingRequest()
		require.NoError(t, s.issued.Save(ctx, &issuance.Record{
			PolicyRef: issuance.NewPolicyRef(),
			RequestID: &req.ID,
			VC:        s.signedVC(patientDID),
			CID:       "bafyfirst",
			IssuedAt:  fixedNow,
		}))
		s.expectIssue(s.signedVC(patientDID))

		cmd := s.issueCommand()
		cmd.RequestID = &req.ID
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningRequestStatus, result.Warnings[0].Kind)

		stored, err := s.service.GetCredential(ctx, result.PolicyRef)
		require.NoError(t, err)
		assert.Nil(t, stored.RequestID)

		found, err := s.requests.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, policyrequest.StatusPending, found.Status)
	})

	s.Run("request issued concurrently after the credential is durable", func() {
		t := s.T()
		s.allowEvents()
		req := s.pendingRequest()
		s.mockCredentials.EXPECT().WaitReady(gomock.Any()).Return(nil)
		s.mockCredentials.EXPECT().Issue(gomock.Any(), insurerDID, gomock.Any()).
			DoAndReturn(func(context.Context, string, credential.Credential) (*credential.VerifiableCredential, error) {
				// another caller completes the same request while this one signs
				_, err := s.requests.UpdateStatus(ctx, req.ID, policyrequest.StatusIssued, policyrequest.Issuance{
					PolicyRef: "pol_other", VCCID: "bafyother", IssuedAt: fixedNow,
				})
				require.NoError(t, err)
				return s.signedVC(patientDID), nil
			})
		s.mockBlobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return(cidOf(t, "vc"), nil)

		cmd := s.issueCommand()
		cmd.RequestID = &req.ID
		result, err := s.service.IssueVC(ctx, cmd)

		require.NoError(t, err)
		assert.NotEmpty(t, result.CID)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningRequestStatus, result.Warnings[0].Kind)
	})
}

func (s *ServiceSuite) TestGetCredential() {
	ctx := context.Background()

	s.Run("unknown key", func() {
		t := s.T()
		for _, key := range []string{"pol_00000000-0000-0000-0000-000000000000", "99", "not-a-key"} {
			_, err := s.service.GetCredential(ctx, key)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), key)
		}
	})

	s.Run("empty key", func() {
		t := s.T()
		_, err := s.service.GetCredential(ctx, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingField))
	})

	s.Run("on-chain id lookup", func() {
		t := s.T()
		require.NoError(t, s.issued.Save(ctx, &issuance.Record{
			PolicyRef:       issuance.NewPolicyRef(),
			VC:              s.signedVC(patientDID),
			CID:             "bafyvc",
			OnchainPolicyID: big.NewInt(12),
			IssuedAt:        fixedNow,
		}))

		rec, err := s.service.GetCredential(ctx, "12")

		require.NoError(t, err)
		assert.Equal(t, "bafyvc", rec.CID)
	})
}

type brokenIndex struct{}

func (brokenIndex) Save(context.Context, *issuance.Record) error {
	return errors.New("connection refused")
}

func (brokenIndex) FindByPolicyRef(context.Context, string) (*issuance.Record, error) {
	return nil, errors.New("connection refused")
}

func (brokenIndex) FindByOnchainPolicyID(context.Context, *big.Int) (*issuance.Record, error) {
	return nil, errors.New("connection refused")
}
