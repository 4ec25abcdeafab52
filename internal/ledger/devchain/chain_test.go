package devchain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"

	"claimchain/internal/claim"
	"claimchain/internal/ledger"
)

type ChainSuite struct {
	suite.Suite
	ctx   context.Context
	chain *Chain

	insurer  *ecdsa.PrivateKey
	patient  *ecdsa.PrivateKey
	hospital *ecdsa.PrivateKey
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainSuite))
}

func (s *ChainSuite) SetupTest() {
	s.ctx = context.Background()
	chain, err := Open()
	s.Require().NoError(err)
	s.chain = chain
	s.insurer, _ = crypto.GenerateKey()
	s.patient, _ = crypto.GenerateKey()
	s.hospital, _ = crypto.GenerateKey()
}

func address(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// send signs and submits method(args...) against contract, returning the receipt.
func send(s *suite.Suite, c *Chain, key *ecdsa.PrivateKey, contract ledger.ContractName, method string, args ...any) *types.Receipt {
	s.T().Helper()
	tx := sign(s, c, key, contract, c.nonces[address(key)], method, args...)
	s.Require().NoError(c.SendTransaction(context.Background(), tx))
	receipt, err := c.TransactionReceipt(context.Background(), tx.Hash())
	s.Require().NoError(err)
	return receipt
}

func sign(s *suite.Suite, c *Chain, key *ecdsa.PrivateKey, contract ledger.ContractName, nonce uint64, method string, args ...any) *types.Transaction {
	s.T().Helper()
	parsed, _ := ledger.ABI(contract)
	data, err := parsed.Pack(method, args...)
	s.Require().NoError(err)
	to, _ := c.addresses.For(contract)
	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: big.NewInt(gasPrice),
		Gas:      gasFor(data),
		To:       &to,
		Data:     data,
	}), c.signer, key)
	s.Require().NoError(err)
	return tx
}

func (s *ChainSuite) call(contract ledger.ContractName, method string, args ...any) []any {
	parsed, _ := ledger.ABI(contract)
	data, err := parsed.Pack(method, args...)
	s.Require().NoError(err)
	to, _ := s.chain.addresses.For(contract)
	out, err := s.chain.CallContract(s.ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	s.Require().NoError(err)
	values, err := parsed.Unpack(method, out)
	s.Require().NoError(err)
	return values
}

func (s *ChainSuite) seedPolicy(coverage int64) {
	s.Require().Equal(types.ReceiptStatusSuccessful,
		send(&s.Suite, s.chain, s.insurer, ledger.IdentityRegistry, "registerIdentity", address(s.insurer), "did:key:ins", ledger.RoleInsurer).Status)
	s.Require().Equal(types.ReceiptStatusSuccessful,
		send(&s.Suite, s.chain, s.insurer, ledger.PolicyContract, "issuePolicy", address(s.patient), big.NewInt(coverage)).Status)
}

func (s *ChainSuite) TestDefaultAddressesAreDistinct() {
	s.NoError(DefaultAddresses.Validate())
	s.NotEqual(DefaultAddresses.IdentityRegistry, DefaultAddresses.PolicyContract)
	s.NotEqual(DefaultAddresses.PolicyContract, DefaultAddresses.ClaimContract)
}

func (s *ChainSuite) TestRegisterIdentityTwiceReverts() {
	first := send(&s.Suite, s.chain, s.patient, ledger.IdentityRegistry, "registerIdentity", address(s.patient), "did:key:p", ledger.RolePatient)
	s.Equal(types.ReceiptStatusSuccessful, first.Status)
	s.Len(first.Logs, 1)

	second := send(&s.Suite, s.chain, s.patient, ledger.IdentityRegistry, "registerIdentity", address(s.patient), "did:key:p", ledger.RolePatient)
	s.Equal(types.ReceiptStatusFailed, second.Status)
	s.Empty(second.Logs)

	// A reverted transaction is still mined and consumes its nonce.
	nonce, _ := s.chain.PendingNonceAt(s.ctx, address(s.patient))
	s.Equal(uint64(2), nonce)
	height, _ := s.chain.BlockNumber(s.ctx)
	s.Equal(uint64(2), height)
}

func (s *ChainSuite) TestInvalidRoleReverts() {
	receipt := send(&s.Suite, s.chain, s.patient, ledger.IdentityRegistry, "registerIdentity", address(s.patient), "did:key:p", uint8(9))
	s.Equal(types.ReceiptStatusFailed, receipt.Status)
}

func (s *ChainSuite) TestEstimateGasReportsRevertReason() {
	parsed, _ := ledger.ABI(ledger.PolicyContract)
	data, _ := parsed.Pack("issuePolicy", address(s.patient), big.NewInt(10))
	to := DefaultAddresses.PolicyContract

	_, err := s.chain.EstimateGas(s.ctx, ethereum.CallMsg{From: address(s.patient), To: &to, Data: data})
	reason, ok := ledger.RevertReason(err)
	s.True(ok)
	s.Equal("caller is not a registered insurer", reason)
}

func (s *ChainSuite) TestSubmitClaimGuards() {
	s.seedPolicy(100)
	policyID := big.NewInt(1)

	cases := []struct {
		name   string
		key    *ecdsa.PrivateKey
		policy *big.Int
		amount int64
		hash   string
	}{
		{"unknown policy", s.patient, big.NewInt(42), 10, "e"},
		{"stranger", s.insurer, policyID, 10, "e"},
		{"empty evidence", s.patient, policyID, 10, ""},
		{"zero amount", s.patient, policyID, 0, "e"},
		{"over coverage", s.patient, policyID, 101, "e"},
	}
	for _, tc := range cases {
		receipt := send(&s.Suite, s.chain, tc.key, ledger.ClaimContract, "submitClaim",
			tc.policy, address(s.patient), address(s.insurer), tc.hash, "vc", big.NewInt(tc.amount))
		s.Equal(types.ReceiptStatusFailed, receipt.Status, tc.name)
	}

	values := s.call(ledger.ClaimContract, "getClaim", big.NewInt(1))
	s.Equal(int64(0), values[0].(*big.Int).Int64(), "no claim should exist")
}

func (s *ChainSuite) TestHospitalMaySubmitForPatient() {
	s.seedPolicy(100)
	send(&s.Suite, s.chain, s.hospital, ledger.IdentityRegistry, "registerIdentity", address(s.hospital), "did:key:h", ledger.RoleHospital)

	receipt := send(&s.Suite, s.chain, s.hospital, ledger.ClaimContract, "submitClaim",
		big.NewInt(1), address(s.patient), address(s.insurer), "e", "vc", big.NewInt(100))
	s.Equal(types.ReceiptStatusSuccessful, receipt.Status)
}

func (s *ChainSuite) TestRejectRequiresReasonAndIsTerminal() {
	s.seedPolicy(100)
	send(&s.Suite, s.chain, s.patient, ledger.ClaimContract, "submitClaim",
		big.NewInt(1), address(s.patient), address(s.insurer), "e", "vc", big.NewInt(5))

	early := send(&s.Suite, s.chain, s.insurer, ledger.ClaimContract, "rejectClaim", big.NewInt(1), "not covered")
	s.Equal(types.ReceiptStatusFailed, early.Status, "a submitted claim cannot be rejected before review")

	review := send(&s.Suite, s.chain, s.insurer, ledger.ClaimContract, "setUnderReview", big.NewInt(1))
	s.Require().Equal(types.ReceiptStatusSuccessful, review.Status)

	noReason := send(&s.Suite, s.chain, s.insurer, ledger.ClaimContract, "rejectClaim", big.NewInt(1), "")
	s.Equal(types.ReceiptStatusFailed, noReason.Status)

	rejected := send(&s.Suite, s.chain, s.insurer, ledger.ClaimContract, "rejectClaim", big.NewInt(1), "not covered")
	s.Require().Equal(types.ReceiptStatusSuccessful, rejected.Status)
	s.Require().Len(rejected.Logs, 1)

	values := s.call(ledger.ClaimContract, "getClaim", big.NewInt(1))
	s.Equal(uint8(claim.StatusRejected), values[6])

	paid := send(&s.Suite, s.chain, s.insurer, ledger.ClaimContract, "markPaid", big.NewInt(1))
	s.Equal(types.ReceiptStatusFailed, paid.Status)
}

func (s *ChainSuite) TestNonceAndReplayChecks() {
	tx := sign(&s.Suite, s.chain, s.patient, ledger.IdentityRegistry, 1, "registerIdentity", address(s.patient), "did:key:p", ledger.RolePatient)
	s.ErrorContains(s.chain.SendTransaction(s.ctx, tx), "nonce too high")

	tx = sign(&s.Suite, s.chain, s.patient, ledger.IdentityRegistry, 0, "registerIdentity", address(s.patient), "did:key:p", ledger.RolePatient)
	s.Require().NoError(s.chain.SendTransaction(s.ctx, tx))
	s.ErrorContains(s.chain.SendTransaction(s.ctx, tx), "already known")

	stale := sign(&s.Suite, s.chain, s.patient, ledger.IdentityRegistry, 0, "registerIdentity", address(s.hospital), "did:key:h", ledger.RoleHospital)
	s.ErrorContains(s.chain.SendTransaction(s.ctx, stale), "nonce too low")
}

func (s *ChainSuite) TestPendingReceiptIsNotFound() {
	_, err := s.chain.TransactionReceipt(s.ctx, common.HexToHash("0x01"))
	s.ErrorIs(err, ethereum.NotFound)
}

func TestJournalReplay(t *testing.T) {
	dir := t.TempDir()
	s := &suite.Suite{}
	s.SetT(t)

	insurer, _ := crypto.GenerateKey()
	patient, _ := crypto.GenerateKey()

	chain, err := OpenFile(dir)
	s.Require().NoError(err)
	send(s, chain, insurer, ledger.IdentityRegistry, "registerIdentity", address(insurer), "did:key:ins", ledger.RoleInsurer)
	send(s, chain, insurer, ledger.PolicyContract, "issuePolicy", address(patient), big.NewInt(250))
	send(s, chain, patient, ledger.PolicyContract, "issuePolicy", address(patient), big.NewInt(1)) // reverts
	s.Require().NoError(chain.Close())

	reopened, err := OpenFile(dir)
	s.Require().NoError(err)
	defer reopened.Close()

	height, _ := reopened.BlockNumber(context.Background())
	s.Equal(uint64(3), height)
	nonce, _ := reopened.PendingNonceAt(context.Background(), address(patient))
	s.Equal(uint64(1), nonce)

	parsed, _ := ledger.ABI(ledger.PolicyContract)
	data, _ := parsed.Pack("getPolicy", big.NewInt(1))
	to := reopened.Addresses().PolicyContract
	out, err := reopened.CallContract(context.Background(), ethereum.CallMsg{To: &to, Data: data}, nil)
	s.Require().NoError(err)
	var rec ledger.PolicyRecord
	s.Require().NoError(parsed.UnpackIntoInterface(&rec, "getPolicy", out))
	s.True(rec.Exists)
	s.Equal(int64(250), rec.CoverageAmount.Int64())

	// Issuing continues from the replayed counter.
	receipt := send(s, reopened, insurer, ledger.PolicyContract, "issuePolicy", address(patient), big.NewInt(5))
	s.Equal(types.ReceiptStatusSuccessful, receipt.Status)
	s.Equal(big.NewInt(2).Bytes(), receipt.Logs[0].Topics[1].Big().Bytes())
}
