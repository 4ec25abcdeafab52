// Package ledger is the gateway to the identity, policy and claim contracts:
// it signs and submits transactions, waits for their receipts and decodes
// the events they emit.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"claimchain/internal/platform/metrics"
	"claimchain/internal/platform/tracer"
	dErrors "claimchain/pkg/domain-errors"
	platformsync "claimchain/pkg/platform/sync"
)

// Backend is the subset of an Ethereum node API the gateway needs.
// *ethclient.Client satisfies it, as does the embedded development ledger.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	// TransactionReceipt returns ethereum.NotFound while the transaction is pending.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract is an authenticated handle on one of the known contracts.
type Contract struct {
	Name    ContractName
	Address common.Address
	ABI     abi.ABI
	signer  *Signer
}

// Signer returns the account transactions are sent from, or nil for read-only handles.
func (c *Contract) Signer() *Signer {
	return c.signer
}

// DecodeEvent decodes the first log of receipt matching eventName against this contract's ABI.
func (c *Contract) DecodeEvent(receipt *types.Receipt, eventName string) EventResult {
	return DecodeEvent(c.ABI, receipt, eventName)
}

// Gateway submits transactions to, and reads state from, the contracts.
type Gateway struct {
	backend        Backend
	addresses      Addresses
	chainID        *big.Int
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         tracer.Tracer

	// Nonce assignment and submission are serialized per sending account.
	nonces *platformsync.ShardedMutex
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

// WithConfirmation bounds how long SubmitAndConfirm waits for a receipt and
// how often it polls. Defaults are 30s and 500ms.
func WithConfirmation(timeout, poll time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			g.confirmTimeout = timeout
		}
		if poll > 0 {
			g.pollInterval = poll
		}
	}
}

// New creates a Gateway and reads the backend's chain id.
func New(ctx context.Context, backend Backend, addresses Addresses, opts ...Option) (*Gateway, error) {
	if err := addresses.Validate(); err != nil {
		return nil, err
	}
	g := &Gateway{
		backend:        backend,
		addresses:      addresses,
		confirmTimeout: 30 * time.Second,
		pollInterval:   500 * time.Millisecond,
		logger:         slog.Default(),
		tracer:         tracer.NewNoop(),
		nonces:         platformsync.NewShardedMutex(),
	}
	for _, opt := range opts {
		opt(g)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	g.chainID = chainID
	return g, nil
}

// Addresses returns the configured contract addresses.
func (g *Gateway) Addresses() Addresses {
	return g.addresses
}

// Signer derives a signer from a hex private key.
func (g *Gateway) Signer(privateKey string) (*Signer, error) {
	return ParsePrivateKey(privateKey)
}

// Contract returns a handle on the named contract. signer may be nil for
// read-only use.
func (g *Gateway) Contract(name ContractName, signer *Signer) (*Contract, error) {
	addr, ok := g.addresses.For(name)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnknownContract, fmt.Sprintf("unknown contract %q", name))
	}
	parsed, _ := ABI(name)
	return &Contract{Name: name, Address: addr, ABI: parsed, signer: signer}, nil
}

// Health reports whether the backend answers.
func (g *Gateway) Health(ctx context.Context) error {
	_, err := g.backend.BlockNumber(ctx)
	return err
}

// SubmitAndConfirm ABI-encodes method(args...), sends it from the handle's
// signer and waits for the receipt. A revert, either at gas estimation or in
// the mined receipt, is reported as transaction_reverted; no receipt within
// the confirmation timeout is transaction_timeout.
func (g *Gateway) SubmitAndConfirm(ctx context.Context, c *Contract, method string, args ...any) (receipt *types.Receipt, err error) {
	if c.signer == nil {
		return nil, dErrors.New(dErrors.CodeInvalidKey, "a signer is required to submit transactions")
	}
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("encode %s.%s", c.Name, method))
	}

	ctx, span := g.tracer.Start(ctx, tracer.SpanLedgerSubmit,
		tracer.String(tracer.AttrContract, string(c.Name)),
		tracer.String(tracer.AttrMethod, method),
	)
	start := time.Now()
	defer func() {
		g.metrics.ObserveLedgerTransaction(string(c.Name), method, outcome(err), time.Since(start).Seconds())
		span.End(err)
	}()

	tx, err := g.send(ctx, c, data)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrTxHash, tx.Hash().Hex()))

	receipt, err = g.waitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		g.logger.WarnContext(ctx, "transaction reverted",
			"contract", c.Name, "method", method, "tx_hash", tx.Hash().Hex())
		return nil, dErrors.New(dErrors.CodeTransactionReverted,
			fmt.Sprintf("%s.%s reverted in transaction %s", c.Name, method, tx.Hash().Hex()))
	}

	span.AddEvent(tracer.EventTxConfirmed, tracer.Int64("block", receipt.BlockNumber.Int64()))
	g.logger.InfoContext(ctx, "transaction confirmed",
		"contract", c.Name,
		"method", method,
		"tx_hash", tx.Hash().Hex(),
		"block", receipt.BlockNumber.Uint64(),
	)
	return receipt, nil
}

func (g *Gateway) send(ctx context.Context, c *Contract, data []byte) (*types.Transaction, error) {
	from := c.signer.Address()
	g.nonces.Lock(from.Hex())
	defer g.nonces.Unlock(from.Hex())

	gas, err := g.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &c.Address, Data: data})
	if err != nil {
		return nil, g.classify(err, "estimate gas")
	}
	nonce, err := g.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "read account nonce")
	}
	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, "read gas price")
	}

	to := c.Address
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas + gas/5,
		To:       &to,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(g.chainID), c.signer.key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign transaction")
	}
	if err := g.backend.SendTransaction(ctx, signed); err != nil {
		return nil, g.classify(err, "send transaction")
	}
	return signed, nil
}

func (g *Gateway) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			g.logger.DebugContext(ctx, "receipt poll failed", "tx_hash", hash.Hex(), "error", err)
		}
		select {
		case <-ctx.Done():
			return nil, dErrors.New(dErrors.CodeTransactionTimeout,
				fmt.Sprintf("transaction %s not confirmed within %s", hash.Hex(), g.confirmTimeout))
		case <-ticker.C:
		}
	}
}

// Call performs a read-only call and returns the decoded outputs.
func (g *Gateway) Call(ctx context.Context, c *Contract, method string, args ...any) ([]any, error) {
	out, err := g.call(ctx, c, method, args...)
	if err != nil {
		return nil, err
	}
	values, err := c.ABI.Unpack(method, out)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("decode %s.%s", c.Name, method))
	}
	return values, nil
}

// CallInto performs a read-only call and decodes the outputs into the struct
// pointed to by dst, matching fields by their abi tags.
func (g *Gateway) CallInto(ctx context.Context, c *Contract, dst any, method string, args ...any) error {
	out, err := g.call(ctx, c, method, args...)
	if err != nil {
		return err
	}
	if err := c.ABI.UnpackIntoInterface(dst, method, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("decode %s.%s", c.Name, method))
	}
	return nil
}

func (g *Gateway) call(ctx context.Context, c *Contract, method string, args ...any) (out []byte, err error) {
	data, err := c.ABI.Pack(method, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("encode %s.%s", c.Name, method))
	}

	ctx, span := g.tracer.Start(ctx, tracer.SpanLedgerCall,
		tracer.String(tracer.AttrContract, string(c.Name)),
		tracer.String(tracer.AttrMethod, method),
	)
	defer func() { span.End(err) }()

	msg := ethereum.CallMsg{To: &c.Address, Data: data}
	if c.signer != nil {
		msg.From = c.signer.Address()
	}
	out, err = g.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, g.classify(err, fmt.Sprintf("call %s.%s", c.Name, method))
	}
	return out, nil
}

func (g *Gateway) classify(err error, op string) error {
	if reason, ok := RevertReason(err); ok {
		msg := "transaction reverted"
		if reason != "" {
			msg += ": " + reason
		}
		return dErrors.Wrap(err, dErrors.CodeTransactionReverted, msg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTransactionTimeout, op+" timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeDependencyUnavailable, op+" failed: "+err.Error())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case dErrors.HasCode(err, dErrors.CodeTransactionReverted):
		return metrics.OutcomeReverted
	case dErrors.HasCode(err, dErrors.CodeTransactionTimeout):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeFailure
	}
}
