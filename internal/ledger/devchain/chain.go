// Package devchain is an embedded, single-node ledger that executes the
// identity, policy and claim contracts natively. It speaks the same
// transaction and ABI formats as a JSON-RPC node, so the ledger gateway
// cannot tell the two apart. Every accepted transaction is journaled to
// LevelDB and replayed on open.
package devchain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"claimchain/internal/ledger"
)

const (
	baseGas  = 21000
	execGas  = 60000
	gasPrice = 1_000_000_000
)

var journalPrefix = []byte("tx/")

// deployer is the notional account that deployed the three contracts.
var deployer = common.HexToAddress("0x00000000000000000000000000000000000c1a1d")

// DefaultAddresses are the deterministic contract addresses of the dev chain.
var DefaultAddresses = ledger.Addresses{
	IdentityRegistry: crypto.CreateAddress(deployer, 0),
	PolicyContract:   crypto.CreateAddress(deployer, 1),
	ClaimContract:    crypto.CreateAddress(deployer, 2),
}

// Chain is the embedded ledger. It is safe for concurrent use; transactions
// are applied one at a time, each in its own block.
type Chain struct {
	mu        sync.Mutex
	chainID   *big.Int
	signer    types.Signer
	addresses ledger.Addresses
	journal   *leveldb.DB
	logger    *slog.Logger

	state    *state
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*types.Receipt
	height   uint64
}

// Option configures a Chain.
type Option func(*Chain)

func WithChainID(id int64) Option {
	return func(c *Chain) { c.chainID = big.NewInt(id) }
}

// WithJournal persists transactions to db. Without it the chain is memory only.
func WithJournal(db *leveldb.DB) Option {
	return func(c *Chain) { c.journal = db }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// Open creates a chain and replays its journal, if any.
func Open(opts ...Option) (*Chain, error) {
	c := &Chain{
		chainID:   big.NewInt(1337),
		addresses: DefaultAddresses,
		logger:    slog.Default(),
		state:     newState(),
		nonces:    make(map[common.Address]uint64),
		receipts:  make(map[common.Hash]*types.Receipt),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.signer = types.LatestSignerForChainID(c.chainID)

	if err := c.replay(); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenFile opens a chain journaled under dir.
func OpenFile(dir string, opts ...Option) (*Chain, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open ledger journal: %w", err)
	}
	c, err := Open(append(opts, WithJournal(db))...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the journal.
func (c *Chain) Close() error {
	if c.journal == nil {
		return nil
	}
	return c.journal.Close()
}

// Addresses returns the contract addresses.
func (c *Chain) Addresses() ledger.Addresses {
	return c.addresses
}

func (c *Chain) replay() error {
	if c.journal == nil {
		return nil
	}
	iter := c.journal.NewIterator(util.BytesPrefix(journalPrefix), nil)
	defer iter.Release()

	for iter.Next() {
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(iter.Value()); err != nil {
			return fmt.Errorf("decode journaled transaction: %w", err)
		}
		sender, err := types.Sender(c.signer, tx)
		if err != nil {
			return fmt.Errorf("recover journaled sender: %w", err)
		}
		c.apply(tx, sender)
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("read ledger journal: %w", err)
	}
	c.logger.Info("dev ledger replayed", "height", c.height)
	return nil
}

func (c *Chain) ChainID(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) BlockNumber(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height, nil
}

func (c *Chain) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *Chain) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(gasPrice), nil
}

// EstimateGas dry-runs msg and reports a revert the way a node does.
func (c *Chain) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	if msg.To == nil {
		return 0, errors.New("contract creation is not supported")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, _, err := c.execute(c.state.clone(), msg.From, *msg.To, msg.Data); err != nil {
		return 0, err
	}
	return gasFor(msg.Data), nil
}

// CallContract executes msg against the latest state without committing it.
func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, errors.New("contract creation is not supported")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ret, _, err := c.execute(c.state.clone(), msg.From, *msg.To, msg.Data)
	return ret, err
}

// SendTransaction validates, journals and mines tx in a block of its own.
// A reverted execution is still mined, with a failed receipt.
func (c *Chain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	sender, err := types.Sender(c.signer, tx)
	if err != nil {
		return fmt.Errorf("invalid transaction sender: %w", err)
	}
	if tx.To() == nil {
		return errors.New("contract creation is not supported")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, known := c.receipts[tx.Hash()]; known {
		return errors.New("already known")
	}
	switch expected := c.nonces[sender]; {
	case tx.Nonce() < expected:
		return fmt.Errorf("nonce too low: next nonce %d, tx nonce %d", expected, tx.Nonce())
	case tx.Nonce() > expected:
		return fmt.Errorf("nonce too high: next nonce %d, tx nonce %d", expected, tx.Nonce())
	}
	if tx.Gas() < gasFor(tx.Data()) {
		return fmt.Errorf("intrinsic gas too low: have %d, want %d", tx.Gas(), gasFor(tx.Data()))
	}

	if c.journal != nil {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode transaction: %w", err)
		}
		if err := c.journal.Put(journalKey(c.height+1), raw, nil); err != nil {
			return fmt.Errorf("journal transaction: %w", err)
		}
	}

	receipt := c.apply(tx, sender)
	c.logger.Debug("dev ledger block mined",
		"height", c.height,
		"tx_hash", tx.Hash().Hex(),
		"status", receipt.Status,
	)
	return nil
}

func (c *Chain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// apply executes a validated transaction and records its receipt. The caller holds c.mu.
func (c *Chain) apply(tx *types.Transaction, sender common.Address) *types.Receipt {
	c.nonces[sender]++
	c.height++

	var blockNum [8]byte
	binary.BigEndian.PutUint64(blockNum[:], c.height)
	blockHash := crypto.Keccak256Hash(blockNum[:], tx.Hash().Bytes())

	receipt := &types.Receipt{
		Type:              tx.Type(),
		TxHash:            tx.Hash(),
		BlockHash:         blockHash,
		BlockNumber:       new(big.Int).SetUint64(c.height),
		GasUsed:           gasFor(tx.Data()),
		CumulativeGasUsed: gasFor(tx.Data()),
		EffectiveGasPrice: tx.GasPrice(),
		Status:            types.ReceiptStatusFailed,
		Logs:              []*types.Log{},
	}

	next := c.state.clone()
	_, logs, err := c.execute(next, sender, *tx.To(), tx.Data())
	if err == nil {
		c.state = next
		receipt.Status = types.ReceiptStatusSuccessful
		for i, lg := range logs {
			lg.BlockNumber = c.height
			lg.BlockHash = blockHash
			lg.TxHash = tx.Hash()
			lg.Index = uint(i)
		}
		receipt.Logs = logs
	} else {
		c.logger.Debug("dev ledger transaction reverted", "tx_hash", tx.Hash().Hex(), "error", err)
	}
	c.receipts[tx.Hash()] = receipt
	return receipt
}

// execute runs calldata against the contract at to, mutating st.
func (c *Chain) execute(st *state, from, to common.Address, data []byte) ([]byte, []*types.Log, error) {
	name, ok := c.contractAt(to)
	if !ok {
		return nil, nil, fmt.Errorf("no contract deployed at %s", to.Hex())
	}
	contractABI, _ := ledger.ABI(name)

	if len(data) < 4 {
		return nil, nil, revert("")
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, revert("")
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, revert("invalid calldata")
	}

	x := &execution{st: st, from: from, contract: name, address: to, abi: contractABI}
	outputs, err := x.run(method, args)
	if err != nil {
		return nil, nil, err
	}
	ret, err := method.Outputs.Pack(outputs...)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s outputs: %w", method.Name, err)
	}
	return ret, x.logs, nil
}

func (c *Chain) contractAt(addr common.Address) (ledger.ContractName, bool) {
	for _, name := range []ledger.ContractName{ledger.IdentityRegistry, ledger.PolicyContract, ledger.ClaimContract} {
		if a, _ := c.addresses.For(name); a == addr {
			return name, true
		}
	}
	return "", false
}

func gasFor(data []byte) uint64 {
	return baseGas + execGas + 16*uint64(len(data))
}

func journalKey(height uint64) []byte {
	key := make([]byte, len(journalPrefix)+8)
	copy(key, journalPrefix)
	binary.BigEndian.PutUint64(key[len(journalPrefix):], height)
	return key
}

var _ ledger.Backend = (*Chain)(nil)
