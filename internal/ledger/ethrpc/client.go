// Package ethrpc connects the ledger gateway to an Ethereum JSON-RPC node.
package ethrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"claimchain/internal/ledger"
)

var _ ledger.Backend = (*ethclient.Client)(nil)

// Dial connects to url and, when expectedChainID is non-zero, checks that the
// node serves that chain.
func Dial(ctx context.Context, url string, expectedChainID int64) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}
	if expectedChainID == 0 {
		return client, nil
	}
	if err := checkChainID(ctx, client, big.NewInt(expectedChainID)); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

type chainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

func checkChainID(ctx context.Context, r chainIDReader, expected *big.Int) error {
	got, err := r.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read chain id: %w", err)
	}
	if got.Cmp(expected) != 0 {
		return fmt.Errorf("ledger rpc serves chain %s, expected %s", got, expected)
	}
	return nil
}
