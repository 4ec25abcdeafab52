package ledger

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	dErrors "claimchain/pkg/domain-errors"
)

// Signer is a secp256k1 account able to sign transactions.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// ParsePrivateKey derives a Signer from a hex private key, with or without 0x.
func ParsePrivateKey(hexKey string) (*Signer, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeMissingField, "privateKey is required")
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidKey, "private key does not derive a valid account")
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewSigner wraps an existing key.
func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

func (s *Signer) Address() common.Address {
	return s.address
}
