package devchain

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	errorSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	stringArgs    = abi.Arguments{{Type: mustType("string")}}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// revertError mirrors the error a JSON-RPC node returns for a reverted call:
// code 3 with the ABI-encoded Error(string) as data.
type revertError struct {
	reason string
}

func revert(reason string) error {
	return &revertError{reason: reason}
}

func (e *revertError) Error() string {
	if e.reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.reason
}

func (e *revertError) ErrorCode() int {
	return 3
}

func (e *revertError) ErrorData() interface{} {
	packed, err := stringArgs.Pack(e.reason)
	if err != nil {
		return nil
	}
	return hexutil.Encode(append(append([]byte(nil), errorSelector...), packed...))
}
