package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EventResult is the outcome of DecodeEvent: either Found or NotFound.
type EventResult interface {
	isEventResult()
}

// Found carries the decoded arguments of the first matching log, keyed by
// ABI argument name (indexed and non-indexed alike).
type Found struct {
	Event string
	Args  map[string]any
	Log   types.Log
}

// NotFound means no log in the receipt decoded as the requested event. The
// transaction itself succeeded.
type NotFound struct {
	Event string
}

func (Found) isEventResult()    {}
func (NotFound) isEventResult() {}

// BigInt returns a uint256 argument.
func (f Found) BigInt(name string) (*big.Int, bool) {
	v, ok := f.Args[name].(*big.Int)
	return v, ok
}

// Address returns an address argument.
func (f Found) Address(name string) (common.Address, bool) {
	v, ok := f.Args[name].(common.Address)
	return v, ok
}

// DecodeEvent scans receipt logs in order and returns the first one that
// decodes against contractABI as eventName. Logs emitted by other contracts,
// or that otherwise fail to decode, are skipped.
func DecodeEvent(contractABI abi.ABI, receipt *types.Receipt, eventName string) EventResult {
	if receipt == nil {
		return NotFound{Event: eventName}
	}
	for _, lg := range receipt.Logs {
		if lg == nil || len(lg.Topics) == 0 {
			continue
		}
		ev, err := contractABI.EventByID(lg.Topics[0])
		if err != nil || ev.Name != eventName {
			continue
		}
		args := make(map[string]any, len(ev.Inputs))
		if err := contractABI.UnpackIntoMap(args, ev.Name, lg.Data); err != nil {
			continue
		}
		var indexed abi.Arguments
		for _, in := range ev.Inputs {
			if in.Indexed {
				indexed = append(indexed, in)
			}
		}
		if err := abi.ParseTopicsIntoMap(args, indexed, lg.Topics[1:]); err != nil {
			continue
		}
		return Found{Event: ev.Name, Args: args, Log: *lg}
	}
	return NotFound{Event: eventName}
}
