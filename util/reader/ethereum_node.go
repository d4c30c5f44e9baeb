package reader

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// EthereumNode is one JSON-RPC endpoint. Every call carries the contract it
// targets, nodes keep no per-call state.
type EthereumNode interface {
	NodeName() string
	NodeURL() string
	ReadContractToBytes(
		from string,
		caddr string,
		abi *abi.ABI,
		method string,
		args ...interface{},
	) ([]byte, error)
}
