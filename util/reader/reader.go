package reader

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	bkcommon "github.com/tranvictor/bridgekit/common"
	"github.com/tranvictor/bridgekit/networks"
)

var DEFAULT_ADDRESS string = "0x0000000000000000000000000000000000000000"

var ErrNoNodes = errors.New("no nodes configured")

// EthReader reads from every configured node concurrently and returns the
// first successful answer.
type EthReader struct {
	nodes       map[string]EthereumNode
	ensRegistry string
}

func NewEthReaderGeneric(nodes map[string]string, ensRegistry string) *EthReader {
	ns := map[string]EthereumNode{}
	for name, c := range nodes {
		ns[name] = NewOneNodeReader(name, c)
	}
	return &EthReader{
		nodes:       ns,
		ensRegistry: ensRegistry,
	}
}

// NewEthReaderWithNodes builds a reader over already constructed nodes.
func NewEthReaderWithNodes(ensRegistry string, nodes ...EthereumNode) *EthReader {
	ns := map[string]EthereumNode{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &EthReader{
		nodes:       ns,
		ensRegistry: ensRegistry,
	}
}

func NewEthReader(network networks.Network) *EthReader {
	return NewEthReaderGeneric(networks.NodesFor(network), network.GetENSRegistry())
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type readContractToBytesResponse struct {
	Data  []byte
	Error error
}

func (er *EthReader) ReadContractToBytes(
	from string,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]byte, error) {
	if len(er.nodes) == 0 {
		return nil, ErrNoNodes
	}
	resCh := make(chan readContractToBytesResponse, len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			data, err := n.ReadContractToBytes(from, caddr, abi, method, args...)
			resCh <- readContractToBytesResponse{
				Data:  data,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Data, result.Error
		}
		errs = append(errs, result.Error)
	}
	return nil, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) ReadContractWithABI(
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	responseBytes, err := er.ReadContractToBytes(DEFAULT_ADDRESS, caddr, abi, method, args...)
	if err != nil {
		return err
	}
	return abi.UnpackIntoInterface(result, method, responseBytes)
}

// ERC20Allowance reads allowance(owner, spender) from the token contract at
// caddr.
func (er *EthReader) ERC20Allowance(
	caddr string,
	owner string,
	spender string,
) (*big.Int, error) {
	abi := bkcommon.GetERC20ABI()
	result := big.NewInt(0)
	err := er.ReadContractWithABI(
		&result, caddr, abi,
		"allowance",
		bkcommon.HexToAddress(owner),
		bkcommon.HexToAddress(spender),
	)
	return result, err
}

func (er *EthReader) ERC20Decimal(caddr string) (uint64, error) {
	abi := bkcommon.GetERC20ABI()
	var result uint8
	err := er.ReadContractWithABI(&result, caddr, abi, "decimals")
	return uint64(result), err
}

func (er *EthReader) ERC20Symbol(caddr string) (string, error) {
	abi := bkcommon.GetERC20ABI()
	var result string
	err := er.ReadContractWithABI(&result, caddr, abi, "symbol")
	return result, err
}
