package reader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	bkcommon "github.com/tranvictor/bridgekit/common"
)

const TIMEOUT time.Duration = 4 * time.Second

// Public nodes start rejecting requests well above this.
const (
	DefaultRateLimit rate.Limit = 20
	DefaultBurst                = 5
)

type OneNodeReader struct {
	nodeName  string
	nodeURL   string
	client    *rpc.Client
	ethClient *ethclient.Client
	limiter   *rate.Limiter
	mu        sync.Mutex
}

func NewOneNodeReader(name, url string) *OneNodeReader {
	return &OneNodeReader{
		nodeName: name,
		nodeURL:  url,
		limiter:  rate.NewLimiter(DefaultRateLimit, DefaultBurst),
	}
}

// SetRateLimit caps the requests sent to the node to limit per second.
func (onr *OneNodeReader) SetRateLimit(limit rate.Limit, burst int) {
	onr.limiter.SetLimit(limit)
	onr.limiter.SetBurst(burst)
}

func (onr *OneNodeReader) NodeName() string {
	return onr.nodeName
}

func (onr *OneNodeReader) NodeURL() string {
	return onr.nodeURL
}

// EthClient dials the node on first use and reuses the connection after.
func (onr *OneNodeReader) EthClient() (*ethclient.Client, error) {
	onr.mu.Lock()
	defer onr.mu.Unlock()
	if onr.ethClient != nil {
		return onr.ethClient, nil
	}
	client, err := rpc.Dial(onr.NodeURL())
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to %s: %w", onr.nodeName, err)
	}
	onr.client = client
	onr.ethClient = ethclient.NewClient(onr.client)
	return onr.ethClient, nil
}

func (onr *OneNodeReader) ReadContractToBytes(from string, caddr string, abi *abi.ABI, method string, args ...interface{}) ([]byte, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}

	contract := bkcommon.HexToAddress(caddr)
	data, err := abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	timeout, cancel := context.WithTimeout(context.Background(), TIMEOUT)
	defer cancel()
	if err := onr.limiter.Wait(timeout); err != nil {
		return nil, fmt.Errorf("%s is rate limited: %w", onr.nodeName, err)
	}

	return ethcli.CallContract(timeout, ethereum.CallMsg{
		From: bkcommon.HexToAddress(from),
		To:   &contract,
		Data: data,
	}, nil)
}
