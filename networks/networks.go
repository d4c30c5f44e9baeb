package networks

import (
	"sync"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// CurrentNetwork returns the network selected by NetworkString, falling
// back to mainnet when the name is unknown.
func CurrentNetwork() Network {
	mu.Lock()
	defer mu.Unlock()
	if cachedNetwork != nil {
		return cachedNetwork
	}
	n, err := GetNetwork(NetworkString)
	if err != nil {
		n = EthereumMainnet
	}
	cachedNetwork = n
	return cachedNetwork
}

func SetNetwork(networkStr string) error {
	mu.Lock()
	defer mu.Unlock()
	n, err := GetNetwork(networkStr)
	if err != nil {
		return err
	}
	NetworkString = networkStr
	cachedNetwork = n
	return nil
}

// ENSNetwork returns n when it carries an ENS registry, mainnet otherwise.
// Names live on mainnet and addresses are the same across EVM chains.
func ENSNetwork(n Network) Network {
	if n.GetENSRegistry() != "" {
		return n
	}
	return EthereumMainnet
}

var NetworkString string = "mainnet"
