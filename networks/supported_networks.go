package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tranvictor/bridgekit/config"
)

var (
	EthereumMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "mainnet",
		AlternativeNames:  []string{"ethereum", "eth"},
		ChainID:           1,
		NativeTokenSymbol: "ETH",
		NodeVariableName:  "ETHEREUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"mainnet-publicnode": "https://ethereum-rpc.publicnode.com",
			"mainnet-llamarpc":   "https://eth.llamarpc.com",
		},
		ENSRegistry: ENSMainnetRegistry,
	})
	Sepolia Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "sepolia",
		ChainID:           11155111,
		NativeTokenSymbol: "ETH",
		NodeVariableName:  "ETHEREUM_SEPOLIA_NODE",
		DefaultNodes: map[string]string{
			"sepolia-publicnode": "https://ethereum-sepolia-rpc.publicnode.com",
		},
		ENSRegistry: ENSMainnetRegistry,
	})
	BSCMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "bsc",
		AlternativeNames:  []string{"bnb"},
		ChainID:           56,
		NativeTokenSymbol: "BNB",
		NodeVariableName:  "BSC_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"binance": "https://bsc-dataseed.binance.org",
			"defibit": "https://bsc-dataseed1.defibit.io",
		},
	})
	Matic Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "matic",
		AlternativeNames:  []string{"polygon"},
		ChainID:           137,
		NativeTokenSymbol: "POL",
		NodeVariableName:  "MATIC_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"polygon-rpc": "https://polygon-rpc.com",
		},
	})
	ArbitrumMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "arbitrum",
		ChainID:           42161,
		NativeTokenSymbol: "ETH",
		NodeVariableName:  "ARBITRUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"arbitrum-official": "https://arb1.arbitrum.io/rpc",
		},
	})
	OptimismMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "optimism",
		AlternativeNames:  []string{"op"},
		ChainID:           10,
		NativeTokenSymbol: "ETH",
		NodeVariableName:  "OPTIMISM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"optimism-official": "https://mainnet.optimism.io",
		},
	})
	BaseMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:              "base",
		ChainID:           8453,
		NativeTokenSymbol: "ETH",
		NodeVariableName:  "BASE_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"base-official": "https://mainnet.base.org",
		},
	})
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	Sepolia,
	BSCMainnet,
	Matic,
	ArbitrumMainnet,
	OptimismMainnet,
	BaseMainnet,
}

var globalSupportedNetworks = newSupportedNetworks(config.NetworksDir())
var ErrNetworkNotFound = fmt.Errorf("network not found")

type networks struct {
	mu           sync.RWMutex
	dir          string
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) getSupportedNetworkNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := []string{}
	for _, n := range n.networksByID {
		res = append(res, n.GetName())
		res = append(res, n.GetAlternativeNames()...)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) add(network Network) {
	n.networks[network.GetName()] = network
	n.networksByID[network.GetChainID()] = network
	for _, an := range network.GetAlternativeNames() {
		n.networks[an] = network
	}
}

func newSupportedNetworks(customDir string) *networks {
	result := networks{
		dir:          customDir,
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if _, found := result.networks[n.GetName()]; found {
			panic(
				fmt.Errorf(
					"network with name or alternative name of '%s' already exists",
					n.GetName(),
				),
			)
		}
		for _, an := range n.GetAlternativeNames() {
			if _, found := result.networks[an]; found {
				panic(
					fmt.Errorf("network with name or alternative name of '%s' already exists", an),
				)
			}
		}
		result.add(n)
	}

	customNetworks, err := loadCustomNetworks(customDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return &result
	}
	for _, n := range customNetworks {
		if _, nameFound := result.networks[n.GetName()]; nameFound {
			fmt.Fprintf(os.Stderr, "Network with name '%s' already exists. Using custom network.\n", n.GetName())
		}
		if _, idFound := result.networksByID[n.GetChainID()]; idFound {
			fmt.Fprintf(os.Stderr, "Network with id '%d' already exists. Using custom network.\n", n.GetChainID())
		}
		result.add(n)
	}
	return &result
}

func loadCustomNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}
		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue with other custom networks.\n", file, err)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config needs a name and a chain id")
	}
	return NewGenericNetwork(networkConfig), nil
}

// GetSupportedNetworks returns every network once, ordered by chain id.
func GetSupportedNetworks() []Network {
	return globalSupportedNetworks.all()
}

func (n *networks) all() []Network {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := []Network{}
	for _, network := range n.networksByID {
		res = append(res, network)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].GetChainID() < res[j].GetChainID()
	})
	return res
}

// save writes network as <dir>/<name>.json and makes it available right
// away. Saved networks are loaded again on the next start.
func (n *networks) save(network Network) error {
	content, err := json.MarshalIndent(network, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding network %s failed: %w", network.GetName(), err)
	}
	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return fmt.Errorf("creating %s failed: %w", n.dir, err)
	}
	file := filepath.Join(n.dir, strings.ToLower(network.GetName())+".json")
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return fmt.Errorf("writing %s failed: %w", file, err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.add(network)
	return nil
}

// AddNetwork saves network to the custom networks directory, replacing any
// network with the same name or chain id.
func AddNetwork(network Network) error {
	return globalSupportedNetworks.save(network)
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}
