package networks

import (
	"encoding/json"
	"os"
	"strings"
)

const ENSMainnetRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

type GenericNetworkConfig struct {
	Name               string            `json:"name"`
	AlternativeNames   []string          `json:"alternative_names"`
	ChainID            uint64            `json:"chain_id"`
	NativeTokenSymbol  string            `json:"native_token_symbol"`
	NativeTokenDecimal uint64            `json:"native_token_decimal"`
	NodeVariableName   string            `json:"node_variable_name"`
	DefaultNodes       map[string]string `json:"default_nodes"`
	ENSRegistry        string            `json:"ens_registry,omitempty"`
}

// GenericNetwork is a network fully described by its config, built-in
// networks and the ones loaded from ~/.bridgekit/networks share it.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	if config.NativeTokenDecimal == 0 {
		config.NativeTokenDecimal = 18
	}
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetENSRegistry() string {
	return gn.config.ENSRegistry
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(gn.config)
}

// NodesFor returns the nodes to read n from. A non-empty value in the
// network's node env var replaces the defaults.
func NodesFor(n Network) map[string]string {
	if n.GetNodeVariableName() != "" {
		customNode := strings.Trim(os.Getenv(n.GetNodeVariableName()), " ")
		if customNode != "" {
			return map[string]string{"custom-node": customNode}
		}
	}
	return n.GetDefaultNodes()
}
