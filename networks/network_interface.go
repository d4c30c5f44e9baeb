package networks

import (
	"encoding/json"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	// GetENSRegistry returns the ENS registry address on this network or
	// an empty string when names can't be resolved natively here.
	GetENSRegistry() string

	json.Marshaler
}
