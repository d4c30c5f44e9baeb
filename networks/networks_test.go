package networks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInNetworksByNameAndID(t *testing.T) {
	n, err := GetNetwork("bnb")
	require.NoError(t, err)
	assert.Equal(t, uint64(56), n.GetChainID())

	n, err = GetNetworkByID(1)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", n.GetName())
	assert.Equal(t, ENSMainnetRegistry, n.GetENSRegistry())

	_, err = GetNetwork("nope")
	assert.True(t, errors.Is(err, ErrNetworkNotFound))
	_, err = GetNetworkByID(999999)
	assert.True(t, errors.Is(err, ErrNetworkNotFound))
}

func TestENSNetworkFallsBackToMainnet(t *testing.T) {
	assert.Equal(t, EthereumMainnet, ENSNetwork(BSCMainnet))
	assert.Equal(t, Sepolia, ENSNetwork(Sepolia))
}

func TestNodesForHonoursEnvOverride(t *testing.T) {
	assert.Equal(t, BSCMainnet.GetDefaultNodes(), NodesFor(BSCMainnet))

	t.Setenv("BSC_MAINNET_NODE", " https://my-node.example ")
	assert.Equal(t, map[string]string{"custom-node": "https://my-node.example"}, NodesFor(BSCMainnet))
}

func TestCustomNetworksOverrideBuiltIns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bsc.json"), []byte(`{
		"name": "bsc",
		"chain_id": 56,
		"native_token_symbol": "BNB",
		"node_variable_name": "MY_BSC_NODE",
		"default_nodes": {"mine": "https://bsc.example"}
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scroll.json"), []byte(`{
		"name": "scroll",
		"chain_id": 534352,
		"default_nodes": {"scroll": "https://rpc.scroll.io"}
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": ""}`), 0644))

	ns := newSupportedNetworks(dir)

	bsc, err := ns.getNetwork("bsc")
	require.NoError(t, err)
	assert.Equal(t, "MY_BSC_NODE", bsc.GetNodeVariableName())

	scroll, err := ns.getNetworkByID(534352)
	require.NoError(t, err)
	assert.Equal(t, "scroll", scroll.GetName())
	assert.Equal(t, uint64(18), scroll.GetNativeTokenDecimal())

	_, err = ns.getNetwork("mainnet")
	assert.NoError(t, err)
}

func TestSavedNetworkIsLoadedAgain(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "networks")
	ns := newSupportedNetworks(dir)

	linea, err := NewNetworkFromJSON([]byte(`{"name": "Linea", "chain_id": 59144, "ens_registry": ""}`))
	require.NoError(t, err)
	require.NoError(t, ns.save(linea))

	got, err := ns.getNetwork("Linea")
	require.NoError(t, err)
	assert.Equal(t, uint64(59144), got.GetChainID())
	assert.FileExists(t, filepath.Join(dir, "linea.json"))

	reloaded, err := newSupportedNetworks(dir).getNetworkByID(59144)
	require.NoError(t, err)
	assert.Equal(t, "Linea", reloaded.GetName())
}
