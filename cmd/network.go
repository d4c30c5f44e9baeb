package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/bridgekit/config"
	"github.com/tranvictor/bridgekit/networks"
	"github.com/tranvictor/bridgekit/ui"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all supported networks",
	Run: func(cmd *cobra.Command, args []string) {
		u := ui.NewTerminalUI(cmd.OutOrStdout(), cmd.InOrStdin())
		printNetworks(u, networks.GetSupportedNetworks(), networks.CurrentNetwork())
		u.Info("")
		u.Info("Add a network with: bridgekit networks add --config <file or json>")
		u.Info("Remove one by deleting its json file in %s.", config.NetworksDir())
	},
}

func printNetworks(u ui.UI, ns []networks.Network, current networks.Network) {
	rows := [][]string{}
	for _, n := range ns {
		name := n.GetName()
		if current != nil && current.GetChainID() == n.GetChainID() {
			name = u.Style(ui.StyledText{Text: name + " *", Severity: ui.SeveritySuccess})
		}
		ens := "mainnet"
		if n.GetENSRegistry() != "" {
			ens = "yes"
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", n.GetChainID()),
			n.GetNativeTokenSymbol(),
			ens,
			n.GetNodeVariableName(),
		})
	}
	u.Table([]string{"Network", "Chain ID", "Native", "ENS", "Node env var"}, rows)
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a network to the supported networks",
	Long: `--config takes a path to a json file or the json itself:
	{
		"name": "linea",
		"alternative_names": ["linea-mainnet"],
		"chain_id": 59144,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"node_variable_name": "LINEA_MAINNET_NODE",
		"default_nodes": {
			"linea": "https://rpc.linea.build"
		},
		"ens_registry": ""
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI(cmd.OutOrStdout(), cmd.InOrStdin())
		content, err := readNetworkConfig(NetworkConfig)
		if err != nil {
			return err
		}
		return addNetwork(u, content, NetworkForce)
	},
}

func readNetworkConfig(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("--config is required")
	}
	if strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		return []byte(value), nil
	}
	content, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("couldn't read network config: %w", err)
	}
	return content, nil
}

func addNetwork(u ui.UI, content []byte, force bool) error {
	n, err := networks.NewNetworkFromJSON(content)
	if err != nil {
		return err
	}
	for _, name := range append([]string{n.GetName()}, n.GetAlternativeNames()...) {
		if _, err := networks.GetNetwork(name); err == nil {
			if !force {
				return fmt.Errorf("network %s already exists, use --force to replace it", name)
			}
			u.Warn("Network %s already exists and will be replaced.", name)
		}
	}
	if err := networks.AddNetwork(n); err != nil {
		return err
	}
	u.Success("Network %s with chain ID %d saved to %s.", n.GetName(), n.GetChainID(), config.NetworksDir())
	return nil
}

var networkCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"network"},
	Short:   "Manage the networks bridgekit can read from",
	Run:     listNetworkCmd.Run,
}

func init() {
	addNetworkCmd.Flags().StringVarP(&NetworkConfig, "config", "c", "", "path to the network config json file, or the json itself")
	addNetworkCmd.Flags().BoolVarP(&NetworkForce, "force", "f", false, "replace a network with the same name")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
