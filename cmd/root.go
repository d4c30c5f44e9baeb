// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/bridgekit/config"
	"github.com/tranvictor/bridgekit/networks"
	"github.com/tranvictor/bridgekit/util/cache"
	"github.com/tranvictor/bridgekit/util/logging"
)

var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bridgekit",
	Short: "Resolve ENS names and inspect bridge token allowances",
	Long: fmt.Sprintf(`Bridgekit helps bridge operators with two daily chores:

	1. It turns what you type into an address: ENS names, entries of your
	address book (~/.bridgekit/addresses.json) or plain addresses, which are
	upgraded to their primary ENS name when they have one.

	2. It reads ERC20 allowances granted to a bridge spender and keeps them in
	a local cache (~/.bridgekit/cache.json by default, see --cache-backend) so
	repeated checks don't hit the chain.

Names are looked up on the selected network when it has an ENS registry,
on mainnet otherwise. You can point bridgekit to your own nodes by setting
the following env vars:
%s
More networks can be added with "bridgekit networks add".`,
		nodeVarsHelp(),
	),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(config.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		if err := networks.SetNetwork(config.Network); err != nil {
			return fmt.Errorf("%w. Supported: %s", err, strings.Join(networks.GetSupportedNetworkNames(), ", "))
		}
		if config.CachePath == "" {
			config.CachePath = config.DefaultCachePath(config.CacheBackend)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func nodeVarsHelp() string {
	b := strings.Builder{}
	for i, n := range networks.GetSupportedNetworks() {
		if n.GetNodeVariableName() == "" {
			continue
		}
		fmt.Fprintf(&b, "\t%d. For %s: %s\n", i+1, n.GetName(), n.GetNodeVariableName())
	}
	return b.String()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", "mainnet", fmt.Sprintf("network to read from. Valid values: %s.", strings.Join(networks.GetSupportedNetworkNames(), ", ")))
	rootCmd.PersistentFlags().StringVar(&config.CachePath, "cache", "", "allowance cache location. Defaults to ~/.bridgekit/cache.json (cache.db for bolt, cache.ldb for leveldb)")
	rootCmd.PersistentFlags().StringVar(&config.CacheBackend, "cache-backend", cache.BackendJSON, "allowance cache backend: json, bolt, leveldb or memory")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "warn", "debug, info, warn or error. Logs go to stderr")
	rootCmd.PersistentFlags().DurationVar(&config.Timeout, "timeout", config.DefaultTimeout, "how long to wait for the chain before giving up")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
