package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/bridgekit/allowance"
	"github.com/tranvictor/bridgekit/config"
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance <account> <spender> <token-contract>",
	Short: "Show the ERC20 allowance an account granted to a bridge spender",
	Long: `Reads allowance(account, spender) from the token contract on the current
network. The answer is cached per account, spender and chain id and served
from the cache afterwards until --refresh or --forget is used.

Account and spender can be addresses, ENS names or address book entries.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		return runAllowance(e, args)
	},
}

func runAllowance(e *env, args []string) error {
	account, err := e.addressOf(args[0])
	if err != nil {
		return err
	}
	spender, err := e.addressOf(args[1])
	if err != nil {
		return err
	}
	contract, err := e.addressOf(args[2])
	if err != nil {
		return err
	}
	q := allowanceQuery{
		account:  account,
		spender:  spender,
		contract: contract,
		chainID:  e.network.GetChainID(),
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			e.l.Warn("couldn't close allowance cache", zap.Error(err))
		}
	}()
	c := allowance.NewCache(store, e.tokens, allowance.WithLogger(e.l))

	if config.Forget {
		if err := c.Forget(q.account, q.spender, q.chainID); err != nil {
			return fmt.Errorf("couldn't forget allowance: %w", err)
		}
		e.ui.Success("Forgot the cached allowance of %s for %s on chain %d.", q.account, q.spender, q.chainID)
		return nil
	}

	var info allowance.Info
	stop := e.ui.Spinner("reading allowance...")
	if config.Refresh {
		info = c.Refresh(q.account, q.spender, q.chainID, q.contract)
	} else {
		info = c.GetAllowanceInfo(q.account, q.spender, q.chainID, q.contract)
	}
	stop()
	return printAllowance(e, q, info)
}

func init() {
	allowanceCmd.Flags().BoolVar(&config.Refresh, "refresh", false, "read the allowance from chain even if it is cached")
	allowanceCmd.Flags().BoolVar(&config.Forget, "forget", false, "drop the cached allowance instead of reading it")
	allowanceCmd.Flags().BoolVar(&config.JSONOutput, "json", false, "print the cached record as json")
	rootCmd.AddCommand(allowanceCmd)
}
