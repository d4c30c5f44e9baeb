package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/bridgekit/allowance"
	bkcommon "github.com/tranvictor/bridgekit/common"
	"github.com/tranvictor/bridgekit/config"
	"github.com/tranvictor/bridgekit/networks"
	"github.com/tranvictor/bridgekit/resolver"
	"github.com/tranvictor/bridgekit/ui"
	"github.com/tranvictor/bridgekit/util/addrbook"
	"github.com/tranvictor/bridgekit/util/cache"
	"github.com/tranvictor/bridgekit/util/reader"
)

const ensMemoTTL = 5 * time.Minute

// TokenReader is what the allowance command reads from chain.
type TokenReader interface {
	allowance.Reader
	ERC20Decimal(caddr string) (uint64, error)
	ERC20Symbol(caddr string) (string, error)
}

// env is everything a command talks to. Commands build it from flags with
// newEnv, tests fill it by hand.
type env struct {
	ui       ui.UI
	l        *zap.Logger
	network  networks.Network
	book     *addrbook.Book
	bookPath string
	ledger   resolver.Ledger
	tokens   TokenReader
	debounce time.Duration
	timeout  time.Duration

	openStore func() (cache.Store, error)
}

func newEnv(cmd *cobra.Command) (*env, error) {
	bookPath := config.AddressBookPath()
	book, err := addrbook.Load(bookPath)
	if err != nil {
		return nil, err
	}
	network := networks.CurrentNetwork()
	ensNetwork := networks.ENSNetwork(network)
	logger.Debug("environment",
		zap.String("network", network.GetName()),
		zap.String("ens network", ensNetwork.GetName()),
		zap.Int("address book entries", book.Len()),
	)

	debounce := config.Debounce
	if debounce <= 0 {
		debounce = config.DefaultDebounce
	}
	return &env{
		ui:       ui.NewTerminalUI(cmd.OutOrStdout(), cmd.InOrStdin()),
		l:        logger,
		network:  network,
		book:     book,
		bookPath: bookPath,
		ledger:   addrbook.Chain{book, addrbook.Memo(reader.NewEthReader(ensNetwork), ensMemoTTL)},
		tokens:   reader.NewEthReader(network),
		debounce: debounce,
		timeout:  config.Timeout,
		openStore: func() (cache.Store, error) {
			return cache.Open(config.CacheBackend, config.CachePath)
		},
	}, nil
}

// addressOf turns a name or an address typed as a command argument into an
// address, without debouncing.
func (e *env) addressOf(text string) (string, error) {
	if addr, ok := bkcommon.IsAddress(text); ok {
		return addr, nil
	}
	addr, err := e.ledger.ResolveName(text)
	if err != nil {
		return "", fmt.Errorf("couldn't resolve %s: %w", text, err)
	}
	if addr == "" {
		return "", fmt.Errorf("couldn't resolve %s: no address found", text)
	}
	return addr, nil
}
