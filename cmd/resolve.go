package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/bridgekit/config"
	"github.com/tranvictor/bridgekit/resolver"
	"github.com/tranvictor/bridgekit/util/addrbook"
)

var ErrUnresolved = errors.New("couldn't resolve input")

const pollInterval = 10 * time.Millisecond

var resolveCmd = &cobra.Command{
	Use:   "resolve [name or address]...",
	Short: "Resolve names to addresses and addresses to names",
	Long: `Each argument is typed into the resolver one after the other, only the
last one is resolved once the input settles. An address with a primary ENS
name is replaced by that name, which is then resolved again.

Without arguments, lines are read from stdin and resolved one at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return resolveLines(cmd.Context(), e)
		}
		return resolveArgs(cmd.Context(), e, args)
	},
}

func startResolver(ctx context.Context, e *env) *resolver.Resolver {
	r := resolver.New(e.ledger,
		resolver.WithDebounce(e.debounce),
		resolver.WithLogger(e.l),
		resolver.OnInput(func(text string) {
			e.ui.Interpret(text)
		}),
	)
	go r.Run(ctx)
	return r
}

func settled(s resolver.State) bool {
	switch s {
	case resolver.Idle, resolver.ResolvedAddress, resolver.ResolvedName, resolver.Error:
		return true
	}
	return false
}

// waitSettled polls r until the input of generation gen (or a later one)
// came to rest.
func waitSettled(ctx context.Context, r *resolver.Resolver, gen uint64, timeout time.Duration) (resolver.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		s := r.Snapshot()
		if s.Generation >= gen && settled(s.State) {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return s, fmt.Errorf("resolving %s: %w", s.Input, ctx.Err())
		case <-ticker.C:
		}
	}
}

func resolveArgs(ctx context.Context, e *env, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r := startResolver(ctx, e)

	gen := r.Snapshot().Generation
	for _, arg := range args {
		r.InputValid(arg, config.AssumeValid)
		gen++
	}
	stop := e.ui.Spinner("resolving...")
	s, err := waitSettled(ctx, r, gen, e.timeout)
	stop()
	if err != nil {
		return err
	}
	return printResolution(e, s)
}

// resolveLines resolves every line read from the UI. Unresolvable lines
// are reported and skipped.
func resolveLines(ctx context.Context, e *env) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r := startResolver(ctx, e)
	if e.bookPath != "" {
		if err := addrbook.Watch(ctx, e.bookPath, e.book, e.l); err != nil {
			e.l.Warn("address book changes won't be picked up", zap.Error(err))
		}
	}

	e.ui.Info("Type a name or an address, end with Ctrl-D.")
	for {
		line, ok := e.ui.Ask(nil)
		if !ok {
			return nil
		}
		gen := r.Snapshot().Generation + 1
		r.InputValid(line, config.AssumeValid)
		s, err := waitSettled(ctx, r, gen, e.timeout)
		if err != nil {
			e.ui.Error("%s", err)
			continue
		}
		if err := printResolution(e, s); err != nil && !errors.Is(err, ErrUnresolved) {
			return err
		}
	}
}

func init() {
	resolveCmd.Flags().DurationVar(&config.Debounce, "debounce", config.DefaultDebounce, "how long the input must stay unchanged before it is resolved")
	resolveCmd.Flags().BoolVar(&config.AssumeValid, "valid", false, "treat the input as an address even if it doesn't look like one")
	resolveCmd.Flags().BoolVar(&config.JSONOutput, "json", false, "print the result as json")
	rootCmd.AddCommand(resolveCmd)
}
