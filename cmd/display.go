package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/tranvictor/bridgekit/allowance"
	bkcommon "github.com/tranvictor/bridgekit/common"
	"github.com/tranvictor/bridgekit/config"
	"github.com/tranvictor/bridgekit/resolver"
	"github.com/tranvictor/bridgekit/ui"
)

const suggestions = 3

type resolutionJSON struct {
	Input   string `json:"input"`
	State   string `json:"state"`
	Address string `json:"address,omitempty"`
	Name    string `json:"name,omitempty"`
}

func writeJSON(u ui.UI, v interface{}) error {
	enc := json.NewEncoder(u.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResolution shows a settled snapshot. It returns ErrUnresolved when
// the input could not be resolved, after listing address book entries that
// look like it.
func printResolution(e *env, s resolver.Snapshot) error {
	if config.JSONOutput {
		if err := writeJSON(e.ui, resolutionJSON{
			Input:   s.Input,
			State:   s.State.String(),
			Address: s.Result.Address,
			Name:    s.Result.Name,
		}); err != nil {
			return err
		}
		if s.State == resolver.Error {
			return fmt.Errorf("%w: %s", ErrUnresolved, s.Input)
		}
		return nil
	}

	u := e.ui
	switch s.State {
	case resolver.Idle:
		u.Warn("Nothing to resolve.")
	case resolver.ResolvedName:
		u.KeyValue([][2]string{
			{"Address", u.Style(ui.StyledText{Text: s.Result.Address, Severity: ui.SeveritySuccess})},
			{"Name", s.Result.Name},
		})
	case resolver.ResolvedAddress:
		u.KeyValue([][2]string{
			{"Address", u.Style(ui.StyledText{Text: s.Result.Address, Severity: ui.SeveritySuccess})},
			{"Name", u.Style(ui.StyledText{Text: "(none)", Severity: ui.SeverityWarn})},
		})
	case resolver.Error:
		u.Error("Couldn't resolve %s.", s.Input)
		if matches := e.book.Suggest(s.Input, suggestions); len(matches) > 0 {
			u.Info("Did you mean:")
			child := u.Indent()
			for _, m := range matches {
				child.Info("%s (%s)", m.Name, m.Address)
			}
		}
		return fmt.Errorf("%w: %s", ErrUnresolved, s.Input)
	}
	return nil
}

// formatAmount renders a raw token amount with its decimals and symbol, or
// just the raw amount when they can't be read.
func formatAmount(e *env, amount *big.Int, token string) string {
	decimal, err := e.tokens.ERC20Decimal(token)
	if err != nil {
		e.l.Debug("couldn't read token decimals", zap.String("token", token), zap.Error(err))
		return amount.String()
	}
	symbol, err := e.tokens.ERC20Symbol(token)
	if err != nil {
		symbol = token
	}
	return fmt.Sprintf("%s %s", bkcommon.BigToFloatString(amount, decimal), symbol)
}

type allowanceQuery struct {
	account  string
	spender  string
	contract string
	chainID  uint64
}

func printAllowance(e *env, q allowanceQuery, info allowance.Info) error {
	if config.JSONOutput {
		return writeJSON(e.ui, info)
	}
	u := e.ui
	u.Section("Allowance")
	rows := [][2]string{
		{"Account", q.account},
		{"Spender", q.spender},
		{"Token", q.contract},
		{"Chain ID", fmt.Sprintf("%d", q.chainID)},
	}
	switch {
	case info.Found():
		rows = append(rows,
			[2]string{"Allowance", u.Style(ui.StyledText{Text: formatAmount(e, info.Approve, q.contract), Severity: ui.SeveritySuccess})},
			[2]string{"Raw", info.Approve.String()},
		)
		u.KeyValue(rows)
	default:
		rows = append(rows, [2]string{"Allowance", u.Style(ui.StyledText{Text: info.Msg, Severity: ui.SeverityError})})
		u.KeyValue(rows)
		u.Warn("The allowance couldn't be read from chain. Run with --log-level debug to see why.")
	}
	return nil
}
