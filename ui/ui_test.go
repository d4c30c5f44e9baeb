package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalTable(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUI(&out, strings.NewReader(""))
	u.Table([]string{"name", "chain id"}, [][]string{{"mainnet", "1"}, {"bsc", "56"}})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "┌─────────┬──────────┐", lines[0])
	assert.Equal(t, "│ name    │ chain id │", lines[1])
	assert.Equal(t, "│ mainnet │ 1        │", lines[3])
	assert.Equal(t, "└─────────┴──────────┘", lines[5])
}

func TestTerminalKeyValueIndented(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUI(&out, strings.NewReader(""))
	u.Indent().KeyValue([][2]string{{"address", "0x1"}, {"name", "a.eth"}})
	assert.Equal(t, "  address: 0x1\n  name:    a.eth\n", out.String())
}

func TestTerminalAsk(t *testing.T) {
	var out bytes.Buffer
	u := NewTerminalUI(&out, strings.NewReader("bad\ngood\nlast"))
	validate := func(s string) error {
		if s == "bad" {
			return errors.New("try again")
		}
		return nil
	}

	line, ok := u.Ask(validate)
	assert.True(t, ok)
	assert.Equal(t, "good", line)
	assert.Contains(t, out.String(), "try again")

	line, ok = u.Ask(nil)
	assert.True(t, ok, "a final line without newline is still input")
	assert.Equal(t, "last", line)

	_, ok = u.Ask(nil)
	assert.False(t, ok)
}

func TestRecordingUI(t *testing.T) {
	r := NewRecordingUI("vitalik.eth")
	r.Info("hello %s", "world")
	r.Indent().Error("boom")

	line, ok := r.Indent().Ask(nil)
	assert.True(t, ok)
	assert.Equal(t, "vitalik.eth", line)
	_, ok = r.Ask(nil)
	assert.False(t, ok)

	assert.Equal(t, []string{"boom"}, r.Messages("Error"))
	assert.True(t, r.HasMessage("WORLD"))
}

func TestKeyValueLabelsGetOneColon(t *testing.T) {
	rows := [][2]string{{"Address", "0x1"}, {"Chain ID", "56"}}

	r := NewRecordingUI()
	r.KeyValue(rows)
	assert.Equal(t, []string{"Address: 0x1", "Chain ID: 56"}, r.Messages("KeyValue"))

	var out bytes.Buffer
	NewTerminalUI(&out, strings.NewReader("")).KeyValue(rows)
	assert.Equal(t, "Address:  0x1\nChain ID: 56\n", out.String())
}
