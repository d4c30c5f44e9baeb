package ui

import (
	"encoding/json"
	"io"
)

// Severity picks the colour a piece of text is rendered with.
type Severity uint8

const (
	SeverityInfo    Severity = iota // plain
	SeveritySuccess                 // green, resolved
	SeverityWarn                    // yellow, pending or unverified
	SeverityError                   // red, unresolvable
)

// StyledText is a plain string with a Severity. It marshals to JSON as the
// bare string.
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is everything bridgekit commands print or read.
//
// TerminalUI is used by the binary, RecordingUI by tests. Child UIs made
// with Indent share the parent's writer and input.
type UI interface {
	// Style returns t coloured by its severity, or the plain text when
	// colours are off.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error prints in red. It does not exit.
	Error(format string, args ...any)

	// Section prints a "===== title =====" separator.
	Section(title string)

	// KeyValue prints "label: value" rows with the values aligned. Labels
	// don't carry the colon.
	KeyValue(rows [][2]string)

	// Table prints a bordered table. No header row when headers is empty.
	Table(headers []string, rows [][]string)

	// Spinner shows msg with an animation until the returned func is
	// called.
	Spinner(msg string) func()

	// Interpret prints what an input line was understood as, "→ value".
	Interpret(value string)

	// Ask prints "> " and reads one line. It loops until validate accepts
	// the line, nil accepts anything. ok is false once input is exhausted.
	Ask(validate func(string) error) (line string, ok bool)

	Indent() UI

	// Writer returns a writer that indents every line at the current level.
	Writer() io.Writer
}
