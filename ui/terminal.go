package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	indent "github.com/openconfig/goyang/pkg/indent"
	"golang.org/x/term"
)

const (
	indentUnit      = "  "
	sectionWidth    = 50
	promptPrefix    = "> "
	interpretPrefix = "→ "
)

// TerminalUI writes to out and reads from in. Colours and the spinner are
// only used when out is a terminal.
type TerminalUI struct {
	level int
	out   io.Writer
	in    *bufio.Reader
	au    aurora.Aurora
	tty   bool
}

func NewTerminalUI(out io.Writer, in io.Reader) *TerminalUI {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &TerminalUI{
		out: out,
		in:  bufio.NewReader(in),
		au:  aurora.NewAurora(tty),
		tty: tty,
	}
}

func (u *TerminalUI) prefix() string {
	return strings.Repeat(indentUnit, u.level)
}

func (u *TerminalUI) println(line string) {
	fmt.Fprintf(u.out, "%s%s\n", u.prefix(), line)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	}
	return t.Text
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.println(fmt.Sprintf(format, args...))
}

func (u *TerminalUI) Success(format string, args ...any) {
	u.println(u.Style(StyledText{fmt.Sprintf(format, args...), SeveritySuccess}))
}

func (u *TerminalUI) Warn(format string, args ...any) {
	u.println(u.Style(StyledText{fmt.Sprintf(format, args...), SeverityWarn}))
}

func (u *TerminalUI) Error(format string, args ...any) {
	u.println(u.Style(StyledText{fmt.Sprintf(format, args...), SeverityError}))
}

func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := sectionWidth - runewidth.StringWidth(titled)
	if bars < 6 {
		bars = 6
	}
	left := bars / 2
	fmt.Fprintf(u.out, "\n%s%s%s%s\n\n",
		u.prefix(),
		strings.Repeat("=", left),
		titled,
		strings.Repeat("=", bars-left),
	)
}

func (u *TerminalUI) Interpret(value string) {
	fmt.Fprintf(u.out, "%s%s%s%s\n", u.prefix(), indentUnit, interpretPrefix, u.au.Cyan(value).String())
}

func (u *TerminalUI) Ask(validate func(string) error) (string, bool) {
	for {
		fmt.Fprintf(u.out, "%s%s", u.prefix(), promptPrefix)
		text, err := u.in.ReadString('\n')
		if err != nil && (text == "" || !errors.Is(err, io.EOF)) {
			return "", false
		}
		line := strings.TrimRight(text, "\r\n")
		if validate == nil {
			return line, true
		}
		verr := validate(line)
		if verr == nil {
			return line, true
		}
		u.Error("%s", verr)
		if err != nil {
			return "", false
		}
	}
}

func (u *TerminalUI) KeyValue(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]) + 1; w > width {
			width = w
		}
	}
	for _, r := range rows {
		u.println(runewidth.FillRight(r[0]+":", width) + " " + r[1])
	}
}

func (u *TerminalUI) Table(headers []string, rows [][]string) {
	cols := len(headers)
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}

	// display width, ignoring colour codes
	visible := func(s string) int {
		return runewidth.StringWidth(ansi.Strip(s))
	}
	widths := make([]int, cols)
	for _, r := range append([][]string{headers}, rows...) {
		for i, cell := range r {
			if w := visible(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if !u.tty {
		style = lipgloss.NewStyle()
	}
	rule := func(left, mid, right string) string {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return style.Render(left + strings.Join(parts, mid) + right)
	}
	line := func(cells []string) string {
		parts := make([]string, cols)
		for i := range parts {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = " " + cell + strings.Repeat(" ", widths[i]-visible(cell)) + " "
		}
		bar := style.Render("│")
		return bar + strings.Join(parts, bar) + bar
	}

	u.println(rule("┌", "┬", "┐"))
	if len(headers) > 0 {
		u.println(line(headers))
		u.println(rule("├", "┼", "┤"))
	}
	for _, r := range rows {
		u.println(line(r))
	}
	u.println(rule("└", "┴", "┘"))
}

func (u *TerminalUI) Spinner(msg string) func() {
	if !u.tty {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
	}
}

func (u *TerminalUI) Indent() UI {
	child := *u
	child.level++
	return &child
}

func (u *TerminalUI) Writer() io.Writer {
	if u.level == 0 {
		return u.out
	}
	return indent.NewWriter(u.out, u.prefix())
}
