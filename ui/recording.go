package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Entry is one recorded UI call.
type Entry struct {
	Method string
	Value  string
}

type recording struct {
	mu      sync.Mutex
	entries []Entry
	inputs  []string
	next    int
	buf     bytes.Buffer
}

// RecordingUI is the UI used in tests. Output is recorded as entries and
// input is served from a script. Ask reports the end of input once the
// script is consumed.
//
// It is safe to use from several goroutines, resolver callbacks print from
// the event loop.
type RecordingUI struct {
	rec   *recording
	level int
}

func NewRecordingUI(script ...string) *RecordingUI {
	return &RecordingUI{rec: &recording{inputs: script}}
}

func (r *RecordingUI) record(method, value string) {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	r.rec.entries = append(r.rec.entries, Entry{Method: method, Value: value})
}

func (r *RecordingUI) nextInput() (string, bool) {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	if r.rec.next >= len(r.rec.inputs) {
		return "", false
	}
	line := r.rec.inputs[r.rec.next]
	r.rec.next++
	return line, true
}

func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.record("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Section(title string) {
	r.record("Section", title)
}

func (r *RecordingUI) Interpret(value string) {
	r.record("Interpret", value)
}

func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

func (r *RecordingUI) Table(headers []string, rows [][]string) {
	if len(headers) > 0 {
		r.record("TableHeader", strings.Join(headers, " | "))
	}
	for _, row := range rows {
		r.record("Table", strings.Join(row, " | "))
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

// Ask panics when a scripted line fails validation, there is nobody to
// correct it.
func (r *RecordingUI) Ask(validate func(string) error) (string, bool) {
	line, ok := r.nextInput()
	if !ok {
		return "", false
	}
	r.record("Ask", line)
	if validate != nil {
		if err := validate(line); err != nil {
			panic(fmt.Sprintf("RecordingUI: scripted input %q rejected: %s", line, err))
		}
	}
	return line, true
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{rec: r.rec, level: r.level + 1}
}

func (r *RecordingUI) Writer() io.Writer {
	return lockedWriter{r.rec}
}

type lockedWriter struct {
	rec *recording
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.rec.mu.Lock()
	defer w.rec.mu.Unlock()
	return w.rec.buf.Write(p)
}

func (r *RecordingUI) Entries() []Entry {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return append([]Entry(nil), r.rec.entries...)
}

// Messages returns the values recorded for method.
func (r *RecordingUI) Messages(method string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}

// HasMessage reports whether any entry contains substr, ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	lower := strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), lower) {
			return true
		}
	}
	return false
}

// Output is everything written to Writer.
func (r *RecordingUI) Output() string {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return r.rec.buf.String()
}
