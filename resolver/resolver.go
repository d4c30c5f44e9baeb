// Package resolver turns free text typed by a user into an address, a name
// or an error.
//
// Input is debounced: nothing is looked up until it stopped changing for
// the debounce window. The quiescent text is then classified. Addresses
// (or text the caller vouches for) are reverse resolved, a primary name
// found that way replaces the input and goes through the whole process
// again. Anything else is forward resolved as a name.
//
// All state lives on the goroutine running Run. Every keystroke starts a
// new generation, lookups carry the generation they were started in and
// their answer is dropped when a newer keystroke arrived meanwhile. The
// lookup itself is not cancelled.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	bkcommon "github.com/tranvictor/bridgekit/common"
)

const DefaultDebounce = 150 * time.Millisecond

var ErrAlreadyRunning = errors.New("resolver is already running")

// Ledger resolves names to addresses and back. An empty string with a nil
// error means there is no record.
type Ledger interface {
	ResolveName(name string) (string, error)
	LookupAddress(address string) (string, error)
}

type Resolver struct {
	id       string
	ledger   Ledger
	clock    clock.Clock
	debounce time.Duration
	l        *zap.Logger
	initial  string

	onChange func(Result)
	onError  func(ErrorState)
	onInput  func(string)

	events  chan interface{}
	done    chan struct{}
	running int32

	// latest keystroke not yet taken by the loop
	keyMu   sync.Mutex
	nextKey *keystroke
	keys    chan struct{}

	// owned by the Run goroutine
	input    string
	valid    bool
	gen      uint64
	state    State
	result   Result
	errState ErrorState
	timer    *clock.Timer

	mu       sync.RWMutex
	snapshot Snapshot
}

type Option func(*Resolver)

func WithDebounce(d time.Duration) Option {
	return func(r *Resolver) {
		r.debounce = d
	}
}

func WithClock(c clock.Clock) Option {
	return func(r *Resolver) {
		r.clock = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.l = l
	}
}

// WithInitialInput feeds text as the first keystroke once Run starts.
func WithInitialInput(text string) Option {
	return func(r *Resolver) {
		r.initial = text
	}
}

// OnChange is called every time the settled result changes.
func OnChange(fn func(Result)) Option {
	return func(r *Resolver) {
		r.onChange = fn
	}
}

// OnError is called every time the error flag changes.
func OnError(fn func(ErrorState)) Option {
	return func(r *Resolver) {
		r.onError = fn
	}
}

// OnInput is called when the resolver rewrites the input itself, that is
// when an address is replaced by its name. Addresses are otherwise kept as
// typed.
func OnInput(fn func(string)) Option {
	return func(r *Resolver) {
		r.onInput = fn
	}
}

// New returns a resolver looking names up in ledger. Callbacks run on the
// Run goroutine, one at a time and in order. They must not block on the
// resolver.
func New(ledger Ledger, opts ...Option) *Resolver {
	r := &Resolver{
		id:       uuid.NewString(),
		ledger:   ledger,
		clock:    clock.New(),
		debounce: DefaultDebounce,
		l:        zap.NewNop(),
		events:   make(chan interface{}, 64),
		done:     make(chan struct{}),
		keys:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.l = r.l.With(zap.String("resolver", r.id))
	r.publish()
	return r
}

type keystroke struct {
	text  string
	valid bool
	// keystrokes replaced by this one before the loop saw them
	superseded uint64
}

type quiescent struct {
	gen uint64
}

type reverseDone struct {
	gen   uint64
	input string
	name  string
	err   error
}

type forwardDone struct {
	gen     uint64
	input   string
	address string
	err     error
}

// Input replaces the current input with text, as if the user typed it.
func (r *Resolver) Input(text string) {
	r.InputValid(text, false)
}

// InputValid is Input for text the caller already knows to be a valid
// address, it is reverse resolved without the syntactic check.
//
// It never blocks, whether Run has started or not. Keystrokes arriving
// faster than the loop takes them collapse into the latest one, each of
// them still counts as a generation.
func (r *Resolver) InputValid(text string, valid bool) {
	r.keyMu.Lock()
	k := keystroke{text: text, valid: valid}
	if r.nextKey != nil {
		k.superseded = r.nextKey.superseded + 1
	}
	r.nextKey = &k
	r.keyMu.Unlock()

	select {
	case r.keys <- struct{}{}:
	default:
	}
}

func (r *Resolver) takeKeystroke() (keystroke, bool) {
	r.keyMu.Lock()
	defer r.keyMu.Unlock()
	if r.nextKey == nil {
		return keystroke{}, false
	}
	k := *r.nextKey
	r.nextKey = nil
	return k, true
}

func (r *Resolver) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Run processes input until ctx is done. Lookups still in flight when it
// returns are ignored.
func (r *Resolver) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return ErrAlreadyRunning
	}
	defer close(r.done)
	defer r.stopTimer()

	if r.initial != "" {
		r.handle(keystroke{text: r.initial})
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.keys:
			if k, ok := r.takeKeystroke(); ok {
				r.handle(k)
			}
		case ev := <-r.events:
			r.handle(ev)
		}
	}
}

func (r *Resolver) post(ev interface{}) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

func (r *Resolver) handle(ev interface{}) {
	switch e := ev.(type) {
	case keystroke:
		r.gen += e.superseded
		r.onKeystroke(e.text, e.valid)
	case quiescent:
		if r.stale(e.gen, "debounce") {
			return
		}
		r.classify()
	case reverseDone:
		if r.stale(e.gen, "reverse lookup") {
			return
		}
		r.onReverse(e)
	case forwardDone:
		if r.stale(e.gen, "forward lookup") {
			return
		}
		r.onForward(e)
	}
	r.publish()
}

func (r *Resolver) stale(gen uint64, what string) bool {
	if gen == r.gen {
		return false
	}
	r.l.Debug("dropping stale result",
		zap.String("from", what),
		zap.Uint64("generation", gen),
		zap.Uint64("current", r.gen),
	)
	return true
}

func (r *Resolver) onKeystroke(text string, valid bool) {
	r.gen++
	r.stopTimer()
	r.setResult(Result{})
	r.setError(ErrorUnset)

	r.input = text
	r.valid = valid
	r.state = Pending

	gen := r.gen
	r.timer = r.clock.AfterFunc(r.debounce, func() {
		r.post(quiescent{gen: gen})
	})
}

func (r *Resolver) classify() {
	r.timer = nil
	text := r.input
	gen := r.gen
	if text == "" {
		r.state = Idle
		return
	}
	r.state = Classifying

	if _, isAddr := bkcommon.IsAddress(text); isAddr || r.valid {
		r.l.Debug("reverse resolving", zap.String("input", text), zap.Uint64("generation", gen))
		go func() {
			name, err := call(func() (string, error) { return r.ledger.LookupAddress(text) })
			r.post(reverseDone{gen: gen, input: text, name: name, err: err})
		}()
		return
	}
	r.l.Debug("forward resolving", zap.String("input", text), zap.Uint64("generation", gen))
	go func() {
		address, err := call(func() (string, error) { return r.ledger.ResolveName(text) })
		r.post(forwardDone{gen: gen, input: text, address: address, err: err})
	}()
}

func (r *Resolver) onReverse(e reverseDone) {
	if e.err != nil {
		// an address is valid input whether or not it has a name
		r.l.Debug("reverse lookup failed, keeping bare address",
			zap.String("input", e.input),
			zap.Error(e.err),
		)
	} else if e.name != "" {
		r.l.Debug("address has a name, resolving it instead",
			zap.String("input", e.input),
			zap.String("name", e.name),
		)
		r.notifyInput(e.name)
		r.onKeystroke(e.name, false)
		return
	}
	r.setResult(Result{Address: e.input, Name: ""})
	r.setError(ErrorCleared)
	r.state = ResolvedAddress
}

func (r *Resolver) onForward(e forwardDone) {
	if e.err != nil || e.address == "" {
		r.l.Debug("couldn't resolve name", zap.String("input", e.input), zap.Error(e.err))
		r.setError(ErrorFailed)
		r.state = Error
		return
	}
	r.setResult(Result{Address: e.address, Name: e.input})
	r.setError(ErrorCleared)
	r.state = ResolvedName
}

func (r *Resolver) setResult(res Result) {
	if res == r.result {
		return
	}
	r.result = res
	if r.onChange != nil {
		r.onChange(res)
	}
}

func (r *Resolver) setError(e ErrorState) {
	if e == r.errState {
		return
	}
	r.errState = e
	if r.onError != nil {
		r.onError(e)
	}
}

func (r *Resolver) notifyInput(text string) {
	if r.onInput != nil {
		r.onInput(text)
	}
}

func (r *Resolver) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Resolver) publish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = Snapshot{
		Input:      r.input,
		Valid:      r.valid,
		Generation: r.gen,
		State:      r.state,
		Result:     r.result,
		Error:      r.errState,
	}
}

// call turns a panicking ledger into a failed lookup.
func call(fn func() (string, error)) (result string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = ""
			err = fmt.Errorf("ledger panicked: %v", rec)
		}
	}()
	return fn()
}
