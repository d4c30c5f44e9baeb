package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	vitalik      = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	vitalikLower = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	nick         = "0xb8c2C29ee19D8307cb7255e1Cd9CbDE883A267d5"
	wait         = 2 * time.Second
	tick         = 2 * time.Millisecond
)

type fakeLedger struct {
	mu        sync.Mutex
	addresses map[string]string // name -> address
	names     map[string]string // address -> name
	forward   []string
	reverse   []string
	fwdErr    error
	revErr    error
	panicOn   string
	gates     map[string]chan struct{}
	entered   chan string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		addresses: map[string]string{},
		names:     map[string]string{},
		gates:     map[string]chan struct{}{},
		entered:   make(chan string, 16),
	}
}

func (f *fakeLedger) block(text string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[text] = gate
	return gate
}

func (f *fakeLedger) enter(text string) {
	f.entered <- text
	f.mu.Lock()
	gate := f.gates[text]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeLedger) ResolveName(name string) (string, error) {
	f.mu.Lock()
	f.forward = append(f.forward, name)
	f.mu.Unlock()
	f.enter(name)
	if name == f.panicOn {
		panic("node went away")
	}
	if f.fwdErr != nil {
		return "", f.fwdErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addresses[name], nil
}

func (f *fakeLedger) LookupAddress(address string) (string, error) {
	f.mu.Lock()
	f.reverse = append(f.reverse, address)
	f.mu.Unlock()
	f.enter(address)
	if f.revErr != nil {
		return "", f.revErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[strings.ToLower(address)], nil
}

func (f *fakeLedger) calls() (forward, reverse []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.forward...), append([]string(nil), f.reverse...)
}

type recorder struct {
	mu      sync.Mutex
	results []Result
	errors  []ErrorState
	inputs  []string
}

func (rec *recorder) options() []Option {
	return []Option{
		OnChange(func(r Result) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.results = append(rec.results, r)
		}),
		OnError(func(e ErrorState) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.errors = append(rec.errors, e)
		}),
		OnInput(func(text string) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.inputs = append(rec.inputs, text)
		}),
	}
}

func (rec *recorder) snapshot() ([]Result, []ErrorState, []string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Result(nil), rec.results...),
		append([]ErrorState(nil), rec.errors...),
		append([]string(nil), rec.inputs...)
}

type harness struct {
	t      *testing.T
	r      *Resolver
	mock   *clock.Mock
	ledger *fakeLedger
	rec    *recorder
	logs   *observer.ObservedLogs
}

func start(t *testing.T, ledger *fakeLedger, opts ...Option) *harness {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	h := &harness{
		t:      t,
		mock:   clock.NewMock(),
		ledger: ledger,
		rec:    &recorder{},
		logs:   logs,
	}
	all := append([]Option{WithClock(h.mock), WithLogger(zap.New(core))}, h.rec.options()...)
	h.r = New(ledger, append(all, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		assert.NoError(t, h.r.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return h
}

// typeText feeds text and waits until the keystroke was handled, so its
// debounce timer is registered on the mock clock.
func (h *harness) typeText(text string) {
	h.t.Helper()
	before := h.r.Snapshot().Generation
	h.r.Input(text)
	h.waitFor(func(s Snapshot) bool { return s.Generation > before })
}

func (h *harness) settle() {
	h.mock.Add(DefaultDebounce)
}

func (h *harness) waitFor(cond func(Snapshot) bool) Snapshot {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return cond(h.r.Snapshot()) }, wait, tick)
	return h.r.Snapshot()
}

func (h *harness) waitState(state State) Snapshot {
	h.t.Helper()
	return h.waitFor(func(s Snapshot) bool { return s.State == state })
}

func TestDebounceOnlyResolvesQuiescentInput(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["vitalik.eth"] = vitalik
	h := start(t, ledger)

	for _, text := range []string{"v", "vi", "vit", "vitalik.eth"} {
		h.typeText(text)
		assert.Equal(t, Pending, h.r.Snapshot().State)
		h.mock.Add(DefaultDebounce - time.Millisecond)
	}
	fwd, rev := ledger.calls()
	assert.Empty(t, fwd)
	assert.Empty(t, rev)

	h.mock.Add(time.Millisecond)
	snap := h.waitState(ResolvedName)
	assert.Equal(t, Result{Address: vitalik, Name: "vitalik.eth"}, snap.Result)
	assert.Equal(t, ErrorCleared, snap.Error)

	fwd, _ = ledger.calls()
	assert.Equal(t, []string{"vitalik.eth"}, fwd)
}

func TestStaleLookupIsDropped(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["slow.eth"] = vitalik
	ledger.addresses["fast.eth"] = nick
	gate := ledger.block("slow.eth")
	h := start(t, ledger)

	h.typeText("slow.eth")
	h.settle()
	require.Equal(t, "slow.eth", <-ledger.entered)

	h.typeText("fast.eth")
	h.settle()
	require.Equal(t, "fast.eth", <-ledger.entered)
	snap := h.waitState(ResolvedName)
	assert.Equal(t, Result{Address: nick, Name: "fast.eth"}, snap.Result)

	close(gate)
	require.Eventually(t, func() bool {
		return h.logs.FilterMessage("dropping stale result").Len() == 1
	}, wait, tick)
	snap = h.r.Snapshot()
	assert.Equal(t, Result{Address: nick, Name: "fast.eth"}, snap.Result)
	assert.Equal(t, "fast.eth", snap.Input)

	results, _, _ := h.rec.snapshot()
	for _, r := range results {
		assert.NotEqual(t, vitalik, r.Address, "a superseded lookup must never be published")
	}
}

func TestStaleDebounceIsDropped(t *testing.T) {
	ledger := newFakeLedger()
	h := start(t, ledger)

	h.typeText("a.eth")
	h.typeText("b.eth")
	// a timer that fired right before it was stopped
	h.r.post(quiescent{gen: 1})
	h.settle()
	h.waitState(Error)

	assert.Equal(t, 1, h.logs.FilterMessage("dropping stale result").Len())
	fwd, _ := ledger.calls()
	assert.Equal(t, []string{"b.eth"}, fwd)
}

func TestAddressWithNameIsUpgraded(t *testing.T) {
	ledger := newFakeLedger()
	ledger.names[vitalikLower] = "vitalik.eth"
	ledger.addresses["vitalik.eth"] = vitalik
	h := start(t, ledger)

	h.typeText(vitalikLower)
	assert.Equal(t, vitalikLower, h.r.Snapshot().Input)
	h.settle()

	h.waitFor(func(s Snapshot) bool { return s.Input == "vitalik.eth" && s.State == Pending })
	h.settle()
	snap := h.waitState(ResolvedName)
	assert.Equal(t, Result{Address: vitalik, Name: "vitalik.eth"}, snap.Result)
	assert.False(t, snap.Valid)

	_, _, inputs := h.rec.snapshot()
	assert.Equal(t, []string{"vitalik.eth"}, inputs)
	fwd, rev := ledger.calls()
	assert.Equal(t, []string{vitalikLower}, rev)
	assert.Equal(t, []string{"vitalik.eth"}, fwd)
}

func TestBareAddress(t *testing.T) {
	ledger := newFakeLedger()
	h := start(t, ledger)

	h.typeText(nick)
	h.settle()
	snap := h.waitState(ResolvedAddress)
	assert.Equal(t, Result{Address: nick}, snap.Result)
	assert.Equal(t, ErrorCleared, snap.Error)

	_, _, inputs := h.rec.snapshot()
	assert.Empty(t, inputs)
}

func TestBareAddressIsKeptAsTyped(t *testing.T) {
	ledger := newFakeLedger()
	h := start(t, ledger)

	h.typeText(vitalikLower)
	h.settle()
	snap := h.waitState(ResolvedAddress)
	assert.Equal(t, Result{Address: vitalikLower}, snap.Result)
	assert.Equal(t, vitalikLower, snap.Input)

	_, _, inputs := h.rec.snapshot()
	assert.Empty(t, inputs)
}

func TestReverseFailureKeepsBareAddress(t *testing.T) {
	ledger := newFakeLedger()
	ledger.revErr = errors.New("no reverse registrar")
	h := start(t, ledger)

	h.typeText(nick)
	h.settle()
	snap := h.waitState(ResolvedAddress)
	assert.Equal(t, Result{Address: nick}, snap.Result)
	assert.Equal(t, ErrorCleared, snap.Error)
}

func TestUnresolvableName(t *testing.T) {
	ledger := newFakeLedger()
	h := start(t, ledger)

	h.typeText("nobody.eth")
	h.settle()
	snap := h.waitState(Error)
	assert.Equal(t, ErrorFailed, snap.Error)
	assert.False(t, snap.Result.Resolved())
}

func TestForwardFailures(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.fwdErr = errors.New("dial tcp: i/o timeout")
		h := start(t, ledger)

		h.typeText("vitalik.eth")
		h.settle()
		assert.Equal(t, ErrorFailed, h.waitState(Error).Error)
	})

	t.Run("panic", func(t *testing.T) {
		ledger := newFakeLedger()
		ledger.panicOn = "vitalik.eth"
		h := start(t, ledger)

		h.typeText("vitalik.eth")
		h.settle()
		assert.Equal(t, ErrorFailed, h.waitState(Error).Error)

		ledger.addresses["nick.eth"] = nick
		h.typeText("nick.eth")
		h.settle()
		assert.Equal(t, Result{Address: nick, Name: "nick.eth"}, h.waitState(ResolvedName).Result,
			"the resolver keeps working after a panicking lookup")
	})
}

func TestKeystrokeResetsResultAndError(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["vitalik.eth"] = vitalik
	h := start(t, ledger)

	h.typeText("vitalik.eth")
	h.settle()
	h.waitState(ResolvedName)

	h.typeText("vitalik.et")
	snap := h.r.Snapshot()
	assert.Equal(t, Pending, snap.State)
	assert.Equal(t, Result{}, snap.Result)
	assert.Equal(t, ErrorUnset, snap.Error)

	h.settle()
	h.waitState(Error)

	results, errs, _ := h.rec.snapshot()
	assert.Equal(t, []Result{{Address: vitalik, Name: "vitalik.eth"}, {}}, results)
	assert.Equal(t, []ErrorState{ErrorCleared, ErrorUnset, ErrorFailed}, errs)
}

func TestEmptyInputGoesIdle(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["vitalik.eth"] = vitalik
	h := start(t, ledger)

	h.typeText("vitalik.eth")
	h.settle()
	h.waitState(ResolvedName)

	h.typeText("")
	h.settle()
	snap := h.waitState(Idle)
	assert.Equal(t, Result{}, snap.Result)
	assert.Equal(t, ErrorUnset, snap.Error)

	fwd, rev := ledger.calls()
	assert.Equal(t, []string{"vitalik.eth"}, fwd)
	assert.Empty(t, rev)
}

func TestValidFlagForcesReverseLookup(t *testing.T) {
	ledger := newFakeLedger()
	h := start(t, ledger)

	before := h.r.Snapshot().Generation
	h.r.InputValid("my-wallet", true)
	h.waitFor(func(s Snapshot) bool { return s.Generation > before })
	assert.True(t, h.r.Snapshot().Valid)
	h.settle()

	snap := h.waitState(ResolvedAddress)
	assert.Equal(t, Result{Address: "my-wallet"}, snap.Result)
	fwd, rev := ledger.calls()
	assert.Empty(t, fwd)
	assert.Equal(t, []string{"my-wallet"}, rev)
}

func TestInitialInput(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["vitalik.eth"] = vitalik
	h := start(t, ledger, WithInitialInput("vitalik.eth"))

	h.waitFor(func(s Snapshot) bool { return s.Generation == 1 })
	h.settle()
	assert.Equal(t, Result{Address: vitalik, Name: "vitalik.eth"}, h.waitState(ResolvedName).Result)
}

func TestNothingHappensBeforeInput(t *testing.T) {
	ledger := newFakeLedger()
	h := start(t, ledger)

	h.mock.Add(time.Minute)
	snap := h.r.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, ErrorUnset, snap.Error)

	results, errs, inputs := h.rec.snapshot()
	assert.Empty(t, results)
	assert.Empty(t, errs)
	assert.Empty(t, inputs)
}

func TestRunTwice(t *testing.T) {
	h := start(t, newFakeLedger())
	h.typeText("x")
	assert.ErrorIs(t, h.r.Run(context.Background()), ErrAlreadyRunning)
}

func TestRealClock(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["vitalik.eth"] = vitalik
	r := New(ledger, WithDebounce(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Input("vitalik.et")
	r.Input("vitalik.eth")
	require.Eventually(t, func() bool { return r.Snapshot().State == ResolvedName }, wait, tick)
	assert.Equal(t, Result{Address: vitalik, Name: "vitalik.eth"}, r.Snapshot().Result)
}

func TestInputNeverBlocks(t *testing.T) {
	ledger := newFakeLedger()
	r := New(ledger, WithClock(clock.NewMock()))

	typed := make(chan struct{})
	go func() {
		defer close(typed)
		for i := 0; i < 100; i++ {
			r.Input("a")
		}
		r.Input("vitalik.eth")
	}()
	select {
	case <-typed:
	case <-time.After(wait):
		t.Fatal("Input blocked while the resolver wasn't running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)
	require.Eventually(t, func() bool { return r.Snapshot().Generation == 101 }, wait, tick)
	snap := r.Snapshot()
	assert.Equal(t, "vitalik.eth", snap.Input)
	assert.Equal(t, Pending, snap.State)
}

func TestCallbackMayTypeInput(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addresses["vitalik.eth"] = vitalik
	mock := clock.NewMock()
	var r *Resolver
	r = New(ledger, WithClock(mock), OnError(func(ErrorState) {
		for i := 0; i < 100; i++ {
			r.Input("vitalik.eth")
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.Input("nobody.eth")
	require.Eventually(t, func() bool { return r.Snapshot().Generation == 1 }, wait, tick)
	mock.Add(DefaultDebounce)
	require.Eventually(t, func() bool { return r.Snapshot().Generation >= 101 }, wait, tick)
}
