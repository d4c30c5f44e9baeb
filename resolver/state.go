package resolver

type State int

const (
	// Idle means there is nothing to resolve, the input is empty.
	Idle State = iota
	// Pending means the input changed and the debounce window is running.
	Pending
	// Classifying means a lookup for the quiescent input is in flight.
	Classifying
	ResolvedAddress
	ResolvedName
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Classifying:
		return "classifying"
	case ResolvedAddress:
		return "resolved-address"
	case ResolvedName:
		return "resolved-name"
	case Error:
		return "error"
	}
	return "unknown"
}

// ErrorState is the tri-state error flag reported to consumers.
type ErrorState int

const (
	// ErrorUnset means no resolution was attempted for the current input.
	ErrorUnset ErrorState = iota
	// ErrorCleared means the current input resolved.
	ErrorCleared
	// ErrorFailed means the current input could not be resolved.
	ErrorFailed
)

func (e ErrorState) String() string {
	switch e {
	case ErrorUnset:
		return "unset"
	case ErrorCleared:
		return "cleared"
	case ErrorFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the settled {address, name} pair. The zero value is
// unresolved, an address without name is a bare address, both set means a
// name was resolved to the address or the other way around.
type Result struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (r Result) Resolved() bool {
	return r.Address != ""
}

// Snapshot is a consistent copy of the resolver state.
type Snapshot struct {
	Input      string
	Valid      bool
	Generation uint64
	State      State
	Result     Result
	Error      ErrorState
}
