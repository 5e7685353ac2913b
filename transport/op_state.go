package transport

import "sync/atomic"

// OpState is the lifecycle state of a transport.
type OpState uint32

const (
	ClosedState OpState = iota
	ClosingState
	OpeningState
	OpenedState
)

// String returns the name of the state.
func (s OpState) String() string {
	switch s {
	case ClosedState:
		return "Closed"
	case ClosingState:
		return "Closing"
	case OpeningState:
		return "Opening"
	case OpenedState:
		return "Opened"
	default:
		return "Unknown"
	}
}

// AtomicOpState is a lock-free OpState with compare-and-swap transitions.
//
//	Closed -> Opening -> Opened -> Closing -> Closed
//
// Opening may also move straight to Closing when a connect attempt fails.
type AtomicOpState struct {
	state atomic.Uint32
}

// String returns the name of the current state.
func (st *AtomicOpState) String() string {
	return st.Get().String()
}

// Get returns the current state.
func (st *AtomicOpState) Get() OpState {
	return OpState(st.state.Load())
}

// Set stores state without checking the transition.
func (st *AtomicOpState) Set(state OpState) {
	st.state.Store(uint32(state))
}

// IsClosed reports whether the state is Closed.
func (st *AtomicOpState) IsClosed() bool { return st.Get() == ClosedState }

// IsClosing reports whether the state is Closing.
func (st *AtomicOpState) IsClosing() bool { return st.Get() == ClosingState }

// IsOpening reports whether the state is Opening.
func (st *AtomicOpState) IsOpening() bool { return st.Get() == OpeningState }

// IsOpened reports whether the state is Opened.
func (st *AtomicOpState) IsOpened() bool { return st.Get() == OpenedState }

// ToOpening moves Closed to Opening. It fails in any other state.
func (st *AtomicOpState) ToOpening() bool {
	return st.state.CompareAndSwap(uint32(ClosedState), uint32(OpeningState))
}

// ToOpened moves Opening to Opened. It succeeds if already Opened.
func (st *AtomicOpState) ToOpened() bool {
	if st.IsOpened() {
		return true
	}

	return st.state.CompareAndSwap(uint32(OpeningState), uint32(OpenedState))
}

// ToClosing moves Opened or Opening to Closing.
func (st *AtomicOpState) ToClosing() bool {
	if st.state.CompareAndSwap(uint32(OpenedState), uint32(ClosingState)) {
		return true
	}

	return st.state.CompareAndSwap(uint32(OpeningState), uint32(ClosingState))
}

// ToClosed moves Closing to Closed. It succeeds if already Closed.
func (st *AtomicOpState) ToClosed() bool {
	if st.IsClosed() {
		return true
	}

	return st.state.CompareAndSwap(uint32(ClosingState), uint32(ClosedState))
}
