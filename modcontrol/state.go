package modcontrol

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/arloliu/go-modcontrol/logger"
)

// State is the session state of a Client.
type State string

const (
	StateDisconnected     State = "disconnected"
	StateConnecting       State = "connecting"
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
)

const (
	evConnect       = "connect"
	evConnected     = "connected"
	evConnectFailed = "connect_failed"
	evRequest       = "request"
	evComplete      = "complete"
	evDisconnect    = "disconnect"
)

// sessionState wraps the state machine of a client session.
//
// Events are only fired from Connect, Disconnect and Execute, never from a
// timer or transport callback.
type sessionState struct {
	fsm    *fsm.FSM
	logger logger.Logger
}

func newSessionState(l logger.Logger) *sessionState {
	st := &sessionState{logger: l}
	st.fsm = fsm.NewFSM(
		string(StateDisconnected),
		fsm.Events{
			{Name: evConnect, Src: []string{string(StateDisconnected), string(StateIdle)}, Dst: string(StateConnecting)},
			{Name: evConnected, Src: []string{string(StateConnecting)}, Dst: string(StateIdle)},
			{Name: evConnectFailed, Src: []string{string(StateConnecting)}, Dst: string(StateDisconnected)},
			{Name: evRequest, Src: []string{string(StateIdle)}, Dst: string(StateAwaitingResponse)},
			{Name: evComplete, Src: []string{string(StateAwaitingResponse)}, Dst: string(StateIdle)},
			{
				Name: evDisconnect,
				Src: []string{
					string(StateConnecting), string(StateIdle),
					string(StateAwaitingResponse), string(StateDisconnected),
				},
				Dst: string(StateDisconnected),
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				st.logger.Debug("session state changed", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)

	return st
}

func (st *sessionState) current() State {
	return State(st.fsm.Current())
}

// fire triggers event. Self transitions are not errors.
func (st *sessionState) fire(event string) {
	err := st.fsm.Event(context.Background(), event)
	if err == nil {
		return
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return
	}

	st.logger.Debug("ignore session event", "event", event, "state", st.fsm.Current(), "error", err)
}
