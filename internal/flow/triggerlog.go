package flow

import (
	"fmt"
	"strings"

	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// TriggerLogState carries no data — every item is persisted the moment
// it arrives, there is no accumulation step.
type TriggerLogState struct{}

// Kind implements session.State.
func (TriggerLogState) Kind() session.Kind { return session.KindTriggerLog }

// TriggerLog appends each non-completion message to the trigger log
// immediately. The completion token ends the flow with no further
// persistence.
type TriggerLog struct {
	msgs Messages
	sink Sink
}

// NewTriggerLog creates the trigger-log flow.
func NewTriggerLog(msgs Messages, sink Sink) *TriggerLog {
	return &TriggerLog{msgs: msgs, sink: sink}
}

// Kind implements Flow.
func (t *TriggerLog) Kind() session.Kind { return session.KindTriggerLog }

// Start implements Flow.
func (t *TriggerLog) Start(user store.User) (string, session.State) {
	return t.msgs.T(user.Lang, "triggers_intro"), TriggerLogState{}
}

// Advance implements Flow.
func (t *TriggerLog) Advance(user store.User, st session.State, text string) (string, session.State, bool, error) {
	ts, ok := st.(TriggerLogState)
	if !ok {
		return "", st, false, fmt.Errorf("flow: trigger-log advance with %T state", st)
	}
	text = strings.TrimSpace(text)

	if isDone(text) {
		return t.msgs.T(user.Lang, "saved"), ts, true, nil
	}
	if err := t.sink.SaveTrigger(user.ID, text); err != nil {
		return "", ts, false, err
	}
	return t.msgs.T(user.Lang, "trigger_logged"), ts, false, nil
}
