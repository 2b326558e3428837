package flow

import (
	"fmt"
	"strings"

	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// confirmToken is the only input that starts the breathing exercise.
const confirmToken = "go"

// BreathingState carries no data — the flow is a single confirmation
// gate.
type BreathingState struct{}

// Kind implements session.State.
func (BreathingState) Kind() session.Kind { return session.KindBreathing }

// Breathing is the single-step breathing exercise: the literal
// confirmation token advances to completion, anything else re-prompts.
type Breathing struct {
	msgs Messages
}

// NewBreathing creates the breathing flow.
func NewBreathing(msgs Messages) *Breathing {
	return &Breathing{msgs: msgs}
}

// Kind implements Flow.
func (b *Breathing) Kind() session.Kind { return session.KindBreathing }

// Start implements Flow.
func (b *Breathing) Start(user store.User) (string, session.State) {
	return b.msgs.T(user.Lang, "breath_intro"), BreathingState{}
}

// Advance implements Flow.
func (b *Breathing) Advance(user store.User, st session.State, text string) (string, session.State, bool, error) {
	bs, ok := st.(BreathingState)
	if !ok {
		return "", st, false, fmt.Errorf("flow: breathing advance with %T state", st)
	}
	if !strings.EqualFold(strings.TrimSpace(text), confirmToken) {
		return b.msgs.T(user.Lang, "breath_invalid"), bs, false, nil
	}
	return b.msgs.T(user.Lang, "breath_go"), bs, true, nil
}
