package flow

import (
	"fmt"
	"strings"

	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// maxPlanItems caps how many accumulated items are persisted per
// planning session. Anything past the cap is dropped silently.
const maxPlanItems = 3

// PlanningState accumulates plan items until the completion token.
type PlanningState struct {
	Items []string
}

// Kind implements session.State.
func (PlanningState) Kind() session.Kind { return session.KindPlanning }

// Planning collects free-text steps and persists the first three, in
// original order, when the user sends the completion token.
type Planning struct {
	msgs Messages
	sink Sink
}

// NewPlanning creates the planning flow.
func NewPlanning(msgs Messages, sink Sink) *Planning {
	return &Planning{msgs: msgs, sink: sink}
}

// Kind implements Flow.
func (p *Planning) Kind() session.Kind { return session.KindPlanning }

// Start implements Flow.
func (p *Planning) Start(user store.User) (string, session.State) {
	return p.msgs.T(user.Lang, "plan_intro"), PlanningState{}
}

// Advance implements Flow.
func (p *Planning) Advance(user store.User, st session.State, text string) (string, session.State, bool, error) {
	ps, ok := st.(PlanningState)
	if !ok {
		return "", st, false, fmt.Errorf("flow: planning advance with %T state", st)
	}
	text = strings.TrimSpace(text)

	if !isDone(text) {
		ps.Items = append(ps.Items, text)
		return p.msgs.T(user.Lang, "plan_added"), ps, false, nil
	}

	items := ps.Items
	if len(items) > maxPlanItems {
		items = items[:maxPlanItems]
	}
	for _, item := range items {
		if err := p.sink.SavePlanItem(user.ID, item); err != nil {
			return "", ps, false, err
		}
	}
	return p.msgs.T(user.Lang, "plan_saved"), ps, true, nil
}
