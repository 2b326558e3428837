// Package flow implements the guided exercise state machines.
//
// Each flow is an explicit finite state machine advancing on one
// message per turn. A flow produces at most one reply per turn and
// persists its side effect only on completion (the trigger log, which
// persists per item, is the documented exception). Nothing here calls
// the safety guard — the router runs it before any flow step, so a
// guard hit never reaches Advance.
//
// Step numbering is a named type per flow, never a bare shared
// integer, so a check-in step can't be confused with a grounding one.
package flow

import (
	"strconv"
	"strings"

	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// doneToken ends the accumulating flows (planning, trigger log).
const doneToken = "done"

// Sink is the persistence surface flows write through.
// Abstracted for testability (DIP).
type Sink interface {
	SaveCheckin(userID int64, stress float64, triggers string, sleepHours float64, microGoal string) error
	SaveTrigger(userID int64, note string) error
	SavePlanItem(userID int64, item string) error
}

// Flow is one guided exercise.
//
// Start returns the intro prompt and the initial session state.
// Advance consumes one message: on validation failure it re-prompts
// with the same state; on success it returns the next state and, when
// the flow completes, done = true. A non-nil error means a persistence
// failure — the state is returned unchanged so the turn can be retried,
// and the caller renders a generic apology.
type Flow interface {
	Kind() session.Kind
	Start(user store.User) (reply string, st session.State)
	Advance(user store.User, st session.State, text string) (reply string, next session.State, done bool, err error)
}

// Engine holds one instance of every flow, keyed by kind.
type Engine struct {
	flows map[session.Kind]Flow
}

// NewEngine wires all five flows against the given message bundle and
// persistence sink.
func NewEngine(msgs Messages, sink Sink) *Engine {
	e := &Engine{flows: make(map[session.Kind]Flow)}
	for _, f := range []Flow{
		NewCheckin(msgs, sink),
		NewBreathing(msgs),
		NewGrounding(msgs),
		NewPlanning(msgs, sink),
		NewTriggerLog(msgs, sink),
	} {
		e.flows[f.Kind()] = f
	}
	return e
}

// Get returns the flow for a kind.
func (e *Engine) Get(kind session.Kind) (Flow, bool) {
	f, ok := e.flows[kind]
	return f, ok
}

// Messages is the slice of the translation store flows need.
type Messages interface {
	T(lang, key string) string
	Tf(lang, key string, args ...any) string
}

// parseNumber parses a real number, accepting both comma and dot as
// the decimal separator ("6,5" and "6.5" are the same answer).
func parseNumber(text string) (float64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	return strconv.ParseFloat(text, 64)
}

// clampStress clamps a reported stress level to the [0, 10] scale.
func clampStress(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// isDone reports whether the message is the completion token.
func isDone(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), doneToken)
}
