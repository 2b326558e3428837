package flow

import (
	"fmt"
	"strings"

	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// CheckinStep enumerates the four check-in questions in order.
type CheckinStep int

const (
	StepStress CheckinStep = iota
	StepTriggers
	StepSleep
	StepGoal
)

// CheckinState is the in-progress state of a daily check-in. Answers
// accumulate here and are persisted in a single insert at completion.
type CheckinState struct {
	Step       CheckinStep
	Stress     float64
	Triggers   string
	SleepHours float64
}

// Kind implements session.State.
func (CheckinState) Kind() session.Kind { return session.KindCheckin }

// Checkin is the four-step daily check-in flow:
// stress → triggers → sleep → micro-goal.
type Checkin struct {
	msgs Messages
	sink Sink
}

// NewCheckin creates the check-in flow.
func NewCheckin(msgs Messages, sink Sink) *Checkin {
	return &Checkin{msgs: msgs, sink: sink}
}

// Kind implements Flow.
func (c *Checkin) Kind() session.Kind { return session.KindCheckin }

// Start implements Flow.
func (c *Checkin) Start(user store.User) (string, session.State) {
	return c.msgs.T(user.Lang, "checkin_intro"), CheckinState{Step: StepStress}
}

// Advance implements Flow.
func (c *Checkin) Advance(user store.User, st session.State, text string) (string, session.State, bool, error) {
	cs, ok := st.(CheckinState)
	if !ok {
		return "", st, false, fmt.Errorf("flow: check-in advance with %T state", st)
	}
	text = strings.TrimSpace(text)

	switch cs.Step {
	case StepStress:
		v, err := parseNumber(text)
		if err != nil {
			return c.msgs.T(user.Lang, "checkin_stress_invalid"), cs, false, nil
		}
		cs.Stress = clampStress(v)
		cs.Step = StepTriggers
		return c.msgs.Tf(user.Lang, "checkin_stress_saved", cs.Stress), cs, false, nil

	case StepTriggers:
		cs.Triggers = text
		cs.Step = StepSleep
		return c.msgs.T(user.Lang, "checkin_triggers_saved"), cs, false, nil

	case StepSleep:
		v, err := parseNumber(text)
		if err != nil {
			return c.msgs.T(user.Lang, "checkin_sleep_invalid"), cs, false, nil
		}
		// Sleep hours are stored as reported, without clamping.
		cs.SleepHours = v
		cs.Step = StepGoal
		return c.msgs.T(user.Lang, "checkin_sleep_saved"), cs, false, nil

	case StepGoal:
		if err := c.sink.SaveCheckin(user.ID, cs.Stress, cs.Triggers, cs.SleepHours, text); err != nil {
			// State stays at the goal step so the answer can be resent.
			return "", cs, false, err
		}
		return c.msgs.T(user.Lang, "checkin_done"), cs, true, nil
	}

	return "", cs, false, fmt.Errorf("flow: check-in at unknown step %d", cs.Step)
}
