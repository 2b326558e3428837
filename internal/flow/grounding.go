package flow

import (
	"fmt"

	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// groundingStep is one sensory prompt of the 5-4-3-2-1 exercise.
type groundingStep struct {
	Count string
	Hint  string
}

// groundingSteps holds the fixed prompt sequences per language.
var groundingSteps = map[string][]groundingStep{
	"en": {
		{"5 things you see", "things you can see around you"},
		{"4 things you touch", "textures or objects"},
		{"3 things you hear", "ambient sounds"},
		{"2 things you smell", "scents, even faint"},
		{"1 thing you taste", "or imagine a taste"},
	},
	"uk": {
		{"5 що бачиш", "предмети навколо"},
		{"4 що торкаєшся", "текстури чи об'єкти"},
		{"3 що чуєш", "довколишні звуки"},
		{"2 що відчуваєш на запах", "навіть ледь відчутні"},
		{"1 на смак", "або уяви смак"},
	},
}

func stepsFor(lang string) []groundingStep {
	if steps, ok := groundingSteps[lang]; ok {
		return steps
	}
	return groundingSteps["en"]
}

// GroundingState tracks which prompt comes next. Lang is resolved once
// at flow start from the user's stored language; a later settings
// change does not switch the prompt set mid-exercise.
type GroundingState struct {
	Lang string
	Next int
}

// Kind implements session.State.
func (GroundingState) Kind() session.Kind { return session.KindGrounding }

// Grounding is the 5-4-3-2-1 sensory exercise: five prompts in fixed
// order, any input acknowledges a step, no validation.
type Grounding struct {
	msgs Messages
}

// NewGrounding creates the grounding flow.
func NewGrounding(msgs Messages) *Grounding {
	return &Grounding{msgs: msgs}
}

// Kind implements Flow.
func (g *Grounding) Kind() session.Kind { return session.KindGrounding }

// Start implements Flow.
func (g *Grounding) Start(user store.User) (string, session.State) {
	return g.msgs.T(user.Lang, "ground_intro"), GroundingState{Lang: user.Lang}
}

// Advance implements Flow.
func (g *Grounding) Advance(user store.User, st session.State, text string) (string, session.State, bool, error) {
	gs, ok := st.(GroundingState)
	if !ok {
		return "", st, false, fmt.Errorf("flow: grounding advance with %T state", st)
	}

	steps := stepsFor(gs.Lang)
	if gs.Next < len(steps) {
		step := steps[gs.Next]
		reply := g.msgs.Tf(gs.Lang, "ground_step", step.Count, step.Hint)
		if gs.Next > 0 {
			reply = g.msgs.T(gs.Lang, "ground_ack") + "\n" + reply
		}
		gs.Next++
		return reply, gs, false, nil
	}
	return g.msgs.T(gs.Lang, "ground_done"), gs, true, nil
}
