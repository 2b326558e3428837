// Package bot is the dispatch router: for every inbound message it
// decides, in a fixed total order, who claims the turn.
//
// Precedence, highest first:
//
//  1. safety guard match — crisis reply, session cleared, abort
//  2. command — commands always win over a dangling session
//  3. active session — non-command text advances the user's flow
//  4. settings pattern ("lang <code>" / "country <code>")
//  5. report window ("7" / "30")
//  6. fallback — generative service, or "I don't understand" when the
//     service is unconfigured
//
// The fallback is the lowest-priority case of this table, not an
// exception path.
package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grechaniuk/svitlo-bot/internal/config"
	"github.com/grechaniuk/svitlo-bot/internal/flow"
	"github.com/grechaniuk/svitlo-bot/internal/report"
	"github.com/grechaniuk/svitlo-bot/internal/safety"
	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// timeNow is a package-level var for deterministic stats in tests.
var timeNow = time.Now

// Button is one inline choice offered with a reply.
type Button struct {
	Label string
	Data  string
}

// Reply is one outbound message, optionally with inline buttons.
type Reply struct {
	Text    string
	Buttons [][]Button
}

func textReply(s string) Reply { return Reply{Text: s} }

// Messages is the slice of the translation store the router needs.
type Messages interface {
	T(lang, key string) string
	Tf(lang, key string, args ...any) string
}

// ProfileStore is the persistent-store surface for user profiles and
// admin counts.
type ProfileStore interface {
	GetOrCreateUser(userID int64, defaultLang, defaultCountry string) (store.User, error)
	SetUserLang(userID int64, lang string) error
	SetUserCountry(userID int64, country string) error
	CountUsers() (int, error)
	CountCheckinsSince(since time.Time) (int, error)
}

// Aggregator computes trailing-window reports.
type Aggregator interface {
	Aggregate(userID int64, windowDays int) (*report.Report, error)
}

// Responder is the optional generative text service.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

// flowCommands maps command names to the flow they start.
var flowCommands = map[string]session.Kind{
	"daily":    session.KindCheckin,
	"breath":   session.KindBreathing,
	"ground":   session.KindGrounding,
	"plan":     session.KindPlanning,
	"triggers": session.KindTriggerLog,
}

var (
	langPattern    = regexp.MustCompile(`(?i)^lang\s+(\S+)$`)
	countryPattern = regexp.MustCompile(`(?i)^country\s+(\S+)$`)
	windowPattern  = regexp.MustCompile(`^(7|30)$`)
)

// Deps holds everything a Router needs. LLM may be nil, which disables
// the generative fallback.
type Deps struct {
	Config   config.Config
	Messages Messages
	Logger   *zap.Logger
	Profiles ProfileStore
	Sessions *session.Store
	Flows    *flow.Engine
	Reports  Aggregator
	LLM      Responder
}

// Router dispatches inbound messages.
type Router struct {
	cfg      config.Config
	msgs     Messages
	log      *zap.Logger
	profiles ProfileStore
	sessions *session.Store
	flows    *flow.Engine
	reports  Aggregator
	llm      Responder
}

// New creates the router.
func New(d Deps) *Router {
	return &Router{
		cfg:      d.Config,
		msgs:     d.Messages,
		log:      d.Logger,
		profiles: d.Profiles,
		sessions: d.Sessions,
		flows:    d.Flows,
		reports:  d.Reports,
		llm:      d.LLM,
	}
}

// Handle processes one inbound text message for one user and returns
// the replies to send, in order. It never returns an error: every
// failure is rendered as a localized message so the transport has
// something to deliver.
func (r *Router) Handle(ctx context.Context, userID int64, text string) []Reply {
	user, err := r.profiles.GetOrCreateUser(userID, r.cfg.DefaultLang, r.cfg.DefaultCountry)
	if err != nil {
		r.log.Error("load user profile", zap.Int64("user", userID), zap.Error(err))
		return []Reply{textReply(r.msgs.T(r.cfg.DefaultLang, "apology"))}
	}

	// The guard outranks everything, including mid-flow steps. A hit
	// terminates the turn and discards in-progress flow state; nothing
	// is persisted.
	if safety.Scan(text) {
		r.sessions.Clear(userID)
		r.log.Info("crisis guard matched", zap.Int64("user", userID))
		return []Reply{textReply(r.msgs.T(user.Lang, "crisis_detected"))}
	}

	trimmed := strings.TrimSpace(text)

	if cmd, ok := parseCommand(trimmed); ok {
		return r.handleCommand(user, cmd)
	}

	if st, ok := r.sessions.Get(userID); ok {
		return r.advanceFlow(user, st, text)
	}

	if m := langPattern.FindStringSubmatch(trimmed); m != nil {
		return r.setLang(user, strings.ToLower(m[1]))
	}
	if m := countryPattern.FindStringSubmatch(trimmed); m != nil {
		return r.setCountry(user, strings.ToUpper(m[1]))
	}

	if m := windowPattern.FindStringSubmatch(trimmed); m != nil {
		days, _ := strconv.Atoi(m[1])
		return r.renderReport(user, days)
	}

	return r.fallback(ctx, user, text)
}

// HandleCallback processes an inline-button press. Unknown data is
// ignored.
func (r *Router) HandleCallback(ctx context.Context, userID int64, data string) []Reply {
	user, err := r.profiles.GetOrCreateUser(userID, r.cfg.DefaultLang, r.cfg.DefaultCountry)
	if err != nil {
		r.log.Error("load user profile", zap.Int64("user", userID), zap.Error(err))
		return []Reply{textReply(r.msgs.T(r.cfg.DefaultLang, "apology"))}
	}

	if code, ok := strings.CutPrefix(data, "lang:"); ok {
		return r.setLang(user, strings.ToLower(code))
	}
	return nil
}

// parseCommand recognizes "/name" and "/name@botname" forms.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0]
	cmd = strings.TrimPrefix(cmd, "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), cmd != ""
}

func (r *Router) handleCommand(user store.User, cmd string) []Reply {
	if kind, ok := flowCommands[cmd]; ok {
		return r.startFlow(user, kind)
	}

	switch cmd {
	case "start":
		// A recognized command discards any dangling session.
		r.discardSession(user.ID)
		choices := make([]Button, 0, len(r.cfg.Languages))
		for _, code := range r.cfg.Languages {
			choices = append(choices, Button{Label: strings.ToUpper(code), Data: "lang:" + code})
		}
		return []Reply{
			textReply(r.msgs.T(user.Lang, "start")),
			{Text: r.msgs.T(user.Lang, "choose_lang"), Buttons: [][]Button{choices}},
		}
	case "settings":
		r.discardSession(user.ID)
		return []Reply{textReply(r.msgs.Tf(user.Lang, "settings", user.Lang, user.Country))}
	case "sleep":
		r.discardSession(user.ID)
		return []Reply{textReply(r.msgs.T(user.Lang, "sleep_tips"))}
	case "report":
		r.discardSession(user.ID)
		return []Reply{textReply(r.msgs.T(user.Lang, "report_intro"))}
	case "stats":
		return r.adminStats(user)
	}

	// Unrecognized commands don't touch the session.
	return []Reply{textReply(r.msgs.T(user.Lang, "unknown"))}
}

func (r *Router) discardSession(userID int64) {
	if prior, had := r.sessions.Get(userID); had {
		r.log.Info("discarding unfinished session",
			zap.Int64("user", userID),
			zap.String("flow", string(prior.Kind())))
		r.sessions.Clear(userID)
	}
}

func (r *Router) startFlow(user store.User, kind session.Kind) []Reply {
	f, ok := r.flows.Get(kind)
	if !ok {
		r.log.Error("no flow registered", zap.String("kind", string(kind)))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}

	reply, st := f.Start(user)
	if prior, had := r.sessions.Replace(user.ID, st); had {
		// Starting a new flow overrides an unfinished one. Nothing was
		// persisted for it, so only in-progress answers are lost.
		r.log.Info("replacing unfinished session",
			zap.Int64("user", user.ID),
			zap.String("old_flow", string(prior.Kind())),
			zap.String("new_flow", string(kind)))
	}
	return []Reply{textReply(reply)}
}

func (r *Router) advanceFlow(user store.User, st session.State, text string) []Reply {
	f, ok := r.flows.Get(st.Kind())
	if !ok {
		r.log.Error("session with no flow", zap.Int64("user", user.ID), zap.String("kind", string(st.Kind())))
		r.sessions.Clear(user.ID)
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}

	reply, next, done, err := f.Advance(user, st, text)
	if err != nil {
		// Persistence failed mid-flow. The session keeps the returned
		// state (unchanged per the Flow contract) so the turn can be
		// retried once the store recovers.
		r.log.Error("flow advance", zap.Int64("user", user.ID),
			zap.String("flow", string(st.Kind())), zap.Error(err))
		r.sessions.Replace(user.ID, next)
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	if done {
		r.sessions.Clear(user.ID)
	} else {
		r.sessions.Replace(user.ID, next)
	}
	return []Reply{textReply(reply)}
}

func (r *Router) setLang(user store.User, code string) []Reply {
	if !r.cfg.KnownLanguage(code) {
		return []Reply{textReply(strings.Join(r.cfg.Languages, " / "))}
	}
	if err := r.profiles.SetUserLang(user.ID, code); err != nil {
		r.log.Error("set lang", zap.Int64("user", user.ID), zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	return []Reply{textReply(r.msgs.Tf(code, "lang_set", strings.ToUpper(code)))}
}

func (r *Router) setCountry(user store.User, code string) []Reply {
	if !r.cfg.KnownCountry(code) {
		return []Reply{textReply(strings.Join(r.cfg.Countries, " / "))}
	}
	if err := r.profiles.SetUserCountry(user.ID, code); err != nil {
		r.log.Error("set country", zap.Int64("user", user.ID), zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	return []Reply{textReply(r.msgs.T(user.Lang, "saved"))}
}

func (r *Router) renderReport(user store.User, days int) []Reply {
	rep, err := r.reports.Aggregate(user.ID, days)
	if err != nil {
		r.log.Error("aggregate report", zap.Int64("user", user.ID), zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	if rep == nil {
		return []Reply{textReply(r.msgs.T(user.Lang, "report_empty"))}
	}
	return []Reply{textReply(r.msgs.Tf(user.Lang, "report_ready",
		rep.WindowDays, rep.AvgStress, rep.SampleCount, rep.AvgSleep, rep.TopTriggersLine()))}
}

// adminStats is restricted to the configured allow-list. Non-admins
// get no reply at all, matching the command being invisible to them.
func (r *Router) adminStats(user store.User) []Reply {
	if !r.cfg.IsAdmin(user.ID) {
		return nil
	}

	users, err := r.profiles.CountUsers()
	if err != nil {
		r.log.Error("count users", zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	now := timeNow().UTC()
	c7, err := r.profiles.CountCheckinsSince(now.AddDate(0, 0, -7))
	if err != nil {
		r.log.Error("count checkins", zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	c30, err := r.profiles.CountCheckinsSince(now.AddDate(0, 0, -30))
	if err != nil {
		r.log.Error("count checkins", zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	return []Reply{textReply(fmt.Sprintf("Users: %d\nCheck-ins 7d: %d\nCheck-ins 30d: %d", users, c7, c30))}
}

func (r *Router) fallback(ctx context.Context, user store.User, text string) []Reply {
	if r.llm == nil {
		return []Reply{textReply(r.msgs.T(user.Lang, "unknown"))}
	}
	out, err := r.llm.Respond(ctx, text)
	if err != nil {
		// Fail closed with the generic apology; internal detail stays
		// in the log.
		r.log.Warn("generative fallback", zap.Int64("user", user.ID), zap.Error(err))
		return []Reply{textReply(r.msgs.T(user.Lang, "apology"))}
	}
	return []Reply{textReply(out)}
}
