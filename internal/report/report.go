// Package report computes rolling aggregate statistics over a user's
// check-in history.
package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// timeNow is a package-level var for deterministic windows in tests.
var timeNow = time.Now

// topTermCount is how many trigger terms a report carries.
const topTermCount = 5

// noTermsPlaceholder is rendered when the window has entries but no
// rankable trigger words.
const noTermsPlaceholder = "—"

// wordPattern extracts alphabetic words of length >= 3, Latin and
// Cyrillic (including the Ukrainian letters missing from А-я).
var wordPattern = regexp.MustCompile(`[A-Za-zА-Яа-яЇїІіЄєҐґ']{3,}`)

// Source is the read-only slice of the persistent store the engine
// needs.
type Source interface {
	CheckinsSince(userID int64, since time.Time) ([]store.Checkin, error)
}

// Report is the derived aggregate over a trailing window. It is never
// persisted.
type Report struct {
	WindowDays  int
	AvgStress   float64
	AvgSleep    float64
	SampleCount int
	TopTriggers []string
}

// TopTriggersLine renders the ranked terms for display, or the
// placeholder when no distinct words were found.
func (r *Report) TopTriggersLine() string {
	if len(r.TopTriggers) == 0 {
		return noTermsPlaceholder
	}
	return strings.Join(r.TopTriggers, ", ")
}

// Engine computes reports from a check-in source.
type Engine struct {
	src Source
}

// NewEngine creates the aggregation engine.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Aggregate computes the report for the trailing window. windowDays
// must be 7 or 30. A nil report with a nil error means no data in the
// window — the caller renders a "no data" message, not an error.
//
// Averages are independent: an entry missing sleep hours still
// contributes its stress value, and vice versa.
func (e *Engine) Aggregate(userID int64, windowDays int) (*Report, error) {
	if windowDays != 7 && windowDays != 30 {
		return nil, fmt.Errorf("report: unsupported window %d days", windowDays)
	}

	since := timeNow().UTC().AddDate(0, 0, -windowDays)
	entries, err := e.src.CheckinsSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("report: load checkins: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var (
		stressSum, sleepSum float64
		stressN, sleepN     int
		texts               []string
	)
	for _, c := range entries {
		if c.Stress != nil {
			stressSum += *c.Stress
			stressN++
		}
		if c.SleepHours != nil {
			sleepSum += *c.SleepHours
			sleepN++
		}
		texts = append(texts, c.Triggers)
	}

	r := &Report{
		WindowDays:  windowDays,
		SampleCount: len(entries),
		TopTriggers: topTerms(texts, topTermCount),
	}
	if stressN > 0 {
		r.AvgStress = stressSum / float64(stressN)
	}
	if sleepN > 0 {
		r.AvgSleep = sleepSum / float64(sleepN)
	}
	return r, nil
}

// topTerms tokenizes the concatenated trigger texts, lowercases, and
// returns the n most frequent terms. Ties rank by first encounter.
func topTerms(texts []string, n int) []string {
	type term struct {
		word  string
		count int
		first int
	}

	counts := make(map[string]*term)
	var order []*term
	pos := 0
	for _, text := range texts {
		for _, w := range wordPattern.FindAllString(text, -1) {
			w = strings.ToLower(w)
			if t, ok := counts[w]; ok {
				t.count++
			} else {
				t := &term{word: w, count: 1, first: pos}
				counts[w] = t
				order = append(order, t)
			}
			pos++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	if len(order) > n {
		order = order[:n]
	}
	result := make([]string, len(order))
	for i, t := range order {
		result[i] = t.word
	}
	return result
}
