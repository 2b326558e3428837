package report

import (
	"errors"
	"testing"
	"time"

	"github.com/grechaniuk/svitlo-bot/internal/store"
)

func init() {
	// Freeze time for deterministic windows.
	timeNow = func() time.Time {
		return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	}
}

type fakeSource struct {
	entries []store.Checkin
	err     error
	since   time.Time
}

func (f *fakeSource) CheckinsSince(userID int64, since time.Time) ([]store.Checkin, error) {
	f.since = since
	return f.entries, f.err
}

func ptr(v float64) *float64 { return &v }

func entry(stress, sleep *float64, triggers string) store.Checkin {
	return store.Checkin{UserID: 42, Stress: stress, SleepHours: sleep, Triggers: triggers}
}

func TestAggregate_NoData(t *testing.T) {
	e := NewEngine(&fakeSource{})
	r, err := e.Aggregate(42, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r != nil {
		t.Errorf("Aggregate with no entries = %+v, want nil (no-data signal)", r)
	}
}

func TestAggregate_InvalidWindow(t *testing.T) {
	e := NewEngine(&fakeSource{})
	for _, days := range []int{0, 1, 14, 365} {
		if _, err := e.Aggregate(42, days); err == nil {
			t.Errorf("Aggregate(%d days) succeeded, want error", days)
		}
	}
}

func TestAggregate_WindowStart(t *testing.T) {
	src := &fakeSource{}
	e := NewEngine(src)
	if _, err := e.Aggregate(42, 30); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := time.Date(2026, 7, 21, 12, 0, 0, 0, time.UTC)
	if !src.since.Equal(want) {
		t.Errorf("since = %v, want %v", src.since, want)
	}
}

func TestAggregate_Averages(t *testing.T) {
	src := &fakeSource{entries: []store.Checkin{
		entry(ptr(2), ptr(8), ""),
		entry(ptr(4), ptr(6), ""),
		entry(ptr(6), ptr(7), ""),
	}}
	r, err := NewEngine(src).Aggregate(42, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r.AvgStress != 4.0 {
		t.Errorf("AvgStress = %v, want 4.0", r.AvgStress)
	}
	if r.AvgSleep != 7.0 {
		t.Errorf("AvgSleep = %v, want 7.0", r.AvgSleep)
	}
	if r.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", r.SampleCount)
	}
}

func TestAggregate_MissingFieldsExcludedIndependently(t *testing.T) {
	src := &fakeSource{entries: []store.Checkin{
		entry(ptr(2), ptr(8), ""),
		entry(ptr(4), nil, ""), // no sleep: still counts toward stress
		entry(ptr(6), ptr(6), ""),
	}}
	r, err := NewEngine(src).Aggregate(42, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r.AvgStress != 4.0 {
		t.Errorf("AvgStress = %v, want 4.0", r.AvgStress)
	}
	if r.AvgSleep != 7.0 {
		t.Errorf("AvgSleep = %v, want 7.0 (mean over the two present values)", r.AvgSleep)
	}
	if r.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", r.SampleCount)
	}
}

func TestAggregate_TopTriggerRanking(t *testing.T) {
	src := &fakeSource{entries: []store.Checkin{
		entry(ptr(5), ptr(7), "work deadline deadline"),
		entry(ptr(5), ptr(7), "family deadline"),
	}}
	r, err := NewEngine(src).Aggregate(42, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := []string{"deadline", "work", "family"}
	if len(r.TopTriggers) != len(want) {
		t.Fatalf("TopTriggers = %v, want %v", r.TopTriggers, want)
	}
	for i := range want {
		if r.TopTriggers[i] != want[i] {
			t.Errorf("TopTriggers[%d] = %q, want %q", i, r.TopTriggers[i], want[i])
		}
	}
}

func TestAggregate_SourceFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("db locked")}
	if _, err := NewEngine(src).Aggregate(42, 7); err == nil {
		t.Error("Aggregate succeeded despite source failure")
	}
}

func TestTopTerms_CaseAndLength(t *testing.T) {
	got := topTerms([]string{"Work WORK at no ok", "work"}, 5)
	if len(got) != 1 || got[0] != "work" {
		t.Errorf("topTerms = %v, want [work] (lowercased, short words dropped)", got)
	}
}

func TestTopTerms_Cyrillic(t *testing.T) {
	got := topTerms([]string{"робота дедлайн", "дедлайн"}, 5)
	if len(got) != 2 || got[0] != "дедлайн" || got[1] != "робота" {
		t.Errorf("topTerms = %v, want [дедлайн робота]", got)
	}
}

func TestTopTerms_CapsAtFive(t *testing.T) {
	got := topTerms([]string{"one two three four five six seven"}, 5)
	if len(got) != 5 {
		t.Errorf("len(topTerms) = %d, want 5", len(got))
	}
}

func TestTopTerms_TieBreaksByFirstEncounter(t *testing.T) {
	got := topTerms([]string{"alpha beta gamma"}, 5)
	want := []string{"alpha", "beta", "gamma"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topTerms[%d] = %q, want %q (first-encountered order)", i, got[i], want[i])
		}
	}
}

func TestTopTriggersLine_Placeholder(t *testing.T) {
	r := &Report{}
	if got := r.TopTriggersLine(); got != "—" {
		t.Errorf("TopTriggersLine() = %q, want placeholder", got)
	}
	r.TopTriggers = []string{"work", "noise"}
	if got := r.TopTriggersLine(); got != "work, noise" {
		t.Errorf("TopTriggersLine() = %q", got)
	}
}
