package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grechaniuk/svitlo-bot/internal/store"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "svitlo.db"))
	require.NoError(t, err, "create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_CreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "svitlo.db")
	s, err := store.New(path)
	require.NoError(t, err)
	defer s.Close()
}

func TestGetOrCreateUser_FirstContact(t *testing.T) {
	s := newTestStore(t)

	u, err := s.GetOrCreateUser(42, "en", "US")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "en", u.Lang)
	assert.Equal(t, "US", u.Country)
	assert.NotEmpty(t, u.CreatedAt)
}

func TestGetOrCreateUser_SecondContactKeepsProfile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetOrCreateUser(42, "en", "US")
	require.NoError(t, err)
	require.NoError(t, s.SetUserLang(42, "uk"))
	require.NoError(t, s.SetUserCountry(42, "UA"))

	// Different defaults must not overwrite the stored profile.
	u, err := s.GetOrCreateUser(42, "en", "US")
	require.NoError(t, err)
	assert.Equal(t, "uk", u.Lang)
	assert.Equal(t, "UA", u.Country)

	n, err := s.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveCheckin_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveCheckin(42, 7.5, "work deadline", 6.5, "short walk"))

	entries, err := s.CheckinsSince(42, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	c := entries[0]
	require.NotNil(t, c.Stress)
	require.NotNil(t, c.SleepHours)
	assert.Equal(t, 7.5, *c.Stress)
	assert.Equal(t, 6.5, *c.SleepHours)
	assert.Equal(t, "work deadline", c.Triggers)
	assert.Equal(t, "short walk", c.MicroGoal)
}

func TestCheckinsSince_WindowFiltersOldEntries(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	restore := store.SetTimeNow(func() time.Time { return base.AddDate(0, 0, -10) })
	require.NoError(t, s.SaveCheckin(42, 2, "old", 8, "g"))
	restore()

	restore = store.SetTimeNow(func() time.Time { return base.AddDate(0, 0, -2) })
	require.NoError(t, s.SaveCheckin(42, 4, "recent", 7, "g"))
	restore()

	entries, err := s.CheckinsSince(42, base.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].Triggers)
}

func TestCheckinsSince_ScopedToUser(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveCheckin(1, 3, "mine", 7, "g"))
	require.NoError(t, s.SaveCheckin(2, 9, "theirs", 4, "g"))

	entries, err := s.CheckinsSince(1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mine", entries[0].Triggers)
}

func TestCheckinsSince_NullableFields(t *testing.T) {
	s := newTestStore(t)

	// A row written outside SaveCheckin may carry NULLs; readers must
	// surface them as absent, not as zero values.
	_, err := s.DB().Exec(
		"INSERT INTO checkins (user_id, ts, stress, triggers, sleep_hours, micro_goal) VALUES (?, ?, ?, ?, ?, ?)",
		int64(42), time.Now().UTC().Format(time.RFC3339), 5.0, "t", nil, "g",
	)
	require.NoError(t, err)

	entries, err := s.CheckinsSince(42, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotNil(t, entries[0].Stress)
	assert.Nil(t, entries[0].SleepHours)
}

func TestSaveTrigger_AppendOnlyOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveTrigger(42, "loud noise"))
	require.NoError(t, s.SaveTrigger(42, "crowds"))

	notes, err := s.TriggerNotes(42)
	require.NoError(t, err)
	assert.Equal(t, []string{"loud noise", "crowds"}, notes)
}

func TestSavePlanItem_OriginalOrder(t *testing.T) {
	s := newTestStore(t)

	for _, item := range []string{"first", "second", "third"} {
		require.NoError(t, s.SavePlanItem(42, item))
	}

	items, err := s.PlanItems(42)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, items)
}

func TestCountCheckinsSince_AcrossUsers(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	restore := store.SetTimeNow(func() time.Time { return base.AddDate(0, 0, -20) })
	require.NoError(t, s.SaveCheckin(1, 5, "t", 7, "g"))
	restore()

	restore = store.SetTimeNow(func() time.Time { return base.AddDate(0, 0, -3) })
	require.NoError(t, s.SaveCheckin(1, 5, "t", 7, "g"))
	require.NoError(t, s.SaveCheckin(2, 5, "t", 7, "g"))
	restore()

	n7, err := s.CountCheckinsSince(base.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 2, n7)

	n30, err := s.CountCheckinsSince(base.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 3, n30)
}
