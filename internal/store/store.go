// Package store implements the persistent store for user profiles and
// logged wellness entries.
//
// It uses SQLite (modernc.org/sqlite, pure Go) with WAL mode. Four
// user-scoped, append-mostly tables: users (upsert on first contact),
// checkins, triggers and plans (insert-only). All timestamps are UTC
// RFC 3339 strings, which sort correctly as text.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level var for deterministic timestamps in tests.
var timeNow = time.Now

// User is one row of the users table.
type User struct {
	ID        int64  `json:"user_id"`
	Lang      string `json:"lang"`
	Country   string `json:"country"`
	CreatedAt string `json:"created_at"`
}

// Checkin is one completed daily check-in. Stress and SleepHours are
// nullable in the schema; a missing value is excluded from the
// respective average but the row still counts toward the sample.
type Checkin struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"user_id"`
	TS         string   `json:"ts"`
	Stress     *float64 `json:"stress,omitempty"`
	Triggers   string   `json:"triggers"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	MicroGoal  string   `json:"micro_goal"`
}

// Store is the SQLite-backed persistent store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path, applies pragmas, and
// runs migrations. The parent directory is created if needed.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id    INTEGER PRIMARY KEY,
			lang       TEXT NOT NULL,
			country    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS checkins (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL,
			ts          TEXT NOT NULL,
			stress      REAL,
			triggers    TEXT NOT NULL DEFAULT '',
			sleep_hours REAL,
			micro_goal  TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_checkins_user_ts ON checkins(user_id, ts);

		CREATE TABLE IF NOT EXISTS triggers (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			ts      TEXT NOT NULL,
			note    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS plans (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			ts      TEXT NOT NULL,
			item    TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

func nowUTC() string {
	return timeNow().UTC().Format(time.RFC3339)
}

// ─── Users ───────────────────────────────────────────────────────────────────

// GetOrCreateUser returns the profile for userID, creating it with the
// given defaults on first contact.
func (s *Store) GetOrCreateUser(userID int64, defaultLang, defaultCountry string) (User, error) {
	var u User
	err := s.db.QueryRow(
		"SELECT user_id, lang, country, created_at FROM users WHERE user_id = ?", userID,
	).Scan(&u.ID, &u.Lang, &u.Country, &u.CreatedAt)
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return User{}, fmt.Errorf("store: load user %d: %w", userID, err)
	}

	u = User{ID: userID, Lang: defaultLang, Country: defaultCountry, CreatedAt: nowUTC()}
	_, err = s.db.Exec(
		"INSERT INTO users (user_id, lang, country, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Lang, u.Country, u.CreatedAt,
	)
	if err != nil {
		return User{}, fmt.Errorf("store: create user %d: %w", userID, err)
	}
	return u, nil
}

// SetUserLang updates the user's language.
func (s *Store) SetUserLang(userID int64, lang string) error {
	if _, err := s.db.Exec("UPDATE users SET lang = ? WHERE user_id = ?", lang, userID); err != nil {
		return fmt.Errorf("store: set lang for %d: %w", userID, err)
	}
	return nil
}

// SetUserCountry updates the user's country.
func (s *Store) SetUserCountry(userID int64, country string) error {
	if _, err := s.db.Exec("UPDATE users SET country = ? WHERE user_id = ?", country, userID); err != nil {
		return fmt.Errorf("store: set country for %d: %w", userID, err)
	}
	return nil
}

// ─── Check-ins ───────────────────────────────────────────────────────────────

// SaveCheckin persists one completed check-in. All four answers go in
// a single INSERT so an interrupted process can never leave a partial
// record behind.
func (s *Store) SaveCheckin(userID int64, stress float64, triggers string, sleepHours float64, microGoal string) error {
	_, err := s.db.Exec(
		"INSERT INTO checkins (user_id, ts, stress, triggers, sleep_hours, micro_goal) VALUES (?, ?, ?, ?, ?, ?)",
		userID, nowUTC(), stress, triggers, sleepHours, microGoal,
	)
	if err != nil {
		return fmt.Errorf("store: save checkin for %d: %w", userID, err)
	}
	return nil
}

// CheckinsSince returns all check-ins for the user with ts >= since,
// oldest first.
func (s *Store) CheckinsSince(userID int64, since time.Time) ([]Checkin, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, ts, stress, triggers, sleep_hours, micro_goal FROM checkins WHERE user_id = ? AND ts >= ? ORDER BY ts",
		userID, since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("store: query checkins for %d: %w", userID, err)
	}
	defer rows.Close()

	var result []Checkin
	for rows.Next() {
		var c Checkin
		var stress, sleep sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.UserID, &c.TS, &stress, &c.Triggers, &sleep, &c.MicroGoal); err != nil {
			return nil, fmt.Errorf("store: scan checkin: %w", err)
		}
		if stress.Valid {
			v := stress.Float64
			c.Stress = &v
		}
		if sleep.Valid {
			v := sleep.Float64
			c.SleepHours = &v
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate checkins: %w", err)
	}
	return result, nil
}

// ─── Trigger log ─────────────────────────────────────────────────────────────

// SaveTrigger appends one trigger log entry.
func (s *Store) SaveTrigger(userID int64, note string) error {
	_, err := s.db.Exec(
		"INSERT INTO triggers (user_id, ts, note) VALUES (?, ?, ?)",
		userID, nowUTC(), note,
	)
	if err != nil {
		return fmt.Errorf("store: save trigger for %d: %w", userID, err)
	}
	return nil
}

// TriggerNotes returns the user's trigger log notes, oldest first.
func (s *Store) TriggerNotes(userID int64) ([]string, error) {
	rows, err := s.db.Query("SELECT note FROM triggers WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("store: query triggers for %d: %w", userID, err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return nil, fmt.Errorf("store: scan trigger note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// ─── Plans ───────────────────────────────────────────────────────────────────

// SavePlanItem appends one plan item.
func (s *Store) SavePlanItem(userID int64, item string) error {
	_, err := s.db.Exec(
		"INSERT INTO plans (user_id, ts, item) VALUES (?, ?, ?)",
		userID, nowUTC(), item,
	)
	if err != nil {
		return fmt.Errorf("store: save plan item for %d: %w", userID, err)
	}
	return nil
}

// PlanItems returns the user's plan items, oldest first.
func (s *Store) PlanItems(userID int64) ([]string, error) {
	rows, err := s.db.Query("SELECT item FROM plans WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("store: query plans for %d: %w", userID, err)
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("store: scan plan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ─── Admin counts ────────────────────────────────────────────────────────────

// CountUsers returns the total number of registered users.
func (s *Store) CountUsers() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}

// CountCheckinsSince returns the number of check-ins across all users
// with ts >= since.
func (s *Store) CountCheckinsSince(since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM checkins WHERE ts >= ?",
		since.UTC().Format(time.RFC3339),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count checkins: %w", err)
	}
	return n, nil
}
