// Package leaderboard stores finished sessions and ranks them by score.
package leaderboard

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxNameLength is the longest accepted player name, in runes.
	MaxNameLength = 24
	// AnonymousName replaces names that are empty after sanitizing.
	AnonymousName = "Anonymous"
	// DefaultLimit is the size of the public top list.
	DefaultLimit = 10
)

// Entry is one saved score.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:24;not null" json:"username"`
	Score     int       `gorm:"not null;index" json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the table name stable across struct renames.
func (Entry) TableName() string { return "scores" }

// NewEntry builds an entry with a fresh ID and a sanitized name.
func NewEntry(name string, score int, at time.Time) Entry {
	if score < 0 {
		score = 0
	}
	return Entry{
		ID:        uuid.New(),
		Username:  SanitizeName(name),
		Score:     score,
		CreatedAt: at,
	}
}

// SanitizeName trims the name, drops control characters and caps the length.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
	}
	if name == "" {
		return AnonymousName
	}
	return name
}

// Store persists entries.
type Store interface {
	Save(ctx context.Context, e Entry) error
	Top(ctx context.Context, n int) ([]Entry, error)
}

// MemoryStore keeps entries in process memory. It backs the terminal
// front-ends when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryStore) Top(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := slices.Clone(m.entries)
	m.mu.RUnlock()

	sortEntries(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// sortEntries orders by score descending; ties go to the earlier entry.
func sortEntries(es []Entry) {
	slices.SortStableFunc(es, func(a, b Entry) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
