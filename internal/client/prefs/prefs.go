// Package prefs persists client preferences and game statistics in badger.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chessai/internal/core"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences stores the last chosen game settings.
type Preferences struct {
	PlayerColor string    `json:"player_color"`
	Difficulty  string    `json:"difficulty"`
	LastPlayed  time.Time `json:"last_played"`
}

func DefaultPreferences() *Preferences {
	def := core.DefaultConfig()
	return &Preferences{
		PlayerColor: def.PlayerColor.String(),
		Difficulty:  string(def.Difficulty),
	}
}

// Config converts stored values, falling back to defaults for anything
// unreadable.
func (p *Preferences) Config() core.Config {
	cfg := core.DefaultConfig()
	if c, err := core.ParseColor(p.PlayerColor); err == nil {
		cfg.PlayerColor = c
	}
	if d, err := core.ParseDifficulty(p.Difficulty); err == nil {
		cfg.Difficulty = d
	}
	return cfg
}

// Stats counts finished games from the player's side.
type Stats struct {
	GamesPlayed int            `json:"games_played"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	Draws       int            `json:"draws"`
	WinsByDiff  map[string]int `json:"wins_by_difficulty"`
}

func NewStats() *Stats {
	return &Stats{WinsByDiff: make(map[string]int)}
}

// WinRate returns the win rate as a percentage (0-100)
func (s *Stats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// Outcome is a finished game seen from the player's side.
type Outcome int

const (
	OutcomeLoss Outcome = iota
	OutcomeWin
	OutcomeDraw
)

// OutcomeFor classifies a server result string for the given player.
func OutcomeFor(result string, player core.Color) Outcome {
	lower := strings.ToLower(result)
	switch {
	case strings.HasPrefix(lower, "white wins"):
		if player == core.ColorWhite {
			return OutcomeWin
		}
		return OutcomeLoss
	case strings.HasPrefix(lower, "black wins"):
		if player == core.ColorBlack {
			return OutcomeWin
		}
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}

// Store wraps BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open prefs store: %w", err)
	}
	return &Store{db: db}, nil
}

// DefaultDir is the store location under the user's config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "chessai", "prefs"), nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes key into v, leaving v untouched when the key is absent.
func (s *Store) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (s *Store) SavePreferences(p *Preferences) error {
	p.LastPlayed = time.Now()
	return s.put(keyPreferences, p)
}

// LoadPreferences returns defaults when nothing has been saved.
func (s *Store) LoadPreferences() (*Preferences, error) {
	p := DefaultPreferences()
	err := s.get(keyPreferences, p)
	return p, err
}

// SaveConfig stores cfg as the current preferences.
func (s *Store) SaveConfig(cfg core.Config) error {
	return s.SavePreferences(&Preferences{
		PlayerColor: cfg.PlayerColor.String(),
		Difficulty:  string(cfg.Difficulty),
	})
}

func (s *Store) LoadStats() (*Stats, error) {
	st := NewStats()
	err := s.get(keyStats, st)
	if st.WinsByDiff == nil {
		st.WinsByDiff = make(map[string]int)
	}
	return st, err
}

// RecordGame adds a finished game to the statistics.
func (s *Store) RecordGame(outcome Outcome, difficulty core.Difficulty) error {
	st, err := s.LoadStats()
	if err != nil {
		return err
	}
	st.GamesPlayed++
	switch outcome {
	case OutcomeWin:
		st.Wins++
		st.WinsByDiff[string(difficulty)]++
	case OutcomeDraw:
		st.Draws++
	default:
		st.Losses++
	}
	return s.put(keyStats, st)
}
