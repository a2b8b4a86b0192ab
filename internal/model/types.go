// Package model defines shared data structures.
package model

import "time"

// DateLayout is the calendar-day format used for game dates and daily puzzle ids.
const DateLayout = "2006-01-02"

// Puzzle describes one day's fixed letter set and valid-word dictionary.
// It is supplied by a puzzle provider and immutable for the lifetime of
// a session.
type Puzzle struct {
	ID           string
	CenterLetter rune
	OuterLetters []rune
	ValidWords   map[string]struct{}
	Pangrams     map[string]struct{}
	MaxScore     int
}

// IsValidWord reports whether the word is a member of the puzzle's word list.
func (p Puzzle) IsValidWord(word string) bool {
	_, ok := p.ValidWords[word]
	return ok
}

// IsPangram reports whether the word uses all seven letters of the puzzle.
func (p Puzzle) IsPangram(word string) bool {
	_, ok := p.Pangrams[word]
	return ok
}

// Letters returns the center letter followed by the outer letters.
func (p Puzzle) Letters() []rune {
	out := make([]rune, 0, len(p.OuterLetters)+1)
	out = append(out, p.CenterLetter)
	out = append(out, p.OuterLetters...)
	return out
}

// GameRecord is the durable, upsertable result of one user's attempt at
// one puzzle. Exactly one record exists per (UserID, PuzzleID) pair.
type GameRecord struct {
	UserID        string
	PuzzleID      string
	Score         int
	WordsFound    []string
	PangramsFound []string
	Rank          Rank
	GameDate      string
	UpdatedAt     time.Time
}

// UserStats is the derived aggregate over a user's game records. It is a
// materialized view, never a source of truth.
type UserStats struct {
	UserID         string
	GamesPlayed    int
	CurrentStreak  int
	BestStreak     int
	BestRank       Rank
	LastPlayedDate string
}

// LeaderboardEntry is one row of the global leaderboard read.
type LeaderboardEntry struct {
	DisplayName   string
	GamesPlayed   int
	CurrentStreak int
	BestStreak    int
}
