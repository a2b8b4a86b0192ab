package session

import (
	"testing"
	"time"

	"spelldaily/internal/model"
	"spelldaily/internal/scorer"
)

func testPuzzle() model.Puzzle {
	return model.Puzzle{
		ID:           "2024-01-15",
		CenterLetter: 'g',
		OuterLetters: []rune{'r', 'a', 'p', 'h', 'i', 'c'},
		ValidWords: map[string]struct{}{
			"graph":   {},
			"graphic": {},
			"cigar":   {},
		},
		Pangrams: map[string]struct{}{
			"graphic": {},
		},
		MaxScore: 24,
	}
}

func typeWord(s *Session, word string) {
	for _, r := range word {
		s.Append(r)
	}
}

func TestBufferEditing(t *testing.T) {
	s := New("alice", testPuzzle())
	if !s.Empty() {
		t.Fatalf("fresh session must have an empty buffer")
	}

	typeWord(s, "GrA1ph")
	if got := s.Buffer(); got != "graph" {
		t.Fatalf("buffer = %q, want %q (lowercased, digits dropped)", got, "graph")
	}

	s.DeleteLast()
	if got := s.Buffer(); got != "grap" {
		t.Fatalf("buffer after delete = %q, want %q", got, "grap")
	}

	s.Clear()
	if !s.Empty() {
		t.Fatalf("buffer must be empty after clear")
	}
	s.DeleteLast() // no-op on empty buffer
}

func TestSubmitAccepted(t *testing.T) {
	s := New("alice", testPuzzle())

	typeWord(s, "graph")
	v := s.Submit()
	if !v.Accepted() {
		t.Fatalf("expected graph accepted, got %v", v.Reason)
	}
	if s.Score() != 5 {
		t.Fatalf("score = %d, want 5", s.Score())
	}
	if !s.Empty() {
		t.Fatalf("buffer must clear after submit")
	}

	typeWord(s, "graphic")
	v = s.Submit()
	if !v.Pangram {
		t.Fatalf("graphic must be a pangram")
	}
	if s.Score() != 19 {
		t.Fatalf("score = %d, want 19", s.Score())
	}
	if words := s.Words(); len(words) != 2 || words[0] != "graph" || words[1] != "graphic" {
		t.Fatalf("words = %v, want found order", words)
	}
	if pangrams := s.Pangrams(); len(pangrams) != 1 || pangrams[0] != "graphic" {
		t.Fatalf("pangrams = %v", pangrams)
	}
}

func TestSubmitRejectedClearsBuffer(t *testing.T) {
	s := New("alice", testPuzzle())

	typeWord(s, "graph")
	if v := s.Submit(); !v.Accepted() {
		t.Fatalf("expected accepted, got %v", v.Reason)
	}

	typeWord(s, "graph")
	v := s.Submit()
	if v.Reason != scorer.ReasonAlreadyFound {
		t.Fatalf("reason = %v, want %v", v.Reason, scorer.ReasonAlreadyFound)
	}
	if !s.Empty() {
		t.Fatalf("buffer must clear after a rejected submit")
	}
	if s.Score() != 5 {
		t.Fatalf("score must not change on rejection, got %d", s.Score())
	}
	if len(s.Words()) != 1 {
		t.Fatalf("duplicate must not be recorded twice")
	}
}

func TestShuffleKeepsState(t *testing.T) {
	s := New("alice", testPuzzle())
	typeWord(s, "graph")
	if v := s.Submit(); !v.Accepted() {
		t.Fatalf("expected accepted, got %v", v.Reason)
	}

	before := map[rune]int{}
	for _, r := range s.OuterLetters() {
		before[r]++
	}
	for i := 0; i < 10; i++ {
		s.Shuffle()
	}
	after := map[rune]int{}
	for _, r := range s.OuterLetters() {
		after[r]++
	}
	if len(before) != len(after) {
		t.Fatalf("shuffle changed the letter set: %v vs %v", before, after)
	}
	for r, n := range before {
		if after[r] != n {
			t.Fatalf("shuffle changed the letter set at %q", string(r))
		}
	}
	if s.Score() != 5 || len(s.Words()) != 1 {
		t.Fatalf("shuffle must not touch score or words")
	}
}

func TestResume(t *testing.T) {
	s := New("alice", testPuzzle())
	s.Resume(&model.GameRecord{
		UserID:     "alice",
		PuzzleID:   "2024-01-15",
		Score:      19,
		WordsFound: []string{"graph", "graphic"},
	})
	if s.Score() != 19 {
		t.Fatalf("score = %d, want 19", s.Score())
	}
	// Pangrams are re-derived from the descriptor.
	if pangrams := s.Pangrams(); len(pangrams) != 1 || pangrams[0] != "graphic" {
		t.Fatalf("pangrams = %v", pangrams)
	}

	typeWord(s, "graph")
	if v := s.Submit(); v.Reason != scorer.ReasonAlreadyFound {
		t.Fatalf("resumed word must count as found, got %v", v.Reason)
	}
}

func TestResumeIgnoresOtherPuzzle(t *testing.T) {
	s := New("alice", testPuzzle())
	s.Resume(&model.GameRecord{PuzzleID: "2024-01-14", Score: 30, WordsFound: []string{"graph"}})
	if s.Score() != 0 || len(s.Words()) != 0 {
		t.Fatalf("record for another puzzle must be ignored")
	}
	s.Resume(nil)
	if s.Score() != 0 {
		t.Fatalf("nil record must be ignored")
	}
}

func TestReset(t *testing.T) {
	s := New("alice", testPuzzle())
	typeWord(s, "graph")
	if v := s.Submit(); !v.Accepted() {
		t.Fatalf("expected accepted, got %v", v.Reason)
	}

	next := testPuzzle()
	next.ID = "2024-01-16"
	s.Reset(next)
	if s.Score() != 0 || len(s.Words()) != 0 || !s.Empty() {
		t.Fatalf("reset must clear attempt state")
	}
	if s.Puzzle().ID != "2024-01-16" {
		t.Fatalf("puzzle id = %q", s.Puzzle().ID)
	}
}

func TestRecordSnapshot(t *testing.T) {
	s := New("alice", testPuzzle())
	typeWord(s, "graphic")
	if v := s.Submit(); !v.Accepted() {
		t.Fatalf("expected accepted, got %v", v.Reason)
	}

	now := time.Date(2024, 1, 15, 20, 30, 0, 0, time.UTC)
	rec := s.Record("2024-01-15", now)
	if rec.UserID != "alice" || rec.PuzzleID != "2024-01-15" {
		t.Fatalf("record keys = %q/%q", rec.UserID, rec.PuzzleID)
	}
	if rec.Score != 14 {
		t.Fatalf("record score = %d, want 14", rec.Score)
	}
	if len(rec.WordsFound) != 1 || len(rec.PangramsFound) != 1 {
		t.Fatalf("record words = %v pangrams = %v", rec.WordsFound, rec.PangramsFound)
	}
	if rec.Rank != model.RankAmazing {
		t.Fatalf("record rank = %q, want %q", rec.Rank, model.RankAmazing)
	}
	if rec.GameDate != "2024-01-15" || !rec.UpdatedAt.Equal(now) {
		t.Fatalf("record date = %q updated = %v", rec.GameDate, rec.UpdatedAt)
	}
}
