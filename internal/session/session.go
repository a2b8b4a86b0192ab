// Package session holds the in-memory state of one active puzzle attempt.
package session

import (
	"math/rand"
	"time"
	"unicode"

	"spelldaily/internal/model"
	"spelldaily/internal/scorer"
)

// Session is the state machine for one active puzzle attempt. It owns the
// typed buffer, the found-word set, and the running score. A session has a
// single writer: the UI goroutine serializes input, submit, and shuffle.
type Session struct {
	userID string
	puzzle model.Puzzle

	buffer []rune
	outer  []rune

	words    []string
	found    map[string]struct{}
	pangrams []string
	score    int

	rnd *rand.Rand
}

// New constructs a fresh session for the given puzzle.
func New(userID string, puzzle model.Puzzle) *Session {
	s := &Session{
		userID: userID,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.Reset(puzzle)
	return s
}

// Reset starts a new attempt with a new puzzle descriptor. It does not
// touch any previously persisted record.
func (s *Session) Reset(puzzle model.Puzzle) {
	s.puzzle = puzzle
	s.buffer = nil
	s.outer = append([]rune(nil), puzzle.OuterLetters...)
	s.words = nil
	s.found = map[string]struct{}{}
	s.pangrams = nil
	s.score = 0
}

// Resume seeds the session from a previously saved record for the same
// puzzle. Pangrams are re-derived from the descriptor.
func (s *Session) Resume(rec *model.GameRecord) {
	if rec == nil || rec.PuzzleID != s.puzzle.ID {
		return
	}
	for _, word := range rec.WordsFound {
		if _, ok := s.found[word]; ok {
			continue
		}
		s.found[word] = struct{}{}
		s.words = append(s.words, word)
		if s.puzzle.IsPangram(word) {
			s.pangrams = append(s.pangrams, word)
		}
	}
	s.score = rec.Score
}

// Append adds a letter to the typed buffer. Non-letter runes are ignored.
func (s *Session) Append(r rune) {
	if !unicode.IsLetter(r) {
		return
	}
	s.buffer = append(s.buffer, unicode.ToLower(r))
}

// DeleteLast removes the last typed letter, if any.
func (s *Session) DeleteLast() {
	if len(s.buffer) == 0 {
		return
	}
	s.buffer = s.buffer[:len(s.buffer)-1]
}

// Clear empties the typed buffer.
func (s *Session) Clear() {
	s.buffer = nil
}

// Buffer returns the currently typed word.
func (s *Session) Buffer() string {
	return string(s.buffer)
}

// Empty reports whether nothing is typed.
func (s *Session) Empty() bool {
	return len(s.buffer) == 0
}

// Submit checks the typed buffer against the puzzle. The buffer is cleared
// regardless of the verdict so a rejected word never lingers. On an
// accepted word the found set and score are updated.
func (s *Session) Submit() scorer.Verdict {
	word := string(s.buffer)
	s.buffer = nil

	verdict := scorer.Check(word, s.puzzle, s.found)
	if !verdict.Accepted() {
		return verdict
	}
	s.found[verdict.Word] = struct{}{}
	s.words = append(s.words, verdict.Word)
	if verdict.Pangram {
		s.pangrams = append(s.pangrams, verdict.Word)
	}
	s.score += verdict.Score
	return verdict
}

// Shuffle permutes the presentation order of the outer letters. It never
// changes the word list, the found words, or the score.
func (s *Session) Shuffle() {
	s.rnd.Shuffle(len(s.outer), func(i, j int) {
		s.outer[i], s.outer[j] = s.outer[j], s.outer[i]
	})
}

// OuterLetters returns the outer letters in presentation order.
func (s *Session) OuterLetters() []rune {
	return append([]rune(nil), s.outer...)
}

// Puzzle returns the active puzzle descriptor.
func (s *Session) Puzzle() model.Puzzle {
	return s.puzzle
}

// Score returns the running score.
func (s *Session) Score() int {
	return s.score
}

// Words returns the found words in the order they were found.
func (s *Session) Words() []string {
	return append([]string(nil), s.words...)
}

// Pangrams returns the found pangrams in the order they were found.
func (s *Session) Pangrams() []string {
	return append([]string(nil), s.pangrams...)
}

// Rank returns the rank tier for the current score.
func (s *Session) Rank() model.Rank {
	return model.RankForScore(s.score, s.puzzle.MaxScore)
}

// Record snapshots the attempt as a game record dated gameDate.
func (s *Session) Record(gameDate string, now time.Time) model.GameRecord {
	return model.GameRecord{
		UserID:        s.userID,
		PuzzleID:      s.puzzle.ID,
		Score:         s.score,
		WordsFound:    s.Words(),
		PangramsFound: s.Pangrams(),
		Rank:          s.Rank(),
		GameDate:      gameDate,
		UpdatedAt:     now,
	}
}
