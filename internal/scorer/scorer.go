// Package scorer validates and scores submitted words.
package scorer

import (
	"strings"

	"spelldaily/internal/model"
)

// MinWordLen is the shortest accepted word length.
const MinWordLen = 4

const pangramBonus = 7

// RejectReason explains why a submitted word was not accepted.
type RejectReason int

// Rejection reasons, in the order they are checked.
const (
	ReasonNone RejectReason = iota
	ReasonTooShort
	ReasonMissingCenterLetter
	ReasonAlreadyFound
	ReasonNotInWordList
)

// String returns a short description of the reason.
func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "accepted"
	case ReasonTooShort:
		return "too short"
	case ReasonMissingCenterLetter:
		return "missing center letter"
	case ReasonAlreadyFound:
		return "already found"
	case ReasonNotInWordList:
		return "not in word list"
	default:
		return "unknown"
	}
}

// Verdict is the result of checking a submitted word against a puzzle.
type Verdict struct {
	Word    string
	Score   int
	Pangram bool
	Reason  RejectReason
}

// Accepted reports whether the word was valid for the puzzle.
func (v Verdict) Accepted() bool {
	return v.Reason == ReasonNone
}

// Check validates a candidate word against the puzzle and the set of words
// already found in this session. Input is case-insensitive. Checks run in
// a fixed order: length, center letter, duplicates, word-list membership.
// The word list is trusted as the sole source of validity.
func Check(raw string, puzzle model.Puzzle, found map[string]struct{}) Verdict {
	word := strings.ToLower(strings.TrimSpace(raw))
	verdict := Verdict{Word: word}

	if len([]rune(word)) < MinWordLen {
		verdict.Reason = ReasonTooShort
		return verdict
	}
	if !strings.ContainsRune(word, puzzle.CenterLetter) {
		verdict.Reason = ReasonMissingCenterLetter
		return verdict
	}
	if _, ok := found[word]; ok {
		verdict.Reason = ReasonAlreadyFound
		return verdict
	}
	if !puzzle.IsValidWord(word) {
		verdict.Reason = ReasonNotInWordList
		return verdict
	}

	verdict.Pangram = puzzle.IsPangram(word)
	verdict.Score = Points(word, verdict.Pangram)
	return verdict
}

// Points returns the score for a valid word: four-letter words are worth
// one point, pangrams their length plus seven, everything else its length.
func Points(word string, pangram bool) int {
	length := len([]rune(word))
	if length == MinWordLen {
		return 1
	}
	if pangram {
		return length + pangramBonus
	}
	return length
}
