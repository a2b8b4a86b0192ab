// Package puzzle loads puzzle descriptors and implements the provider boundary.
package puzzle

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"spelldaily/internal/model"
	"spelldaily/internal/scorer"
)

const outerLetterCount = 6

// File is the TOML form of a puzzle descriptor. Pangrams and max-score may
// be omitted and are then derived from the word list.
type File struct {
	ID           string   `toml:"id"`
	CenterLetter string   `toml:"center-letter"`
	OuterLetters []string `toml:"outer-letters"`
	Words        []string `toml:"words"`
	Pangrams     []string `toml:"pangrams"`
	MaxScore     int      `toml:"max-score"`
}

// Load reads and validates a puzzle descriptor from a TOML file. The file
// name (without extension) is the fallback id.
func Load(path, fallbackID string) (model.Puzzle, error) {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return model.Puzzle{}, fmt.Errorf("failed to decode puzzle: %w", err)
	}
	if file.ID == "" {
		file.ID = fallbackID
	}
	return fromFile(file)
}

func fromFile(file File) (model.Puzzle, error) {
	if file.ID == "" {
		return model.Puzzle{}, fmt.Errorf("puzzle id is empty")
	}

	center, err := singleLetter(file.CenterLetter)
	if err != nil {
		return model.Puzzle{}, fmt.Errorf("invalid center-letter: %w", err)
	}

	if len(file.OuterLetters) != outerLetterCount {
		return model.Puzzle{}, fmt.Errorf("expected %d outer letters, got %d", outerLetterCount, len(file.OuterLetters))
	}
	outer := make([]rune, 0, outerLetterCount)
	seen := map[rune]struct{}{center: {}}
	for _, s := range file.OuterLetters {
		r, err := singleLetter(s)
		if err != nil {
			return model.Puzzle{}, fmt.Errorf("invalid outer letter %q: %w", s, err)
		}
		if _, ok := seen[r]; ok {
			return model.Puzzle{}, fmt.Errorf("duplicate letter %q", string(r))
		}
		seen[r] = struct{}{}
		outer = append(outer, r)
	}

	if len(file.Words) == 0 {
		return model.Puzzle{}, fmt.Errorf("word list is empty")
	}
	words := make(map[string]struct{}, len(file.Words))
	for _, raw := range file.Words {
		word := strings.ToLower(strings.TrimSpace(raw))
		if len([]rune(word)) < scorer.MinWordLen {
			return model.Puzzle{}, fmt.Errorf("word %q is shorter than %d letters", word, scorer.MinWordLen)
		}
		if !strings.ContainsRune(word, center) {
			return model.Puzzle{}, fmt.Errorf("word %q does not contain the center letter", word)
		}
		for _, r := range word {
			if _, ok := seen[r]; !ok {
				return model.Puzzle{}, fmt.Errorf("word %q uses letter %q outside the puzzle", word, string(r))
			}
		}
		words[word] = struct{}{}
	}

	pangrams, err := resolvePangrams(file.Pangrams, words, seen)
	if err != nil {
		return model.Puzzle{}, err
	}

	maxScore := file.MaxScore
	if maxScore <= 0 {
		maxScore = totalScore(words, pangrams)
	}

	return model.Puzzle{
		ID:           file.ID,
		CenterLetter: center,
		OuterLetters: outer,
		ValidWords:   words,
		Pangrams:     pangrams,
		MaxScore:     maxScore,
	}, nil
}

func resolvePangrams(listed []string, words map[string]struct{}, letters map[rune]struct{}) (map[string]struct{}, error) {
	if len(listed) > 0 {
		pangrams := make(map[string]struct{}, len(listed))
		for _, raw := range listed {
			word := strings.ToLower(strings.TrimSpace(raw))
			if _, ok := words[word]; !ok {
				return nil, fmt.Errorf("pangram %q is not in the word list", word)
			}
			pangrams[word] = struct{}{}
		}
		return pangrams, nil
	}
	pangrams := map[string]struct{}{}
	for word := range words {
		if usesAllLetters(word, letters) {
			pangrams[word] = struct{}{}
		}
	}
	return pangrams, nil
}

func usesAllLetters(word string, letters map[rune]struct{}) bool {
	used := map[rune]struct{}{}
	for _, r := range word {
		used[r] = struct{}{}
	}
	return len(used) == len(letters)
}

func totalScore(words, pangrams map[string]struct{}) int {
	total := 0
	for word := range words {
		_, pangram := pangrams[word]
		total += scorer.Points(word, pangram)
	}
	return total
}

func singleLetter(s string) (rune, error) {
	runes := []rune(strings.ToLower(strings.TrimSpace(s)))
	if len(runes) != 1 {
		return 0, fmt.Errorf("expected a single letter, got %q", s)
	}
	if !unicode.IsLetter(runes[0]) {
		return 0, fmt.Errorf("%q is not a letter", s)
	}
	return runes[0], nil
}
