package stats

import (
	"testing"
	"time"

	"spelldaily/internal/model"
)

func day(s string) time.Time {
	parsed, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func rec(user, puzzle, date string, score int, rank model.Rank) model.GameRecord {
	return model.GameRecord{
		UserID:   user,
		PuzzleID: puzzle,
		Score:    score,
		Rank:     rank,
		GameDate: date,
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, day("2024-01-15"))
	if stats.GamesPlayed != 0 || stats.CurrentStreak != 0 || stats.BestStreak != 0 {
		t.Fatalf("empty history must yield zero stats, got %+v", stats)
	}
	if stats.BestRank != model.RankBeginner {
		t.Fatalf("best rank = %q, want Beginner", stats.BestRank)
	}
	if stats.LastPlayedDate != "" {
		t.Fatalf("last played = %q, want empty", stats.LastPlayedDate)
	}
}

func TestAggregateConsecutiveDays(t *testing.T) {
	records := []model.GameRecord{
		rec("alice", "2024-01-13", "2024-01-13", 5, model.RankGood),
		rec("alice", "2024-01-14", "2024-01-14", 9, model.RankSolid),
		rec("alice", "2024-01-15", "2024-01-15", 14, model.RankGenius),
	}
	stats := Aggregate(records, day("2024-01-15"))
	if stats.GamesPlayed != 3 {
		t.Fatalf("games played = %d, want 3", stats.GamesPlayed)
	}
	if stats.BestStreak != 3 || stats.CurrentStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", stats.CurrentStreak, stats.BestStreak)
	}
	if stats.BestRank != model.RankGenius {
		t.Fatalf("best rank = %q", stats.BestRank)
	}
	if stats.LastPlayedDate != "2024-01-15" {
		t.Fatalf("last played = %q", stats.LastPlayedDate)
	}
	if stats.UserID != "alice" {
		t.Fatalf("user = %q", stats.UserID)
	}
}

func TestAggregateGapResetsStreak(t *testing.T) {
	records := []model.GameRecord{
		rec("alice", "2024-01-01", "2024-01-01", 5, model.RankGood),
		rec("alice", "2024-01-02", "2024-01-02", 5, model.RankGood),
		rec("alice", "2024-01-04", "2024-01-04", 5, model.RankGood),
	}
	stats := Aggregate(records, day("2024-01-04"))
	if stats.BestStreak != 2 {
		t.Fatalf("best streak = %d, want 2", stats.BestStreak)
	}
	if stats.CurrentStreak != 1 {
		t.Fatalf("current streak = %d, want 1 (run restarted after the gap)", stats.CurrentStreak)
	}
}

func TestAggregateSameDayCollapses(t *testing.T) {
	// Two puzzles on the same day count as one streak day but two games.
	records := []model.GameRecord{
		rec("alice", "2024-01-14", "2024-01-14", 5, model.RankGood),
		rec("alice", "2024-01-15", "2024-01-15", 5, model.RankGood),
		rec("alice", "2024-01-15-forced", "2024-01-15", 9, model.RankSolid),
	}
	stats := Aggregate(records, day("2024-01-15"))
	if stats.GamesPlayed != 3 {
		t.Fatalf("games played = %d, want 3", stats.GamesPlayed)
	}
	if stats.BestStreak != 2 || stats.CurrentStreak != 2 {
		t.Fatalf("streaks = %d/%d, want 2/2", stats.CurrentStreak, stats.BestStreak)
	}
}

func TestAggregateStreakLiveness(t *testing.T) {
	records := []model.GameRecord{
		rec("alice", "2024-01-13", "2024-01-13", 5, model.RankGood),
		rec("alice", "2024-01-14", "2024-01-14", 5, model.RankGood),
	}

	// Played yesterday: the streak is still alive.
	stats := Aggregate(records, day("2024-01-15"))
	if stats.CurrentStreak != 2 {
		t.Fatalf("current streak = %d, want 2 when last play was yesterday", stats.CurrentStreak)
	}

	// Two days silent: the streak is over, the best streak remains.
	stats = Aggregate(records, day("2024-01-16"))
	if stats.CurrentStreak != 0 {
		t.Fatalf("current streak = %d, want 0 after two silent days", stats.CurrentStreak)
	}
	if stats.BestStreak != 2 {
		t.Fatalf("best streak = %d, want 2", stats.BestStreak)
	}
}

func TestAggregateMalformedDate(t *testing.T) {
	records := []model.GameRecord{
		rec("alice", "2024-01-14", "2024-01-14", 5, model.RankGood),
		rec("alice", "broken", "not-a-date", 14, model.RankGenius),
		rec("alice", "2024-01-15", "2024-01-15", 5, model.RankGood),
	}
	stats := Aggregate(records, day("2024-01-15"))
	// The bad row still counts toward games and best rank.
	if stats.GamesPlayed != 3 {
		t.Fatalf("games played = %d, want 3", stats.GamesPlayed)
	}
	if stats.BestRank != model.RankGenius {
		t.Fatalf("best rank = %q", stats.BestRank)
	}
	// But it is excluded from the streak walk.
	if stats.BestStreak != 2 || stats.CurrentStreak != 2 {
		t.Fatalf("streaks = %d/%d, want 2/2", stats.CurrentStreak, stats.BestStreak)
	}
}

func TestAggregateUnorderedInput(t *testing.T) {
	records := []model.GameRecord{
		rec("alice", "2024-01-15", "2024-01-15", 5, model.RankGood),
		rec("alice", "2024-01-13", "2024-01-13", 5, model.RankGood),
		rec("alice", "2024-01-14", "2024-01-14", 5, model.RankGood),
	}
	stats := Aggregate(records, day("2024-01-15"))
	if stats.BestStreak != 3 || stats.CurrentStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3 regardless of input order", stats.CurrentStreak, stats.BestStreak)
	}
}

func TestAverageScore(t *testing.T) {
	if got := AverageScore(nil); got != 0 {
		t.Fatalf("average of empty = %d, want 0", got)
	}
	records := []model.GameRecord{
		rec("alice", "a", "2024-01-13", 5, model.RankGood),
		rec("alice", "b", "2024-01-14", 14, model.RankGenius),
	}
	// 9.5 rounds to 10.
	if got := AverageScore(records); got != 10 {
		t.Fatalf("average = %d, want 10", got)
	}
}

func TestSortByDate(t *testing.T) {
	early := rec("alice", "a", "2024-01-13", 5, model.RankGood)
	late := rec("alice", "b", "2024-01-15", 5, model.RankGood)
	tieOld := rec("alice", "c", "2024-01-14", 5, model.RankGood)
	tieOld.UpdatedAt = day("2024-01-14").Add(8 * time.Hour)
	tieNew := rec("alice", "d", "2024-01-14", 5, model.RankGood)
	tieNew.UpdatedAt = day("2024-01-14").Add(20 * time.Hour)

	input := []model.GameRecord{late, tieNew, early, tieOld}
	sorted := SortByDate(input)
	wantOrder := []string{"a", "c", "d", "b"}
	for i, want := range wantOrder {
		if sorted[i].PuzzleID != want {
			t.Fatalf("position %d = %q, want %q", i, sorted[i].PuzzleID, want)
		}
	}
	if input[0].PuzzleID != "b" {
		t.Fatalf("input slice must not be mutated")
	}
}
