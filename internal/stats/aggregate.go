// Package stats computes derived statistics from game records.
package stats

import (
	"math"
	"sort"
	"time"

	"spelldaily/internal/model"
)

// Aggregate reduces a user's game records to a stats snapshot. The
// evaluation day is injected so streak computation is deterministic at
// simulated dates. A record whose game date does not parse as a calendar
// day is excluded from the streak walk but still counts toward games
// played and best rank; one bad record must not corrupt the rest.
func Aggregate(records []model.GameRecord, today time.Time) model.UserStats {
	stats := model.UserStats{BestRank: model.RankBeginner}
	if len(records) == 0 {
		return stats
	}

	puzzles := map[string]struct{}{}
	for _, rec := range records {
		if stats.UserID == "" {
			stats.UserID = rec.UserID
		}
		puzzles[rec.PuzzleID] = struct{}{}
		stats.BestRank = model.MaxRank(stats.BestRank, rec.Rank)
	}
	stats.GamesPlayed = len(puzzles)

	days := playedDays(records)
	if len(days) == 0 {
		return stats
	}

	// Walk distinct days in ascending order: a one-day gap extends the
	// run, anything larger restarts it. Multiple records on one day
	// collapsed into a single day above.
	run := 0
	for i, day := range days {
		if i == 0 || int(day.Sub(days[i-1]).Hours()/24) > 1 {
			run = 1
		} else {
			run++
		}
		if run > stats.BestStreak {
			stats.BestStreak = run
		}
	}

	last := days[len(days)-1]
	stats.LastPlayedDate = last.Format(model.DateLayout)

	// The streak is alive only if the user played today or yesterday.
	gap := int(normalizeDay(today).Sub(last).Hours() / 24)
	if gap == 0 || gap == 1 {
		stats.CurrentStreak = run
	}
	return stats
}

// AverageScore returns the mean score across records, rounded to the
// nearest integer.
func AverageScore(records []model.GameRecord) int {
	if len(records) == 0 {
		return 0
	}
	total := 0
	for _, rec := range records {
		total += rec.Score
	}
	return int(math.Round(float64(total) / float64(len(records))))
}

// SortByDate orders records ascending by game date, breaking ties by
// update time, without mutating the input.
func SortByDate(records []model.GameRecord) []model.GameRecord {
	sorted := append([]model.GameRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GameDate == sorted[j].GameDate {
			return sorted[i].UpdatedAt.Before(sorted[j].UpdatedAt)
		}
		return sorted[i].GameDate < sorted[j].GameDate
	})
	return sorted
}

func playedDays(records []model.GameRecord) []time.Time {
	seen := map[string]struct{}{}
	var days []time.Time
	for _, rec := range records {
		parsed, err := time.Parse(model.DateLayout, rec.GameDate)
		if err != nil {
			continue
		}
		key := parsed.Format(model.DateLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, normalizeDay(parsed))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
