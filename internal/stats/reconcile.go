package stats

import (
	"sort"
	"time"

	"spelldaily/internal/model"
)

// MergeSnapshots merges two already-aggregated stats snapshots field by
// field, optimistically: counts take the maximum of the two sources and
// the best rank wins. It never loses a higher number, but it can overstate
// games played when the two sources cover partially overlapping puzzle
// sets. Prefer ReconcileHistories when both full histories are available.
func MergeSnapshots(local, remote model.UserStats) model.UserStats {
	merged := model.UserStats{
		UserID:         local.UserID,
		GamesPlayed:    maxInt(local.GamesPlayed, remote.GamesPlayed),
		CurrentStreak:  maxInt(local.CurrentStreak, remote.CurrentStreak),
		BestStreak:     maxInt(local.BestStreak, remote.BestStreak),
		BestRank:       model.MaxRank(local.BestRank, remote.BestRank),
		LastPlayedDate: local.LastPlayedDate,
	}
	if merged.UserID == "" {
		merged.UserID = remote.UserID
	}
	if remote.LastPlayedDate > merged.LastPlayedDate {
		merged.LastPlayedDate = remote.LastPlayedDate
	}
	if merged.BestRank == "" {
		merged.BestRank = model.RankBeginner
	}
	return merged
}

// MergeRecords unions two record histories keyed by (user, puzzle),
// keeping the higher-score row per key and breaking ties by update time.
func MergeRecords(local, remote []model.GameRecord) []model.GameRecord {
	type key struct {
		user   string
		puzzle string
	}
	byKey := map[key]model.GameRecord{}
	order := []key{}
	for _, rec := range append(append([]model.GameRecord(nil), local...), remote...) {
		k := key{user: rec.UserID, puzzle: rec.PuzzleID}
		existing, ok := byKey[k]
		if !ok {
			byKey[k] = rec
			order = append(order, k)
			continue
		}
		if rec.Score > existing.Score ||
			(rec.Score == existing.Score && rec.UpdatedAt.After(existing.UpdatedAt)) {
			byKey[k] = rec
		}
	}
	merged := make([]model.GameRecord, 0, len(order))
	for _, k := range order {
		merged = append(merged, byKey[k])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].GameDate < merged[j].GameDate
	})
	return merged
}

// ReconcileHistories merges two record histories at the record level and
// re-aggregates, so overlapping puzzles are counted exactly once. This is
// the preferred reconciliation path; MergeSnapshots is the fallback when a
// side only offers an aggregated snapshot.
func ReconcileHistories(local, remote []model.GameRecord, today time.Time) model.UserStats {
	return Aggregate(MergeRecords(local, remote), today)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
