package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"spelldaily/internal/model"
)

// RenderSummary prints a stats snapshot with an average-score line and a
// score sparkline derived from the record history.
func RenderSummary(w io.Writer, stats model.UserStats, records []model.GameRecord) error {
	if stats.GamesPlayed == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Games played: %d", stats.GamesPlayed),
		fmt.Sprintf("Average score: %d", AverageScore(records)),
		fmt.Sprintf("Best rank: %s", stats.BestRank),
		fmt.Sprintf("Current streak: %s", formatDays(stats.CurrentStreak)),
		fmt.Sprintf("Best streak: %s", formatDays(stats.BestStreak)),
		fmt.Sprintf("Last played: %s", stats.LastPlayedDate),
	}
	if curve := Sparkline(ScoreSeries(records)); curve != "" {
		lines = append(lines, fmt.Sprintf("Scores: %s", curve))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints the record history as a table, most recent first.
func RenderHistory(w io.Writer, records []model.GameRecord, last int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}
	sorted := SortByDate(records)
	// Most recent first.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].GameDate > sorted[j].GameDate })
	if last > 0 && len(sorted) > last {
		sorted = sorted[:last]
	}

	headers := []string{"Date", "Puzzle", "Score", "Rank", "Words", "Pangrams"}
	rows := make([][]string, 0, len(sorted))
	for _, rec := range sorted {
		rows = append(rows, []string{
			rec.GameDate,
			rec.PuzzleID,
			fmt.Sprintf("%d", rec.Score),
			string(rec.Rank),
			fmt.Sprintf("%d", len(rec.WordsFound)),
			fmt.Sprintf("%d", len(rec.PangramsFound)),
		})
	}
	rightAlign := map[int]bool{2: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderLeaderboard prints the global leaderboard table.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No global stats yet.")
		return err
	}
	headers := []string{"#", "Player", "Games", "Streak", "Best"}
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		name := entry.DisplayName
		if strings.TrimSpace(name) == "" {
			name = "Unknown"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			name,
			fmt.Sprintf("%d", entry.GamesPlayed),
			fmt.Sprintf("%d", entry.CurrentStreak),
			fmt.Sprintf("%d", entry.BestStreak),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
