// Package remote implements the HTTP client for the sync server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"spelldaily/internal/model"
)

// DefaultTimeout bounds a single remote call. There is no retry layer on
// top of it; a failed call is reported to the caller and dropped.
const DefaultTimeout = 5 * time.Second

// Client talks to the sync server's JSON API. All methods treat the remote
// store as a plain row store keyed by (user, puzzle).
type Client struct {
	baseURL string
	client  *http.Client
}

// New constructs a client for the given base URL. A zero timeout falls
// back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type progressRow struct {
	UserUID       string   `json:"user_uid"`
	UID           string   `json:"uid,omitempty"`
	PuzzleID      string   `json:"puzzle_id"`
	Score         int      `json:"score"`
	WordsFound    []string `json:"words_found"`
	PangramsFound []string `json:"pangrams_found"`
	Rank          string   `json:"rank"`
	GameDate      string   `json:"game_date"`
	Timestamp     string   `json:"timestamp,omitempty"`
}

type statsRow struct {
	UserUID        string `json:"user_uid"`
	UID            string `json:"uid,omitempty"`
	GamesPlayed    int    `json:"games_played"`
	CurrentStreak  int    `json:"current_streak"`
	BestStreak     int    `json:"best_streak"`
	BestRank       string `json:"best_rank"`
	LastPlayedDate string `json:"last_played_date"`
}

type leaderboardRow struct {
	DisplayName   string `json:"display_name"`
	GamesPlayed   int    `json:"games_played"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
}

// GetRecord fetches the remote record for one (user, puzzle) attempt, or
// nil when the server has none.
func (c *Client) GetRecord(ctx context.Context, userID, puzzleID string) (*model.GameRecord, error) {
	endpoint := c.endpoint("/api/progress/" + url.PathEscape(userID) + "/" + url.PathEscape(puzzleID))
	var row *progressRow
	if err := c.getJSON(ctx, endpoint, &row); err != nil {
		return nil, err
	}
	if row == nil || row.PuzzleID == "" {
		return nil, nil
	}
	rec := recordFromRow(*row)
	return &rec, nil
}

// UpsertRecord replaces the remote row for the record's (user, puzzle)
// pair with the given values. Last write wins at the row level.
func (c *Client) UpsertRecord(ctx context.Context, rec model.GameRecord) error {
	payload := progressRow{
		UID:           rec.UserID,
		PuzzleID:      rec.PuzzleID,
		Score:         rec.Score,
		WordsFound:    rec.WordsFound,
		PangramsFound: rec.PangramsFound,
		Rank:          string(rec.Rank),
		GameDate:      rec.GameDate,
	}
	return c.postJSON(ctx, c.endpoint("/api/progress"), payload)
}

// ListRecords fetches the user's full record history, unordered.
func (c *Client) ListRecords(ctx context.Context, userID string) ([]model.GameRecord, error) {
	endpoint := c.endpoint("/api/history/" + url.PathEscape(userID))
	var rows []progressRow
	if err := c.getJSON(ctx, endpoint, &rows); err != nil {
		return nil, err
	}
	records := make([]model.GameRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

// GetStats fetches the remote stats snapshot, or nil when the server has
// none for this user.
func (c *Client) GetStats(ctx context.Context, userID string) (*model.UserStats, error) {
	endpoint := c.endpoint("/api/stats/" + url.PathEscape(userID))
	var row statsRow
	if err := c.getJSON(ctx, endpoint, &row); err != nil {
		return nil, err
	}
	// The server answers an empty object when no stats row exists.
	if row.UserUID == "" && row.UID == "" {
		return nil, nil
	}
	uid := row.UserUID
	if uid == "" {
		uid = row.UID
	}
	return &model.UserStats{
		UserID:         uid,
		GamesPlayed:    row.GamesPlayed,
		CurrentStreak:  row.CurrentStreak,
		BestStreak:     row.BestStreak,
		BestRank:       model.Rank(row.BestRank),
		LastPlayedDate: row.LastPlayedDate,
	}, nil
}

// UpsertStats replaces the remote stats row for the user.
func (c *Client) UpsertStats(ctx context.Context, stats model.UserStats) error {
	payload := statsRow{
		UID:            stats.UserID,
		GamesPlayed:    stats.GamesPlayed,
		CurrentStreak:  stats.CurrentStreak,
		BestStreak:     stats.BestStreak,
		BestRank:       string(stats.BestRank),
		LastPlayedDate: stats.LastPlayedDate,
	}
	return c.postJSON(ctx, c.endpoint("/api/stats"), payload)
}

// Leaderboard fetches the global top players by games played.
func (c *Client) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	var rows []leaderboardRow
	if err := c.getJSON(ctx, c.endpoint("/api/leaderboard"), &rows); err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.LeaderboardEntry{
			DisplayName:   row.DisplayName,
			GamesPlayed:   row.GamesPlayed,
			CurrentStreak: row.CurrentStreak,
			BestStreak:    row.BestStreak,
		})
	}
	return entries, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach sync server: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync server returned %s for %s", resp.Status, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach sync server: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sync server returned %s for %s", resp.Status, endpoint)
	}
	return nil
}

func recordFromRow(row progressRow) model.GameRecord {
	uid := row.UserUID
	if uid == "" {
		uid = row.UID
	}
	rec := model.GameRecord{
		UserID:        uid,
		PuzzleID:      row.PuzzleID,
		Score:         row.Score,
		WordsFound:    row.WordsFound,
		PangramsFound: row.PangramsFound,
		Rank:          model.Rank(row.Rank),
		GameDate:      row.GameDate,
	}
	if row.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, row.Timestamp); err == nil {
			rec.UpdatedAt = parsed
		}
	}
	// Stored dates may come back with a time component attached.
	if len(rec.GameDate) > len(model.DateLayout) {
		if parsed, err := time.Parse(time.RFC3339, rec.GameDate); err == nil {
			rec.GameDate = parsed.Format(model.DateLayout)
		}
	}
	return rec
}
