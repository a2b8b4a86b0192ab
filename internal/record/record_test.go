package record

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"spelldaily/internal/model"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]model.GameRecord
	stats   map[string]model.UserStats

	failGet    bool
	failUpsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[string]model.GameRecord{},
		stats:   map[string]model.UserStats{},
	}
}

func (f *fakeStore) key(userID, puzzleID string) string {
	return userID + "|" + puzzleID
}

func (f *fakeStore) GetRecord(_ context.Context, userID, puzzleID string) (*model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, fmt.Errorf("get failed")
	}
	rec, ok := f.records[f.key(userID, puzzleID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeStore) UpsertRecord(_ context.Context, rec model.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return fmt.Errorf("upsert failed")
	}
	f.records[f.key(rec.UserID, rec.PuzzleID)] = rec
	return nil
}

func (f *fakeStore) ListRecords(_ context.Context, userID string) ([]model.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.GameRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) GetStats(_ context.Context, userID string) (*model.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats, ok := f.stats[userID]
	if !ok {
		return nil, nil
	}
	return &stats, nil
}

func (f *fakeStore) UpsertStats(_ context.Context, stats model.UserStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return fmt.Errorf("upsert failed")
	}
	f.stats[stats.UserID] = stats
	return nil
}

func (f *fakeStore) record(t *testing.T, userID, puzzleID string) model.GameRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[f.key(userID, puzzleID)]
	if !ok {
		t.Fatalf("no record for %s/%s", userID, puzzleID)
	}
	return rec
}

func fixedClock(date string) func() time.Time {
	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return parsed }
}

func testRecord(puzzleID, date string, score int) model.GameRecord {
	return model.GameRecord{
		UserID:     "alice",
		PuzzleID:   puzzleID,
		Score:      score,
		WordsFound: []string{"graph"},
		Rank:       model.RankGood,
		GameDate:   date,
	}
}

func TestSaveWritesLocalAndRemote(t *testing.T) {
	local := newFakeStore()
	remote := newFakeStore()
	store := New(local, remote, WithClock(fixedClock("2024-01-15")))

	if err := store.Save(context.Background(), testRecord("2024-01-15", "2024-01-15", 5)); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Close()

	if local.record(t, "alice", "2024-01-15").Score != 5 {
		t.Fatalf("local record missing")
	}
	if remote.record(t, "alice", "2024-01-15").Score != 5 {
		t.Fatalf("remote record missing after close")
	}
	localStats, err := local.GetStats(context.Background(), "alice")
	if err != nil || localStats == nil {
		t.Fatalf("local stats = %+v, %v", localStats, err)
	}
	if localStats.GamesPlayed != 1 || localStats.CurrentStreak != 1 {
		t.Fatalf("stats = %+v", localStats)
	}
	remoteStats, err := remote.GetStats(context.Background(), "alice")
	if err != nil || remoteStats == nil {
		t.Fatalf("remote stats = %+v, %v", remoteStats, err)
	}
}

func TestSaveSurvivesRemoteFailure(t *testing.T) {
	local := newFakeStore()
	remote := newFakeStore()
	remote.failUpsert = true
	store := New(local, remote, WithClock(fixedClock("2024-01-15")))

	if err := store.Save(context.Background(), testRecord("2024-01-15", "2024-01-15", 5)); err != nil {
		t.Fatalf("save must succeed when only the remote fails: %v", err)
	}
	store.Close()

	if local.record(t, "alice", "2024-01-15").Score != 5 {
		t.Fatalf("local record missing")
	}
	if len(remote.records) != 0 {
		t.Fatalf("remote must stay empty on failure")
	}
}

func TestSaveFailsOnLocalFailure(t *testing.T) {
	local := newFakeStore()
	local.failUpsert = true
	store := New(local, nil)

	if err := store.Save(context.Background(), testRecord("2024-01-15", "2024-01-15", 5)); err == nil {
		t.Fatalf("expected error when the local write fails")
	}
}

func TestSaveMonotonicScore(t *testing.T) {
	local := newFakeStore()
	store := New(local, nil, WithClock(fixedClock("2024-01-15")))
	ctx := context.Background()

	if err := store.Save(ctx, testRecord("2024-01-15", "2024-01-15", 14)); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A stale snapshot with a lower score must not clobber the row.
	if err := store.Save(ctx, testRecord("2024-01-15", "2024-01-15", 5)); err != nil {
		t.Fatalf("stale save must be a silent no-op: %v", err)
	}
	if got := local.record(t, "alice", "2024-01-15").Score; got != 14 {
		t.Fatalf("score = %d, want 14 preserved", got)
	}

	// An equal or higher score still writes.
	next := testRecord("2024-01-15", "2024-01-15", 14)
	next.WordsFound = []string{"graph", "cigar"}
	if err := store.Save(ctx, next); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := local.record(t, "alice", "2024-01-15"); len(got.WordsFound) != 2 {
		t.Fatalf("equal-score save must replace the row, got %v", got.WordsFound)
	}
}

func TestSaveIdempotentGamesPlayed(t *testing.T) {
	local := newFakeStore()
	store := New(local, nil, WithClock(fixedClock("2024-01-15")))
	ctx := context.Background()

	for score := 1; score <= 3; score++ {
		if err := store.Save(ctx, testRecord("2024-01-15", "2024-01-15", score)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	stats, err := store.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.GamesPlayed != 1 {
		t.Fatalf("games played = %d, want 1 for repeated saves of one puzzle", stats.GamesPlayed)
	}
}

func TestLoadPrefersRemote(t *testing.T) {
	local := newFakeStore()
	remote := newFakeStore()
	ctx := context.Background()
	_ = local.UpsertRecord(ctx, testRecord("2024-01-15", "2024-01-15", 5))
	_ = remote.UpsertRecord(ctx, testRecord("2024-01-15", "2024-01-15", 14))

	store := New(local, remote)
	rec, err := store.Load(ctx, "alice", "2024-01-15")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec == nil || rec.Score != 14 {
		t.Fatalf("load must prefer the remote row, got %+v", rec)
	}
}

func TestLoadFallsBackToLocal(t *testing.T) {
	local := newFakeStore()
	remote := newFakeStore()
	remote.failGet = true
	ctx := context.Background()
	_ = local.UpsertRecord(ctx, testRecord("2024-01-15", "2024-01-15", 5))

	store := New(local, remote)
	rec, err := store.Load(ctx, "alice", "2024-01-15")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec == nil || rec.Score != 5 {
		t.Fatalf("load must fall back to local, got %+v", rec)
	}
}

func TestLoadMissingEverywhere(t *testing.T) {
	store := New(newFakeStore(), newFakeStore())
	rec, err := store.Load(context.Background(), "alice", "2024-01-15")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil for an unplayed puzzle, got %+v", rec)
	}
}

func TestOfflineStore(t *testing.T) {
	store := New(newFakeStore(), nil)
	ctx := context.Background()

	if store.Synced() {
		t.Fatalf("store without remote must not report synced")
	}
	if err := store.Save(ctx, testRecord("2024-01-15", "2024-01-15", 5)); err != nil {
		t.Fatalf("offline save: %v", err)
	}
	history, err := store.RemoteHistory(ctx, "alice")
	if err != nil || history != nil {
		t.Fatalf("remote history offline = %v, %v", history, err)
	}
	stats, err := store.RemoteStats(ctx, "alice")
	if err != nil || stats != nil {
		t.Fatalf("remote stats offline = %v, %v", stats, err)
	}
	store.Close()
}

func TestStatsRecomputedFromHistory(t *testing.T) {
	local := newFakeStore()
	store := New(local, nil, WithClock(fixedClock("2024-01-15")))
	ctx := context.Background()

	if err := store.Save(ctx, testRecord("2024-01-14", "2024-01-14", 5)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, testRecord("2024-01-15", "2024-01-15", 14)); err != nil {
		t.Fatalf("save: %v", err)
	}

	stats, err := store.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.UserID != "alice" {
		t.Fatalf("user = %q", stats.UserID)
	}
	if stats.GamesPlayed != 2 || stats.CurrentStreak != 2 || stats.BestStreak != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.LastPlayedDate != "2024-01-15" {
		t.Fatalf("last played = %q", stats.LastPlayedDate)
	}
}
