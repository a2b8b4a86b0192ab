// Package record coordinates the local replica and best-effort remote
// upserts for game records.
package record

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"spelldaily/internal/model"
	"spelldaily/internal/stats"
)

// Local is the synchronous cache side of the record store. A failed local
// write fails the save; it is the only durability guarantee.
type Local interface {
	GetRecord(ctx context.Context, userID, puzzleID string) (*model.GameRecord, error)
	UpsertRecord(ctx context.Context, rec model.GameRecord) error
	ListRecords(ctx context.Context, userID string) ([]model.GameRecord, error)
	GetStats(ctx context.Context, userID string) (*model.UserStats, error)
	UpsertStats(ctx context.Context, stats model.UserStats) error
}

// Remote mirrors the persistence boundary on the sync server. Calls are
// best-effort: failures are logged and dropped, never retried.
type Remote interface {
	GetRecord(ctx context.Context, userID, puzzleID string) (*model.GameRecord, error)
	UpsertRecord(ctx context.Context, rec model.GameRecord) error
	ListRecords(ctx context.Context, userID string) ([]model.GameRecord, error)
	GetStats(ctx context.Context, userID string) (*model.UserStats, error)
	UpsertStats(ctx context.Context, stats model.UserStats) error
}

// Store layers an eventually-consistent remote replica over the local
// cache. Loads prefer remote data when the server is reachable; saves
// write locally first and upsert remotely in the background.
type Store struct {
	local   Local
	remote  Remote
	now     func() time.Time
	timeout time.Duration

	wg sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the time source used for stats aggregation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTimeout bounds each background remote upsert.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New constructs a Store. remote may be nil when sync is disabled.
func New(local Local, remote Remote, opts ...Option) *Store {
	s := &Store{
		local:   local,
		remote:  remote,
		now:     time.Now,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the record for one (user, puzzle) attempt. Remote data is
// authoritative when present; the local cache is the offline fallback.
// Returns nil when neither source has the puzzle.
func (s *Store) Load(ctx context.Context, userID, puzzleID string) (*model.GameRecord, error) {
	if s.remote != nil {
		rec, err := s.remote.GetRecord(ctx, userID, puzzleID)
		if err != nil {
			logErrf("failed to load remote record: %v\n", err)
		} else if rec != nil {
			return rec, nil
		}
	}
	return s.local.GetRecord(ctx, userID, puzzleID)
}

// Save upserts the record: synchronously into the local cache, then
// best-effort into the remote store without blocking the caller. The
// user's stats snapshot is recomputed from the full local history on
// every save. Within a puzzle the saved score is monotonic; a save below
// the stored score is a no-op.
func (s *Store) Save(ctx context.Context, rec model.GameRecord) error {
	prev, err := s.local.GetRecord(ctx, rec.UserID, rec.PuzzleID)
	if err != nil {
		return fmt.Errorf("failed to read cached record: %w", err)
	}
	if prev != nil && rec.Score < prev.Score {
		return nil
	}

	if err := s.local.UpsertRecord(ctx, rec); err != nil {
		return fmt.Errorf("failed to save game locally: %w", err)
	}

	history, err := s.local.ListRecords(ctx, rec.UserID)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	snapshot := stats.Aggregate(history, s.now())
	if err := s.local.UpsertStats(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save stats locally: %w", err)
	}

	if s.remote != nil {
		s.wg.Add(1)
		go s.pushRemote(rec, snapshot)
	}
	return nil
}

// pushRemote runs off the caller's goroutine; a failure here is a silent
// durability gap until the next save for the same puzzle.
func (s *Store) pushRemote(rec model.GameRecord, snapshot model.UserStats) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.remote.UpsertRecord(ctx, rec); err != nil {
		logErrf("failed to sync game record: %v\n", err)
		return
	}
	if err := s.remote.UpsertStats(ctx, snapshot); err != nil {
		logErrf("failed to sync stats: %v\n", err)
	}
}

// History returns the user's full local record history, unordered.
func (s *Store) History(ctx context.Context, userID string) ([]model.GameRecord, error) {
	return s.local.ListRecords(ctx, userID)
}

// Stats recomputes the user's stats snapshot from the local history.
func (s *Store) Stats(ctx context.Context, userID string) (model.UserStats, error) {
	history, err := s.local.ListRecords(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}
	snapshot := stats.Aggregate(history, s.now())
	snapshot.UserID = userID
	return snapshot, nil
}

// RemoteHistory fetches the user's record history from the sync server.
// Returns nil without error when sync is disabled.
func (s *Store) RemoteHistory(ctx context.Context, userID string) ([]model.GameRecord, error) {
	if s.remote == nil {
		return nil, nil
	}
	return s.remote.ListRecords(ctx, userID)
}

// RemoteStats fetches the user's stats snapshot from the sync server.
// Returns nil without error when sync is disabled or the server has none.
func (s *Store) RemoteStats(ctx context.Context, userID string) (*model.UserStats, error) {
	if s.remote == nil {
		return nil, nil
	}
	return s.remote.GetStats(ctx, userID)
}

// Synced reports whether a remote replica is configured.
func (s *Store) Synced() bool {
	return s.remote != nil
}

// Close waits for in-flight remote upserts to finish.
func (s *Store) Close() {
	s.wg.Wait()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
