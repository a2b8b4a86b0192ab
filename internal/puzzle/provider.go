package puzzle

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"spelldaily/internal/model"
)

// Provider supplies puzzle descriptors. Get is deterministic for a given
// key; ForceNew mints an instance id that never collides with a
// calendar-date id.
type Provider interface {
	Get(key string) (model.Puzzle, error)
	ForceNew() (model.Puzzle, error)
}

// Dir serves puzzle descriptors from TOML files in a directory, one file
// per puzzle id.
type Dir struct {
	path string
	rnd  *rand.Rand
}

// NewDir constructs a directory-backed provider.
func NewDir(path string) *Dir {
	return &Dir{
		path: path,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get loads the descriptor for the given key. The same key always yields
// the same puzzle.
func (d *Dir) Get(key string) (model.Puzzle, error) {
	path := filepath.Join(d.path, key+".toml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return model.Puzzle{}, fmt.Errorf("no puzzle installed for %q", key)
		}
		return model.Puzzle{}, fmt.Errorf("failed to stat puzzle: %w", err)
	}
	return Load(path, key)
}

// ForceNew picks a random installed descriptor and mints a fresh instance
// id from it. The uuid suffix guarantees the id never collides with a
// date-derived one, so the forced attempt gets its own game record.
func (d *Dir) ForceNew() (model.Puzzle, error) {
	ids, err := d.List()
	if err != nil {
		return model.Puzzle{}, err
	}
	base := ids[d.rnd.Intn(len(ids))]
	puzzle, err := d.Get(base)
	if err != nil {
		return model.Puzzle{}, err
	}
	puzzle.ID = fmt.Sprintf("%s-%s", base, uuid.NewString())
	return puzzle, nil
}

// List returns the installed puzzle ids, sorted.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("puzzle directory does not exist: %s", d.path)
		}
		return nil, fmt.Errorf("failed to read puzzle directory: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".toml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".toml"))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no puzzles installed in %s", d.path)
	}
	sort.Strings(ids)
	return ids, nil
}
