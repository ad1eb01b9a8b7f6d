package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// ErrCategoryNotFound is returned when a provider has no snapshot series for
// the requested category.
var ErrCategoryNotFound = errors.New("snapshot: category not found")

// Provider yields the ordered monthly snapshot series for a category. The ETL
// that produces snapshots lives outside this module; implementations only
// load already-canonical data.
type Provider interface {
	Snapshots(ctx context.Context, categoryID string) ([]Snapshot, error)
}

// FileProvider loads snapshot series from JSON exports, one file per category
// at <dir>/<categoryID>.json containing a Snapshot array.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Snapshots reads and chronologically sorts the category's snapshot series.
func (p *FileProvider) Snapshots(_ context.Context, categoryID string) ([]Snapshot, error) {
	path := filepath.Join(p.dir, categoryID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snaps []Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	Sort(snaps)
	log.Debug().Str("category", categoryID).Int("snapshots", len(snaps)).Msg("Loaded snapshot series")
	return snaps, nil
}

// Sort orders a snapshot series chronologically in place.
func Sort(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Date.Before(snaps[j].Date)
	})
}

// StaticProvider serves an in-memory snapshot series, used by tests and by
// callers that already hold the resolved series.
type StaticProvider struct {
	series map[string][]Snapshot
}

// NewStaticProvider creates a provider over pre-loaded series keyed by
// category id.
func NewStaticProvider(series map[string][]Snapshot) *StaticProvider {
	return &StaticProvider{series: series}
}

// Snapshots returns the stored series for the category.
func (p *StaticProvider) Snapshots(_ context.Context, categoryID string) ([]Snapshot, error) {
	snaps, ok := p.series[categoryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
	}
	out := make([]Snapshot, len(snaps))
	copy(out, snaps)
	Sort(out)
	return out, nil
}
