package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tliron/commonlog"

	"github.com/kittclouds/linkgraph/pkg/backlinks"
)

// IndexKey is the singleton key the index snapshot is stored under
const IndexKey = "backlink-index"

// ErrUnsupportedVersion is returned by Load for snapshots written by an
// incompatible format version.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

func logger() commonlog.Logger {
	return commonlog.GetLogger("linkgraph.store")
}

// timestamped is implemented by stores that record when each key was written
type timestamped interface {
	SnapshotUpdatedAt(key string) (time.Time, error)
}

// IndexRepository saves and restores a backlink index through a
// SnapshotStore.
type IndexRepository struct {
	store SnapshotStore
	key   string
}

// NewIndexRepository stores the index under IndexKey.
func NewIndexRepository(s SnapshotStore) *IndexRepository {
	return &IndexRepository{store: s, key: IndexKey}
}

// Save writes a full snapshot of idx.
func (r *IndexRepository) Save(idx *backlinks.Index) error {
	data := idx.Serialize()
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.store.PutSnapshot(r.key, raw); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	logger().Infof("saved index: %d documents, %d links (%d bytes)", len(data.Documents), len(data.Links), len(raw))
	return nil
}

// Load replaces the contents of idx with the stored snapshot. It reports
// false, leaving idx untouched, when nothing has been saved yet.
func (r *IndexRepository) Load(idx *backlinks.Index) (bool, error) {
	data, err := r.Snapshot()
	if err != nil || data == nil {
		return false, err
	}

	idx.Deserialize(data)
	logger().Infof("loaded index: %d documents, %d links (saved %s)", idx.DocumentCount(), idx.LinkCount(), data.LastUpdated)
	return true, nil
}

// Snapshot reads and validates the stored snapshot without applying it.
// Returns nil, nil when nothing is stored.
func (r *IndexRepository) Snapshot() (*backlinks.SerializedIndex, error) {
	raw, err := r.store.GetSnapshot(r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var data backlinks.SerializedIndex
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if data.Version != backlinks.SerializedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data.Version)
	}
	return &data, nil
}

// Delete removes the stored snapshot.
func (r *IndexRepository) Delete() error {
	if err := r.store.DeleteSnapshot(r.key); err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	return nil
}

// SavedAt reports when the stored snapshot was written, or the zero time
// when nothing is stored. Stores that track write times are asked
// directly; otherwise the snapshot's own timestamp is used.
func (r *IndexRepository) SavedAt() (time.Time, error) {
	if ts, ok := r.store.(timestamped); ok {
		at, err := ts.SnapshotUpdatedAt(r.key)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to read snapshot time: %w", err)
		}
		return at, nil
	}

	data, err := r.Snapshot()
	if err != nil || data == nil {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, data.LastUpdated)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read snapshot time: %w", err)
	}
	return at, nil
}
