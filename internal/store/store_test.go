package store

import (
	"errors"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/linkgraph/pkg/backlinks"
)

// =============================================================================
// Store Factory for Testing Every Implementation
// =============================================================================

// storeFactory creates a store for testing.
// MemStore, SQLiteStore and FSStore share the same test suite.
type storeFactory func() (SnapshotStore, error)

func memStoreFactory() (SnapshotStore, error) {
	return NewMemStore(), nil
}

func sqliteStoreFactory() (SnapshotStore, error) {
	return NewSQLiteStore()
}

func fsStoreFactory() (SnapshotStore, error) {
	fsys, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	return NewFSStore(fsys, "linkgraph/snapshots")
}

// runTestsForAllStores runs a test function against every store implementation.
func runTestsForAllStores(t *testing.T, testName string, testFn func(t *testing.T, store SnapshotStore)) {
	factories := map[string]storeFactory{
		"MemStore":    memStoreFactory,
		"SQLiteStore": sqliteStoreFactory,
		"FSStore":     fsStoreFactory,
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			store, err := factory()
			require.NoError(t, err, "Failed to create store")
			defer store.Close()
			testFn(t, store)
		})
	}
}

// =============================================================================
// Snapshot CRUD
// =============================================================================

func TestSnapshotPutAndGet(t *testing.T) {
	runTestsForAllStores(t, "PutAndGet", func(t *testing.T, store SnapshotStore) {
		require.NoError(t, store.PutSnapshot("k", []byte(`{"a":1}`)))

		got, err := store.GetSnapshot("k")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))
	})
}

func TestSnapshotMissing(t *testing.T) {
	runTestsForAllStores(t, "Missing", func(t *testing.T, store SnapshotStore) {
		got, err := store.GetSnapshot("nope")
		require.NoError(t, err)
		assert.Nil(t, got, "missing key returns nil, nil")
	})
}

func TestSnapshotOverwrite(t *testing.T) {
	runTestsForAllStores(t, "Overwrite", func(t *testing.T, store SnapshotStore) {
		require.NoError(t, store.PutSnapshot("k", []byte("first, and longer")))
		require.NoError(t, store.PutSnapshot("k", []byte("second")))

		got, err := store.GetSnapshot("k")
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})
}

func TestSnapshotDelete(t *testing.T) {
	runTestsForAllStores(t, "Delete", func(t *testing.T, store SnapshotStore) {
		require.NoError(t, store.PutSnapshot("k", []byte("x")))
		require.NoError(t, store.DeleteSnapshot("k"))
		require.NoError(t, store.DeleteSnapshot("k"), "deleting twice is fine")

		got, err := store.GetSnapshot("k")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSnapshotKeysAreIndependent(t *testing.T) {
	runTestsForAllStores(t, "Independent", func(t *testing.T, store SnapshotStore) {
		require.NoError(t, store.PutSnapshot("a", []byte("1")))
		require.NoError(t, store.PutSnapshot("b", []byte("2")))
		require.NoError(t, store.DeleteSnapshot("a"))

		got, err := store.GetSnapshot("b")
		require.NoError(t, err)
		assert.Equal(t, "2", string(got))
	})
}

func TestMemStoreCopies(t *testing.T) {
	s := NewMemStore()
	buf := []byte("abc")
	require.NoError(t, s.PutSnapshot("k", buf))
	buf[0] = 'X'

	got, err := s.GetSnapshot("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFSStoreRejectsPathKeys(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	s, err := NewFSStore(fsys, "")
	require.NoError(t, err)

	assert.Error(t, s.PutSnapshot("../escape", []byte("x")))
	assert.Error(t, s.PutSnapshot("", []byte("x")))
	require.NoError(t, s.PutSnapshot("root-level", []byte("x")))
}

func TestSQLiteUpdatedAt(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	ts, err := s.SnapshotUpdatedAt("k")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	require.NoError(t, s.PutSnapshot("k", []byte("x")))
	ts, err = s.SnapshotUpdatedAt("k")
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

// =============================================================================
// Index Repository
// =============================================================================

func TestRepositoryRoundTrip(t *testing.T) {
	runTestsForAllStores(t, "Repository", func(t *testing.T, store SnapshotStore) {
		idx := backlinks.New(backlinks.DefaultConfig())
		idx.AddDocument("doc-1", "Note A", "<p>See [[Note B]] and [[Ghost]]</p>")
		idx.AddDocument("doc-2", "Note B", "<p>x</p>")

		repo := NewIndexRepository(store)
		require.NoError(t, repo.Save(idx))

		restored := backlinks.New(backlinks.DefaultConfig())
		ok, err := repo.Load(restored)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, idx.DocumentCount(), restored.DocumentCount())
		assert.Equal(t, idx.GetBacklinks("doc-2"), restored.GetBacklinks("doc-2"))
		assert.Equal(t, idx.GetOutgoingLinks("doc-1"), restored.GetOutgoingLinks("doc-1"))
		require.NoError(t, restored.CheckConsistency())
	})
}

func TestRepositoryEmpty(t *testing.T) {
	runTestsForAllStores(t, "RepositoryEmpty", func(t *testing.T, store SnapshotStore) {
		idx := backlinks.New(backlinks.DefaultConfig())
		idx.AddDocument("keep", "Keep", "")

		ok, err := NewIndexRepository(store).Load(idx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, idx.DocumentCount(), "index untouched when nothing is stored")
	})
}

func TestRepositorySavedAt(t *testing.T) {
	runTestsForAllStores(t, "SavedAt", func(t *testing.T, store SnapshotStore) {
		repo := NewIndexRepository(store)

		at, err := repo.SavedAt()
		require.NoError(t, err)
		assert.True(t, at.IsZero())

		require.NoError(t, repo.Save(backlinks.New(backlinks.DefaultConfig())))
		at, err = repo.SavedAt()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), at, 5*time.Second)
	})
}

func TestRepositoryDelete(t *testing.T) {
	store := NewMemStore()
	repo := NewIndexRepository(store)
	require.NoError(t, repo.Save(backlinks.New(backlinks.DefaultConfig())))
	require.NoError(t, repo.Delete())

	data, err := repo.Snapshot()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRepositoryRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"future version", `{"version":2,"documents":[],"links":[]}`, ErrUnsupportedVersion},
		{"missing version", `{"documents":[],"links":[]}`, ErrUnsupportedVersion},
		{"not json", `<html>`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemStore()
			require.NoError(t, store.PutSnapshot(IndexKey, []byte(tt.raw)))

			idx := backlinks.New(backlinks.DefaultConfig())
			idx.AddDocument("keep", "Keep", "")
			ok, err := NewIndexRepository(store).Load(idx)
			require.Error(t, err)
			assert.False(t, ok)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.Equal(t, 1, idx.DocumentCount())
		})
	}
}

type failingStore struct{ *MemStore }

var errDiskFull = errors.New("disk full")

func (f *failingStore) PutSnapshot(string, []byte) error { return errDiskFull }

func TestRepositoryWrapsStoreErrors(t *testing.T) {
	repo := NewIndexRepository(&failingStore{MemStore: NewMemStore()})
	err := repo.Save(backlinks.New(backlinks.DefaultConfig()))
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
}
