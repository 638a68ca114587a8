package runindex

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runindex.bolt")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	rec := RunRecord{
		Dir:         "/tmp/run1",
		StartedAt:   time.Now().Add(-time.Hour),
		EndedAt:     time.Now(),
		SampleCount: 42,
		ExitReason:  "completed",
		OutputFile:  "result.json",
	}

	require.NoError(t, s.Record(rec.Dir, rec))

	got, err := s.Get(rec.Dir)
	require.NoError(t, err)
	require.Equal(t, rec.SampleCount, got.SampleCount)
	require.Equal(t, rec.ExitReason, got.ExitReason)
}

func TestStoreGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRecentOrdersDescending(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-3 * time.Hour)
	for i, dir := range []string{"run-a", "run-b", "run-c"} {
		rec := RunRecord{Dir: dir, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.Record(dir, rec))
	}

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "run-c", recent[0].Dir)
	require.Equal(t, "run-b", recent[1].Dir)
}

func TestStorePrune(t *testing.T) {
	s := openTestStore(t)
	old := RunRecord{Dir: "old", StartedAt: time.Now().Add(-48 * time.Hour)}
	fresh := RunRecord{Dir: "fresh", StartedAt: time.Now()}
	require.NoError(t, s.Record(old.Dir, old))
	require.NoError(t, s.Record(fresh.Dir, fresh))

	removed, err := s.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = s.Get("old")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("fresh")
	require.NoError(t, err)
}
