package fragment_test

import (
	"path/filepath"
	"testing"

	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/fragment"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	buf := sample.NewBuffer(1.0, 3)
	buf.AppendTimestamp("2026_01_01_00_00_00.000000")
	buf.Series("proc_stat").Set("2026_01_01_00_00_00.000000", sample.Metrics{
		"CPU user": sample.IntValue(100),
	})
	buf.RecordPID(42)

	path := filepath.Join(t.TempDir(), "tmpresult_1.json")
	require.NoError(t, fragment.Write(path, buf))

	raw, err := fragment.Read(path)
	require.NoError(t, err)
	require.Equal(t, []string{"2026_01_01_00_00_00.000000"}, raw.Timestamps)
	require.Equal(t, []int{42}, raw.AllPIDs)
	require.Contains(t, raw.Tags, "proc_stat")
	v := raw.Tags["proc_stat"]["2026_01_01_00_00_00.000000"]["CPU user"]
	got, ok := v.Int()
	require.True(t, ok)
	require.Equal(t, int64(100), got)
}

func TestListFragmentsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	buf := sample.NewBuffer(1.0, 1)
	require.NoError(t, fragment.Write(fragment.WritePath(dir, 2), buf))
	require.NoError(t, fragment.Write(fragment.WritePath(dir, 1), buf))

	paths, err := fragment.ListFragments(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Contains(t, paths[0], "tmpresult_1.json")
}

func TestDeleteRemovesFragments(t *testing.T) {
	dir := t.TempDir()
	buf := sample.NewBuffer(1.0, 1)
	path := fragment.WritePath(dir, 1)
	require.NoError(t, fragment.Write(path, buf))

	require.NoError(t, fragment.Delete([]string{path}))
	_, err := fragment.Read(path)
	require.Error(t, err)
}
