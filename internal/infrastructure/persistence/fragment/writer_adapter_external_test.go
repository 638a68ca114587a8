package fragment_test

import (
	"testing"

	"github.com/kodflow/syswit/internal/domain/sample"
	"github.com/kodflow/syswit/internal/infrastructure/persistence/fragment"
	"github.com/stretchr/testify/require"
)

func TestDirWriterWriteFragmentWritesToCounterPath(t *testing.T) {
	dir := t.TempDir()
	buf := sample.NewBuffer(1.0, 1)
	buf.AppendTimestamp("2026_01_01_00_00_00.000000")

	w := fragment.DirWriter{Dir: dir}
	require.NoError(t, w.WriteFragment(3, buf))

	raw, err := fragment.Read(fragment.WritePath(dir, 3))
	require.NoError(t, err)
	require.Equal(t, []string{"2026_01_01_00_00_00.000000"}, raw.Timestamps)
}
