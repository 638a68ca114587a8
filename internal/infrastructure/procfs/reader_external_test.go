package procfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/infrastructure/procfs"
	"github.com/stretchr/testify/require"
)

func TestReaderReadGlobalRoutesStatToPositionalParser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stat")
	require.NoError(t, os.WriteFile(path, []byte("cpu  100 0 200 300 0 0 0 0 0 0\n"), 0o644))

	r := procfs.NewReader(dir, 1)
	metrics, err := r.ReadGlobal(catalog.ResolvedFile{Tag: catalog.NewGlobalTag("stat"), Path: path, Node: -1})
	require.NoError(t, err)
	require.Contains(t, metrics, "CPU user")
}

func TestReaderReadGlobalUsesGenericParserForOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meminfo")
	require.NoError(t, os.WriteFile(path, []byte("MemTotal:       16384 kB\n"), 0o644))

	r := procfs.NewReader(dir, 1)
	metrics, err := r.ReadGlobal(catalog.ResolvedFile{Tag: catalog.NewGlobalTag("meminfo"), Path: path, Node: -1})
	require.NoError(t, err)
	require.Contains(t, metrics, "MemTotal")
}

func TestReaderReadNodePrefixesNodeNumber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "numastat")
	require.NoError(t, os.WriteFile(path, []byte("numa_hit 12345\n"), 0o644))

	r := procfs.NewReader(dir, 1)
	metrics, err := r.ReadNode(catalog.ResolvedFile{Tag: catalog.NewNodeTag(2, "numastat"), Path: path, Node: 2})
	require.NoError(t, err)
	require.Contains(t, metrics, "Node 2 numa_hit")
}

func TestReaderReadPIDRoutesStatAndStatmToPositionalParsers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "321"), 0o755))

	fields := make([]string, 20)
	for i := range fields {
		fields[i] = "0"
	}
	statContent := "321 (bash) S"
	for _, f := range fields {
		statContent += " " + f
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "321", "stat"), []byte(statContent+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "321", "statm"), []byte("100 50 10 5 0 20 0\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "321", "status"), []byte("VmRSS: 4096 kB\n"), 0o644))

	r := procfs.NewReader(dir, 1)

	statMetrics, err := r.ReadPID(321, catalog.PIDFile{Name: "stat"})
	require.NoError(t, err)
	require.Contains(t, statMetrics, "321 starttime")

	statmMetrics, err := r.ReadPID(321, catalog.PIDFile{Name: "statm"})
	require.NoError(t, err)
	require.Contains(t, statmMetrics, "321 size")

	statusMetrics, err := r.ReadPID(321, catalog.PIDFile{Name: "status"})
	require.NoError(t, err)
	require.Contains(t, statusMetrics, "321 VmRSS")
}

func TestReaderReadHugepageIgnoresNodeHint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nr_hugepages")
	require.NoError(t, os.WriteFile(path, []byte("128\n"), 0o644))

	r := procfs.NewReader(dir, 1)
	metrics, err := r.ReadHugepage(catalog.ResolvedHugepage{Tag: catalog.NewGlobalTag("nr_hugepages"), Path: path})
	require.NoError(t, err)
	require.NotEmpty(t, metrics)
}

func TestNewReaderDefaultsToRealProcDir(t *testing.T) {
	r := procfs.NewReader("", 4)
	require.Equal(t, "/proc", r.ProcDir)
	require.Equal(t, 4, r.CPUCount)
}
