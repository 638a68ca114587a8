package procfs

import (
	"fmt"
	"os"
	"strings"

	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/domain/sample"
)

// Reader dispatches every catalog entry to the generic delimiter-driven
// parser or to one of the specialized positional parsers, using the same
// file-name side-table routing throughout. It implements both
// sampler.Reader and the file-reading half of a pid's lifecycle.
type Reader struct {
	ProcDir string
	CPUCount int
}

// NewReader returns a Reader rooted at the real /proc tree.
func NewReader(procDir string, cpuCount int) *Reader {
	if procDir == "" {
		procDir = "/proc"
	}
	return &Reader{ProcDir: procDir, CPUCount: cpuCount}
}

// ReadGlobal reads one global /proc/<name> entry, routing /proc/stat to
// the specialized per-CPU parser and everything else to the generic one.
func (r *Reader) ReadGlobal(entry catalog.ResolvedFile) (sample.Metrics, error) {
	if baseName(entry.Path) == fileNameStat {
		return ParseSystemStat(entry.Path, r.CPUCount)
	}
	parser := NewParser(delimiterFor(baseName(entry.Path)))
	return parser.Parse(entry.Path, entry.Tag, GlobalPID, GlobalPID, entry.Allow)
}

// ReadNode reads one per-NUMA-node /sys file entry.
func (r *Reader) ReadNode(entry catalog.ResolvedFile) (sample.Metrics, error) {
	parser := NewParser(delimiterFor(baseName(entry.Path)))
	return parser.Parse(entry.Path, entry.Tag, entry.Node, GlobalPID, entry.Allow)
}

// ReadPID reads one per-process /proc/<pid>/<file> entry, routing "stat"
// and "statm" to their specialized positional parsers.
func (r *Reader) ReadPID(pid int, file catalog.PIDFile) (sample.Metrics, error) {
	path := fmt.Sprintf("%s/%d/%s", r.ProcDir, pid, file.Name)
	switch file.Name {
	case fileNameStat:
		return ParseProcessStat(pid, path)
	case fileNameStatm:
		return ParseProcessStatm(pid, path)
	default:
		tag := catalog.NewPIDTag(pid, file.Name)
		parser := NewParser(delimiterFor(file.Name))
		return parser.Parse(path, tag, GlobalPID, pid, file.Allow)
	}
}

// ReadHugepage reads a one-shot hugepage file, never re-read after the
// initial collection. Hugepage file names never match the
// "numastat"/"vmstat" node-prefix rule, so no node hint is needed here.
// A file holding a single bare value yields one metric named after the file.
func (r *Reader) ReadHugepage(entry catalog.ResolvedHugepage) (sample.Metrics, error) {
	parser := NewParser("")
	metrics, err := parser.Parse(entry.Path, entry.Tag, GlobalPID, GlobalPID, nil)
	if err != nil || len(metrics) > 0 {
		return metrics, err
	}
	data, readErr := os.ReadFile(entry.Path)
	if value := strings.TrimSpace(string(data)); readErr == nil && value != "" {
		metrics[baseName(entry.Path)] = sample.ParseNumeric(value)
	}
	return metrics, nil
}
