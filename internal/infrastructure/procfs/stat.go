package procfs

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/kodflow/syswit/internal/domain/sample"
)

// CPUFieldSchema is the fixed column order of /proc/stat's per-cpu lines
// after the leading "cpu"/"cpuN" label, provided via configuration so the
// field vector can be built without hardcoding kernel version assumptions.
var CPUFieldSchema = []string{
	"user", "nice", "system", "idle", "iowait",
	"irq", "softirq", "steal", "guest", "guest_nice",
}

// Sentinel errors for the positional /proc/stat and /proc/<pid>/stat
// parsers.
var (
	ErrStatOpenFailed = errors.New("procfs: opening stat file failed")
	ErrInvalidStatLine = errors.New("procfs: malformed stat line")
	ErrProcessStatShape = errors.New("procfs: unexpected /proc/<pid>/stat shape")
)

// /proc/<pid>/stat field indices counted from the field immediately after
// the parenthesized command name (so index 0 is "state").
const (
	pidStatUTime = 11
	pidStatSTime = 12
	pidStatCUTime = 13
	pidStatCSTime = 14
	pidStatStartTime = 19
	pidStatMinFields = 20
)

var pidStatFieldNames = map[int]string{
	pidStatUTime: "utime",
	pidStatSTime: "stime",
	pidStatCUTime: "cutime",
	pidStatCSTime: "cstime",
	pidStatStartTime: "starttime",
}

// ParseSystemStat reads /proc/stat, producing one metric per (cpu-line,
// column) pair named "CPU <metric>" for the aggregate line and
// "CPU <n> <metric>" for each per-core line, per the precomputed field
// vector built from CPUFieldSchema. cpuCount bounds how many
// "cpuN" lines are read; the aggregate "cpu " line is always read first.
func ParseSystemStat(path string, cpuCount int) (sample.Metrics, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sample.Metrics{}, nil
		}
		return nil, errWrap(ErrStatOpenFailed, path, err)
	}
	defer f.Close()

	out := sample.Metrics{}
	scanner := bufio.NewScanner(f)
	linesWanted := cpuCount + 1
	lineIdx := 0

	for scanner.Scan() && lineIdx < linesWanted {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "cpu") {
			continue
		}
		label := "CPU"
		if lineIdx > 0 {
			label = "CPU " + strconv.Itoa(lineIdx-1)
		}
		columns := fields[1:]
		for i, name := range CPUFieldSchema {
			if i >= len(columns) {
				break
			}
			out[label+" "+name] = sample.ParseNumeric(columns[i])
		}
		lineIdx++
	}
	return out, nil
}

// ParseProcessStat reads /proc/<pid>/stat, extracting the timing fields
// used for CPU accounting and prefixing each metric name with the pid.
// A missing process yields an empty Metrics map rather than an error,
// matching the "process vanished mid-read" tolerance used throughout.
func ParseProcessStat(pid int, path string) (sample.Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sample.Metrics{}, nil
		}
		return nil, errWrap(ErrStatOpenFailed, path, err)
	}

	text := string(data)
	start := strings.IndexByte(text, '(')
	end := strings.LastIndexByte(text, ')')
	if start < 0 || end < 0 || end <= start {
		return nil, errWrap(ErrInvalidStatLine, path, errors.New("no parenthesized comm field"))
	}

	rest := strings.Fields(text[end+2:])
	if len(rest) < pidStatMinFields {
		return nil, errWrap(ErrProcessStatShape, path, errors.New("too few fields"))
	}

	prefix := strconv.Itoa(pid) + " "
	out := sample.Metrics{}
	for i, name := range pidStatFieldNames {
		if i < 0 || i >= len(rest) {
			continue
		}
		out[prefix+name] = sample.ParseNumeric(rest[i])
	}
	return out, nil
}

// /proc/<pid>/statm columns, in order.
var statmFieldNames = []string{"size", "resident", "shared", "text", "lib", "data", "dt"}

// ParseProcessStatm reads /proc/<pid>/statm, a single line of
// whitespace-separated page counts, prefixing each metric with the pid.
func ParseProcessStatm(pid int, path string) (sample.Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sample.Metrics{}, nil
		}
		return nil, errWrap(ErrStatOpenFailed, path, err)
	}

	fields := strings.Fields(string(data))
	prefix := strconv.Itoa(pid) + " "
	out := sample.Metrics{}
	for i, name := range statmFieldNames {
		if i >= len(fields) {
			break
		}
		out[prefix+name] = sample.ParseNumeric(fields[i])
	}
	return out, nil
}
