package procfs

// delimiterTable is the metric-separator side table: it maps a
// file's base name to the delimiter the generic parser should split each
// line on. Files not listed default to whitespace-run splitting, which
// covers most single-line /proc and /sys key/value files.
var delimiterTable = map[string]string{
	"meminfo": ":",
	"cpuinfo": ":",
}

// delimiterFor returns the configured delimiter for fileName, or the
// empty string (whitespace-run splitting) if none is configured.
func delimiterFor(fileName string) string {
	if d, ok := delimiterTable[fileName]; ok {
		return d
	}
	return ""
}

// fileNameStat and fileNameStatm name the files routed to a positional parser instead
// of the generic delimiter-driven one.
const (
	fileNameStat = "stat"
	fileNameStatm = "statm"
)
