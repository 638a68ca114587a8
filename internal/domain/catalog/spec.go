package catalog

// AllowList restricts which metric base-names a parser emits for one file.
// A nil or empty AllowList is treated as AllowAll.
type AllowList []string

// Permits reports whether metric is allowed. An empty list, or a list
// containing the AllowAll sentinel, permits everything.
func (a AllowList) Permits(metric string) bool {
	if len(a) == 0 {
		return true
	}
	for _, m := range a {
		if m == AllowAll {
			return true
		}
		if m == metric {
			return true
		}
	}
	return false
}

// GlobalFile names one /proc/<name> file collected once per tick, globally.
type GlobalFile struct {
	Name  string
	Allow AllowList
}

// NodeFile names one /sys/devices/system/node/node<N>/<name> file,
// collected once per tick for every NUMA node.
type NodeFile struct {
	Name  string
	Allow AllowList
}

// PIDFile is a per-pid file template: the concrete tag is expanded per tick
// for every pid currently in the live set.
type PIDFile struct {
	Name  string
	Allow AllowList
}

// Hugepage names one hugepage file, read once for the lifetime of the run
// rather than on every tick, for every configured node/size combination.
type Hugepage struct {
	File string
	Size string
}

// Spec is the fully decoded, validated input to a collection run: the set
// of files to sample, independent of how many NUMA nodes or pids actually
// exist at runtime (that expansion happens when the catalog is built).
type Spec struct {
	GlobalFiles []GlobalFile
	NodeFiles   []NodeFile
	PIDFiles    []PIDFile
	Hugepages   []Hugepage
}

// Catalog is a Spec expanded against a concrete NUMA topology: global and
// per-node entries are resolved to their final Tag, and one-shot hugepage
// entries are flattened across node × size × file. Per-pid entries remain
// templates (PIDFiles) because the live pid set changes every tick.
type Catalog struct {
	Global    []ResolvedFile
	Node      []ResolvedFile
	PIDFiles  []PIDFile
	Hugepages []ResolvedHugepage
}

// ResolvedFile pairs a concrete Tag with the filesystem path and allow-list
// needed to sample it. Node is the NUMA node index for ShapeNodeSys
// entries, or -1 for global entries; it saves the reader from re-parsing
// the node number back out of the Tag string.
type ResolvedFile struct {
	Tag   Tag
	Path  string
	Allow AllowList
	Node  int
}

// ResolvedHugepage pairs a concrete hugepage Tag with its path; it is read
// exactly once per run.
type ResolvedHugepage struct {
	Tag  Tag
	Path string
}
