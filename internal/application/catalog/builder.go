// Package catalog builds a concrete sampling catalog from a decoded spec and
// the host's NUMA topology.
package catalog

import (
	"fmt"

	"github.com/kodflow/syswit/internal/domain/catalog"
)

// defaultProcDir and defaultSysNodeDir are used when the Builder's ProcDir
// or SysNodeDir is empty; setting those fields lets tests point the builder
// at a fixture tree instead of the real /proc and /sys.
const (
	defaultProcDir = "/proc"
	defaultSysNodeDir = "/sys/devices/system/node"
)

// Builder expands a catalog.Spec into a catalog.Catalog for a host with a
// known number of NUMA nodes.
type Builder struct {
	ProcDir string
	SysNodeDir string
}

// NewBuilder returns a Builder rooted at the real /proc and /sys trees.
func NewBuilder() *Builder {
	return &Builder{ProcDir: defaultProcDir, SysNodeDir: defaultSysNodeDir}
}

// Build expands spec against numaNodes, producing concrete global and
// per-node entries plus the flattened one-shot hugepage table. Per-pid
// entries are carried through as templates: their tags are expanded fresh
// every tick from the live pid set.
func (b *Builder) Build(spec catalog.Spec, numaNodes int) catalog.Catalog {
	procDir := b.ProcDir
	if procDir == "" {
		procDir = defaultProcDir
	}
	sysNodeDir := b.SysNodeDir
	if sysNodeDir == "" {
		sysNodeDir = defaultSysNodeDir
	}

	out := catalog.Catalog{PIDFiles: spec.PIDFiles}

	for _, f := range spec.GlobalFiles {
		out.Global = append(out.Global, catalog.ResolvedFile{
			Tag: catalog.NewGlobalTag(f.Name),
			Path: fmt.Sprintf("%s/%s", procDir, f.Name),
			Allow: f.Allow,
			Node: -1,
		})
	}

	for node := 0; node < numaNodes; node++ {
		for _, f := range spec.NodeFiles {
			out.Node = append(out.Node, catalog.ResolvedFile{
				Tag: catalog.NewNodeTag(node, f.Name),
				Path: fmt.Sprintf("%s/node%d/%s", sysNodeDir, node, f.Name),
				Allow: f.Allow,
				Node: node,
			})
		}
		for _, hp := range spec.Hugepages {
			out.Hugepages = append(out.Hugepages, catalog.ResolvedHugepage{
				Tag: catalog.NewHugepageTag(node, hp.File, hp.Size),
				Path: fmt.Sprintf("%s/node%d/hugepages/hugepages-%skB/%s", sysNodeDir, node, hp.Size, hp.File),
			})
		}
	}

	return out
}
