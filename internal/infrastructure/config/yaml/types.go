package yaml

import (
	"strings"

	"github.com/kodflow/syswit/internal/domain/catalog"
)

// FileDTO is the on-disk shape of one collected file entry: a name and an
// optional comma-separated allow-list (or the sentinel "all").
type FileDTO struct {
	Name string `yaml:"name"`
	Allow string `yaml:"allow"`
}

// ToDomain converts f into its allow-list form, splitting the
// comma-separated Allow string.
//
// Returns:
// - catalog.AllowList: the parsed allow-list, or nil if Allow permits
// everything
func (f FileDTO) ToDomain() catalog.AllowList {
	// Treat an unset or "all" allow string as permitting everything.
	if f.Allow == "" || f.Allow == catalog.AllowAll {
		return nil
	}
	parts := strings.Split(f.Allow, ",")
	list := make(catalog.AllowList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			list = append(list, p)
		}
	}
	return list
}

// HugepageDTO is one hugepage file/size pair, read once per run.
type HugepageDTO struct {
	File string `yaml:"file"`
	Size string `yaml:"size"`
}

// SpecDTO is the root YAML document shape: global /proc files,
// per-NUMA sys files, per-pid file templates, and hugepage entries.
type SpecDTO struct {
	Global []FileDTO `yaml:"global"`
	Node []FileDTO `yaml:"node"`
	PID []FileDTO `yaml:"pid"`
	Hugepages []HugepageDTO `yaml:"hugepages"`
}

// ToDomain converts the decoded DTO tree into a catalog.Spec, the form
// the collection pipeline accepts.
//
// Returns:
// - catalog.Spec: the fully decoded collector spec
func (s SpecDTO) ToDomain() catalog.Spec {
	spec := catalog.Spec{
		GlobalFiles: make([]catalog.GlobalFile, 0, len(s.Global)),
		NodeFiles: make([]catalog.NodeFile, 0, len(s.Node)),
		PIDFiles: make([]catalog.PIDFile, 0, len(s.PID)),
		Hugepages: make([]catalog.Hugepage, 0, len(s.Hugepages)),
	}
	for _, f := range s.Global {
		spec.GlobalFiles = append(spec.GlobalFiles, catalog.GlobalFile{Name: f.Name, Allow: f.ToDomain()})
	}
	for _, f := range s.Node {
		spec.NodeFiles = append(spec.NodeFiles, catalog.NodeFile{Name: f.Name, Allow: f.ToDomain()})
	}
	for _, f := range s.PID {
		spec.PIDFiles = append(spec.PIDFiles, catalog.PIDFile{Name: f.Name, Allow: f.ToDomain()})
	}
	for _, h := range s.Hugepages {
		spec.Hugepages = append(spec.Hugepages, catalog.Hugepage{File: h.File, Size: h.Size})
	}
	return spec
}
