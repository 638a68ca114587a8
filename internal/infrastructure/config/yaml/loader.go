// Package yaml provides the outer YAML loader for the collector-input
// config: it decodes a file into a catalog.Spec and is never
// imported by the collection packages, which accept the already-decoded Spec.
package yaml

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kodflow/syswit/internal/domain/catalog"
	"github.com/kodflow/syswit/internal/domain/shared"
)

// errNoSpecLoaded is returned by Reload when Load has never succeeded.
var errNoSpecLoaded = errors.New("no spec loaded")

// defaultPIDFiles are the per-pid files collected when the input config
// omits a pid section entirely, so per-process accounting is always on
// by default.
var defaultPIDFiles = []FileDTO{
	{Name: "stat"},
	{Name: "statm"},
}

// Loader loads a collector spec from a YAML file.
type Loader struct {
	lastPath string
	fs shared.FileSystem
}

// New creates a new YAML spec loader backed by the real filesystem.
//
// Returns:
// - *Loader: a new loader instance ready to load spec files
func New() *Loader {
	return &Loader{fs: shared.DefaultFileSystem}
}

// NewWithFileSystem creates a loader backed by fs, letting tests supply a
// fake without touching disk.
func NewWithFileSystem(fs shared.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads and parses a collector-input-config file from path.
//
// Params:
// - path: absolute or relative path to the YAML spec file
//
// Returns:
// - catalog.Spec: the decoded collector spec
// - error: any error during reading or parsing
func (l *Loader) Load(path string) (catalog.Spec, error) {
	data, err := l.fs.ReadFile(path) // #nosec G304 - config path is trusted input
	if err != nil {
		return catalog.Spec{}, fmt.Errorf("yaml: reading %s: %w", path, err)
	}
	spec, err := l.Parse(data)
	if err != nil {
		return catalog.Spec{}, err
	}
	l.lastPath = path
	return spec, nil
}

// Parse parses a collector spec from raw YAML bytes.
//
// Params:
// - data: raw YAML document bytes
//
// Returns:
// - catalog.Spec: the decoded collector spec
// - error: any error during parsing
func (l *Loader) Parse(data []byte) (catalog.Spec, error) {
	var dto SpecDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return catalog.Spec{}, fmt.Errorf("yaml: parsing spec: %w", err)
	}
	applyDefaults(&dto)
	return dto.ToDomain(), nil
}

// Reload reloads the spec from the last loaded path.
//
// Returns:
// - catalog.Spec: the reloaded collector spec
// - error: error if no spec was previously loaded, or reload fails
func (l *Loader) Reload() (catalog.Spec, error) {
	if l.lastPath == "" {
		return catalog.Spec{}, fmt.Errorf("yaml: %w", errNoSpecLoaded)
	}
	return l.Load(l.lastPath)
}

// applyDefaults fills in the always-on per-pid accounting files when the
// input config's pid section is empty.
func applyDefaults(dto *SpecDTO) {
	if len(dto.PID) == 0 {
		dto.PID = defaultPIDFiles
	}
}
