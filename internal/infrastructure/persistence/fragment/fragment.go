// Package fragment serializes and deserializes BufferSlice fragments to
// the on-disk tmpresult_<N>.json format, preserving the legacy
// single-element-list container shape at the serialization
// boundary only.
package fragment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kodflow/syswit/internal/domain/sample"
)

// FragmentFilePrefix names every transient fragment file.
const FragmentFilePrefix = "tmpresult_"

const (
	keyTimestamps = "timestamps"
	keyAllPIDs = "all_pids"
	keySystemConfig = "system_configuration"
	keySamplePeriod = "sample_period"
	keyNrSamples = "nr_samples"
)

// WritePath returns the path for the given fragment counter under dir.
func WritePath(dir string, counter int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d.json", FragmentFilePrefix, counter))
}

// Write serializes buf to path in the legacy container shape.
func Write(path string, buf *sample.Buffer) error {
	out := make(map[string]any)
	out[keyTimestamps] = buf.Timestamps
	if len(buf.AllPIDs) > 0 {
		out[keyAllPIDs] = buf.AllPIDs
	}
	if buf.SystemConfiguration != nil {
		out[keySystemConfig] = []sample.SystemConfiguration{*buf.SystemConfiguration}
	}
	out[keySamplePeriod] = buf.SamplePeriod
	out[keyNrSamples] = buf.NrSamples

	for _, tag := range buf.Tags() {
		series := buf.Series(tag).Snapshot()
		out[tag] = [1]map[string]sample.Metrics{series}
	}

	data, err := json.MarshalIndent(out, "", " ")
	if err != nil {
		return fmt.Errorf("fragment: marshaling %s: %w", path, err)
	}
	// nosemgrep: go.lang.correctness.permissions.file_permission.incorrect-default-permission
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("fragment: writing %s: %w", path, err)
	}
	return nil
}

// Raw is the deserialized form of one fragment file: meta fields plus the
// per-tag timestamp-to-metrics maps, unwrapped from their one-element list
// container.
type Raw struct {
	Timestamps []string
	AllPIDs []int
	SystemConfiguration *sample.SystemConfiguration
	SamplePeriod float64
	NrSamples int
	Tags map[string]map[string]sample.Metrics
}

// Read deserializes a fragment file written by Write.
func Read(path string) (*Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fragment: reading %s: %w", path, err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("fragment: parsing %s: %w", path, err)
	}

	out := &Raw{Tags: make(map[string]map[string]sample.Metrics)}
	for key, raw := range generic {
		switch key {
		case keyTimestamps:
			if err := json.Unmarshal(raw, &out.Timestamps); err != nil {
				return nil, fmt.Errorf("fragment: parsing timestamps in %s: %w", path, err)
			}
		case keyAllPIDs:
			if err := json.Unmarshal(raw, &out.AllPIDs); err != nil {
				return nil, fmt.Errorf("fragment: parsing all_pids in %s: %w", path, err)
			}
		case keySystemConfig:
			var list []sample.SystemConfiguration
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, fmt.Errorf("fragment: parsing system_configuration in %s: %w", path, err)
			}
			if len(list) > 0 {
				out.SystemConfiguration = &list[0]
			}
		case keySamplePeriod:
			if err := json.Unmarshal(raw, &out.SamplePeriod); err != nil {
				return nil, fmt.Errorf("fragment: parsing sample_period in %s: %w", path, err)
			}
		case keyNrSamples:
			if err := json.Unmarshal(raw, &out.NrSamples); err != nil {
				return nil, fmt.Errorf("fragment: parsing nr_samples in %s: %w", path, err)
			}
		default:
			var wrapped [1]map[string]sample.Metrics
			if err := json.Unmarshal(raw, &wrapped); err != nil {
				return nil, fmt.Errorf("fragment: parsing tag %s in %s: %w", key, path, err)
			}
			out.Tags[key] = wrapped[0]
		}
	}
	return out, nil
}

// ListFragments returns every tmpresult_*.json path under dir, sorted
// lexicographically by path (so tmpresult_10.json sorts before
// tmpresult_2.json).
func ListFragments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fragment: reading %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), FragmentFilePrefix) && strings.HasSuffix(e.Name(), ".json") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes every fragment in paths, continuing past individual
// failures and returning the first error encountered, if any.
func Delete(paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("fragment: deleting %s: %w", p, err)
		}
	}
	return firstErr
}
