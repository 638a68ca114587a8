// Package merged writes an aggregator MergedResult to its final on-disk
// forms: the consolidated result file, and the offset_primary.json/
// offset.json side-cars.
package merged

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kodflow/syswit/internal/domain/aggregate"
	"github.com/kodflow/syswit/internal/domain/sample"
)

const (
	offsetPrimaryFileName = "offset_primary.json"
	offsetFileName = "offset.json"
)

// tagEntry is the legacy two-element-list shape a SourceTag's entry takes
// in the consolidated output: [metrics_dense, {offset_value:...}].
type tagEntry [2]any

type offsetValueWrapper struct {
	OffsetValue map[string]sample.Value `json:"offset_value"`
}

// ResultPath returns the path of the consolidated result file for the
// given output base name (without extension).
func ResultPath(dir, outputName string) string {
	return filepath.Join(dir, outputName+".json")
}

// Write serializes result to dir/outputName.json plus its offset
// side-cars, following the legacy consolidated-output shape.
func Write(dir, outputName string, result *aggregate.MergedResult) error {
	out := make(map[string]any, len(result.Tags)+4)
	out["timestamps"] = result.TimestampsSorted
	out["all_pids"] = result.AllPIDs
	if result.SystemConfig != nil {
		out["system_configuration"] = []sample.SystemConfiguration{*result.SystemConfig}
	}

	offsetPrimary := make(map[string]map[string]sample.Value, len(result.Tags))
	offsetability := make(map[string]map[string]bool, len(result.Tags))

	for _, tag := range result.Tags {
		offsetableValues := make(map[string]sample.Value)
		for metric, offsetable := range tag.OffsetableKeys {
			if offsetable {
				offsetableValues[metric] = tag.OffsetPrimary[metric]
			}
		}
		out[tag.Tag] = tagEntry{tag.MetricsDense, offsetValueWrapper{OffsetValue: offsetableValues}}
		offsetPrimary[tag.Tag] = tag.OffsetPrimary
		offsetability[tag.Tag] = tag.OffsetableKeys
	}

	if err := writeJSON(ResultPath(dir, outputName), out); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, offsetPrimaryFileName), offsetPrimary); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, offsetFileName), offsetability); err != nil {
		return err
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return fmt.Errorf("merged: marshaling %s: %w", path, err)
	}
	// nosemgrep: go.lang.correctness.permissions.file_permission.incorrect-default-permission
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("merged: writing %s: %w", path, err)
	}
	return nil
}
