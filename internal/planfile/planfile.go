// Package planfile loads and saves execution plans as JSON or YAML
// documents, using the plan's wire field names. Loading normalizes the plan:
// missing IDs are generated, statuses default to pending, and risk levels
// are validated against the closed enum.
package planfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskforge-dev/taskforge/internal/task"
)

// Load reads a plan from path. The format follows the file extension:
// .yaml/.yml is YAML, everything else is JSON. Unknown fields are rejected
// in both formats to avoid silent divergence from the wire schema.
func Load(path string) (*task.ExecutionPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	var plan *task.ExecutionPlan
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		plan, err = decodeYAML(data)
	default:
		plan, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", filepath.Base(path), err)
	}

	if err := plan.Normalize(); err != nil {
		return nil, fmt.Errorf("normalizing plan: %w", err)
	}
	return plan, nil
}

func decodeJSON(data []byte) (*task.ExecutionPlan, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var plan task.ExecutionPlan
	if err := dec.Decode(&plan); err != nil {
		return nil, err
	}
	// Reject trailing data, including a second JSON document.
	if err := dec.Decode(new(any)); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("trailing data after plan document")
		}
		return nil, err
	}
	return &plan, nil
}

func decodeYAML(data []byte) (*task.ExecutionPlan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var plan task.ExecutionPlan
	if err := dec.Decode(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Save writes the plan to path, choosing the format by extension the same
// way Load does. JSON output is indented for direct human inspection.
func Save(plan *task.ExecutionPlan, path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(plan)
	default:
		data, err = json.MarshalIndent(plan, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}
