// Package overrides resolves per-function block shape overrides.
//
// The table is a JSON object keyed by C function name:
//
//	{
//	  "digital": {
//	    "return_type": "output_boolean",
//	    "parameters": {"0": {"check": "Boolean"}}
//	  }
//	}
package overrides

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/kipr/kipr-scratch/internal/validator"
)

// BooleanCheck is the connection check that selects a boolean shadow in the toolbox.
const BooleanCheck = "Boolean"

// ParameterOverride constrains what can be plugged into one input slot.
type ParameterOverride struct {
	Check string `json:"check,omitempty"`
}

// Record holds the overrides for one function.
type Record struct {
	ReturnType string                       `json:"return_type,omitempty"`
	Parameters map[string]ParameterOverride `json:"parameters,omitempty"`
}

// Table is the read-only override table for a run.
type Table struct {
	records map[string]Record
}

// New builds a table from already decoded records.
func New(records map[string]Record) *Table {
	if records == nil {
		records = map[string]Record{}
	}
	return &Table{records: records}
}

// Parse validates and decodes an override document.
func Parse(data []byte) (*Table, error) {
	if err := validator.ValidateFile(validator.Overrides, data); err != nil {
		return nil, err
	}
	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	return New(records), nil
}

// Load reads the override table at path. A missing or malformed file is an error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load overrides %s: %w", path, err)
	}
	return t, nil
}

// ReturnType returns the output shape tag that replaces the default void/number rule.
func (t *Table) ReturnType(function string) (string, bool) {
	if t == nil {
		return "", false
	}
	r, ok := t.records[function]
	if !ok || r.ReturnType == "" {
		return "", false
	}
	return r.ReturnType, true
}

// ParameterCheck returns the required connection type for the parameter at index.
func (t *Table) ParameterCheck(function string, index int) (string, bool) {
	if t == nil {
		return "", false
	}
	r, ok := t.records[function]
	if !ok {
		return "", false
	}
	p, ok := r.Parameters[strconv.Itoa(index)]
	if !ok || p.Check == "" {
		return "", false
	}
	return p.Check, true
}

// Len returns the number of functions with an entry.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}
