// Package validator checks the JSON configuration tables (overrides, theme,
// blacklist) against embedded CUE schemas before they are decoded.
//
// A table that does not match its schema is a startup failure: decoding it
// anyway would silently drop misspelled keys and emit blocks with the
// default shapes.
package validator

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Schema definitions exposed by the embedded schema.
const (
	Overrides       = "#Overrides"
	LiteralTheme    = "#LiteralTheme"
	ProceduralTheme = "#ProceduralTheme"
	Blacklist       = "#Blacklist"
)

// Validator validates configuration documents against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded CUE schema
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
	defaultErr  error
)

// Default returns a lazily compiled shared Validator.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultV, defaultErr = New()
	})
	return defaultV, defaultErr
}

// ValidateJSON validates JSON bytes against the named schema definition.
func (v *Validator) ValidateJSON(definition string, jsonBytes []byte) error {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling JSON as CUE: %w", dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath(definition))
	if def.Err() != nil {
		return fmt.Errorf("looking up %s definition: %w", definition, def.Err())
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s validation failed: %s", definition, strings.Join(Messages(err), "; "))
	}

	return nil
}

// Messages flattens a CUE error into one message per underlying error.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	for _, e := range errors.Errors(err) {
		out = append(out, e.Error())
	}
	return out
}

// ValidateFile is a shorthand for Default().ValidateJSON.
func ValidateFile(definition string, jsonBytes []byte) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.ValidateJSON(definition, jsonBytes)
}
