package meta

import (
	"github.com/kipr/kipr-scratch/internal/codegen/ctypes"
	"github.com/kipr/kipr-scratch/internal/codegen/overrides"
	"github.com/kipr/kipr-scratch/internal/codegen/theme"
)

// Parameter is a single positional argument of a bound C function.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"` // raw C type token as emitted by SWIG
}

// IsNumeric reports whether the parameter type has a numeric field descriptor.
func (p Parameter) IsNumeric() bool {
	_, ok := ctypes.Classify(p.Type)
	return ok
}

// Function is one cdecl extracted from a header include.
type Function struct {
	Name       string      `json:"name"`
	ReturnType string      `json:"returnType"`
	Parameters []Parameter `json:"parameters"`
}

// Module groups the functions of one libwallaby header (e.g. "analog" for analog.h).
type Module struct {
	Name      string     `json:"name"`
	Functions []Function `json:"functions"`
}

// Catalog is the binding catalog extracted from the SWIG XML document.
// Module order follows document order.
type Catalog struct {
	Modules []Module `json:"modules"`
}

// Module returns the module with the given name.
func (c *Catalog) Module(name string) (*Module, bool) {
	for i := range c.Modules {
		if c.Modules[i].Name == name {
			return &c.Modules[i], true
		}
	}
	return nil, false
}

// FunctionCount returns the number of functions across all modules.
func (c *Catalog) FunctionCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Functions)
	}
	return n
}

// Blacklist maps a module name to function names left out of the toolbox.
// Blacklisted functions still get block definitions and messages.
type Blacklist map[string][]string

// Contains reports whether module.function is blacklisted.
func (b Blacklist) Contains(module, function string) bool {
	for _, f := range b[module] {
		if f == function {
			return true
		}
	}
	return false
}

// SkippedFunction records a function dropped from the block output because
// one of its parameters has no numeric field descriptor.
type SkippedFunction struct {
	Module    string `json:"module"`
	Function  string `json:"function"`
	Parameter string `json:"parameter"`
	Type      string `json:"type"`
}

// UnsupportedParameter returns the first parameter of fn without a numeric
// field descriptor. Such a function cannot be turned into a block.
func UnsupportedParameter(fn *Function) (*Parameter, bool) {
	for i := range fn.Parameters {
		if !fn.Parameters[i].IsNumeric() {
			return &fn.Parameters[i], true
		}
	}
	return nil, false
}

// Artifact is one rendered file, held in memory until the run writes it.
type Artifact struct {
	Name    string // file name relative to its destination directory
	Content []byte
}

// Metadata holds everything an emitter needs for one run.
// Shared between generator orchestrator and artifact generators; read-only once built.
type Metadata struct {
	Catalog   *Catalog
	Whitelist []string
	Overrides *overrides.Table
	Theme     *theme.Theme
	Blacklist Blacklist
}

// Whitelisted returns the whitelisted modules present in the catalog, in catalog order.
func (md *Metadata) Whitelisted() []*Module {
	allowed := make(map[string]bool, len(md.Whitelist))
	for _, name := range md.Whitelist {
		allowed[name] = true
	}
	var out []*Module
	for i := range md.Catalog.Modules {
		if allowed[md.Catalog.Modules[i].Name] {
			out = append(out, &md.Catalog.Modules[i])
		}
	}
	return out
}

// Skipped lists every whitelisted function that cannot become a block.
func (md *Metadata) Skipped() []SkippedFunction {
	var out []SkippedFunction
	for _, m := range md.Whitelisted() {
		for i := range m.Functions {
			fn := &m.Functions[i]
			if p, bad := UnsupportedParameter(fn); bad {
				out = append(out, SkippedFunction{Module: m.Name, Function: fn.Name, Parameter: p.Name, Type: p.Type})
			}
		}
	}
	return out
}

// DefaultWhitelist lists the libwallaby modules that get blocks by default.
var DefaultWhitelist = []string{
	"analog",
	"digital",
	"motor",
	"servo",
	"button",
	"time",
	"accel",
	"gyro",
	"magneto",
	"battery",
	"audio",
	"wait_for",
}
