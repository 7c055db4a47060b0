package scanner

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kipr/kipr-scratch/internal/codegen/meta"
)

// BindingPath returns the location of the SWIG XML binding inside a libwallaby build tree.
func BindingPath(buildRoot string) string {
	return filepath.Join(buildRoot, "binding", "xml", "kipr.xml")
}

// ShapeError reports that the XML document does not follow the nesting
// convention produced by SWIG. It aborts generation.
type ShapeError struct {
	Path   string // element path, e.g. "include[1]/include[4]/include/cdecl[2]"
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected binding XML shape at %s: %s", e.Path, e.Reason)
}

func shapeErr(p, format string, args ...any) error {
	return &ShapeError{Path: p, Reason: fmt.Sprintf(format, args...)}
}

// ScanBindingXML reads the binding document at xmlPath and extracts the catalog.
func ScanBindingXML(logger *slog.Logger, xmlPath string) (*meta.Catalog, error) {
	f, err := os.Open(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("open binding XML: %w", err)
	}
	defer f.Close()

	return ParseBinding(logger, f)
}

// ParseBinding extracts the binding catalog from a SWIG XML document.
//
// Layout:
//   - the second top-level include is the %module include
//   - each of its include children is one binding (.i) file
//   - a binding include has (generally) one child include for the real header
//   - the header include holds one cdecl per function
func ParseBinding(logger *slog.Logger, r io.Reader) (*meta.Catalog, error) {
	root, err := DecodeTree(r)
	if err != nil {
		return nil, err
	}

	top := root.FindAll("include")
	if len(top) < 2 {
		return nil, shapeErr(root.Tag(), "expected at least 2 top-level include nodes, found %d", len(top))
	}
	moduleRoot := top[1]

	catalog := &meta.Catalog{}
	seen := map[string]string{}

	for i, candidate := range moduleRoot.FindAll("include") {
		where := fmt.Sprintf("include[1]/include[%d]", i)

		header := candidate.Find("include")
		if header == nil {
			logger.Debug("Skipping forwarding include", "path", where)
			continue
		}
		where += "/include"

		module, err := scanHeader(logger, header, where)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[module.Name]; dup {
			return nil, shapeErr(where, "duplicate module %q (first seen at %s)", module.Name, prev)
		}
		seen[module.Name] = where

		logger.Debug("Scanned module", "module", module.Name, "functions", len(module.Functions))
		catalog.Modules = append(catalog.Modules, module)
	}

	return catalog, nil
}

func scanHeader(logger *slog.Logger, header *Node, where string) (meta.Module, error) {
	attrs, ok := Attributes(header)
	if !ok {
		return meta.Module{}, shapeErr(where, "header include has no attributelist")
	}
	name, err := moduleName(attrs["name"])
	if err != nil {
		return meta.Module{}, shapeErr(where, "%v", err)
	}

	module := meta.Module{Name: name}
	seen := map[string]bool{}

	for i, decl := range header.FindAll("cdecl") {
		declPath := fmt.Sprintf("%s/cdecl[%d]", where, i)
		fn, err := scanFunction(logger, decl, declPath)
		if err != nil {
			return meta.Module{}, err
		}
		if seen[fn.Name] {
			return meta.Module{}, shapeErr(declPath, "duplicate function %q in module %q", fn.Name, name)
		}
		seen[fn.Name] = true
		module.Functions = append(module.Functions, fn)
	}
	return module, nil
}

func scanFunction(logger *slog.Logger, decl *Node, where string) (meta.Function, error) {
	attrList := decl.Find("attributelist")
	if attrList == nil {
		return meta.Function{}, shapeErr(where, "cdecl has no attributelist")
	}
	attrs, _ := Attributes(attrList)

	name, ok := attrs["name"]
	if !ok || name == "" {
		return meta.Function{}, shapeErr(where, "cdecl without a name attribute")
	}
	returnType, ok := attrs["type"]
	if !ok {
		return meta.Function{}, shapeErr(where, "cdecl %q without a type attribute", name)
	}

	fn := meta.Function{Name: name, ReturnType: returnType}

	parmList := attrList.Find("parmlist")
	if parmList == nil {
		return fn, nil
	}

	seen := map[string]bool{}
	for i, parm := range parmList.FindAll("parm") {
		parmAttrs, ok := Attributes(parm)
		pName := parmAttrs["name"]
		if !ok || pName == "" {
			// Unnamed and variadic placeholders carry no usable label.
			logger.Debug("Skipping unnamed parameter", "function", name, "index", i)
			continue
		}
		pType, ok := parmAttrs["type"]
		if !ok {
			return meta.Function{}, shapeErr(fmt.Sprintf("%s/parm[%d]", where, i), "parameter %q of %q has no type", pName, name)
		}
		if seen[pName] {
			return meta.Function{}, shapeErr(fmt.Sprintf("%s/parm[%d]", where, i), "duplicate parameter %q in %q", pName, name)
		}
		seen[pName] = true
		fn.Parameters = append(fn.Parameters, meta.Parameter{Name: pName, Type: pType})
	}
	return fn, nil
}

// moduleName derives "analog" from "/src/libwallaby/module/analog/public/kipr/analog/analog.h".
func moduleName(headerPath string) (string, error) {
	if headerPath == "" {
		return "", fmt.Errorf("header include without a name attribute")
	}
	base := path.Base(strings.ReplaceAll(headerPath, `\`, "/"))
	if len(base) <= 2 || !strings.HasSuffix(base, ".h") {
		return "", fmt.Errorf("header name %q does not end in .h", headerPath)
	}
	return base[:len(base)-2], nil
}
