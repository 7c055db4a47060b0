package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/kipr/kipr-scratch/internal/codegen/common"
	"github.com/kipr/kipr-scratch/internal/codegen/ctypes"
	"github.com/kipr/kipr-scratch/internal/codegen/meta"
)

const (
	ShapeStatement = "shape_statement"
	OutputNumber   = "output_number"
)

const blockFileTemplate = `{{.Header}}
'use strict';

goog.provide('Blockly.Blocks.{{.Module}}');

goog.require('Blockly.Blocks');
goog.require('Blockly.Colours');
goog.require('Blockly.constants');
goog.require('Blockly.ScratchBlocks.VerticalExtensions');
{{range .Blocks}}
Blockly.Blocks[{{json .ID}}] = {
  init: function() {
    this.jsonInit({
      "message0": Blockly.Msg.{{.MessageKey}},
{{- if .Args}}
      "args0": [
{{- range $i, $a := .Args}}{{if $i}},{{end}}
        {
          "type": "input_value",
          "name": {{json $a.Name}}{{if $a.Check}},
          "check": {{json $a.Check}}{{end}}
        }
{{- end}}
      ],
      "tooltip": [{{range $i, $a := .Args}}{{if $i}}, {{end}}Blockly.Msg.{{$a.LabelKey}}{{end}}].join(', '),
{{- end}}
      "category": {{json .Category}},
      "extensions": [{{json .Colour}}, {{json .Shape}}]
    });
  }
};
{{end}}`

var blockFileTmpl = template.Must(template.New("blocks").Funcs(template.FuncMap{
	"json": jsonValue,
}).Parse(blockFileTemplate))

type blockArg struct {
	Name     string
	Check    string
	LabelKey string
}

type blockDef struct {
	ID         string
	MessageKey string
	Args       []blockArg
	Category   string
	Colour     string
	Shape      string
}

// Shape returns the output-shape extension of fn: the override tag when one
// is configured, otherwise shape_statement for void functions and
// output_number for everything else.
func Shape(md *meta.Metadata, fn *meta.Function) string {
	if tag, ok := md.Overrides.ReturnType(fn.Name); ok {
		return tag
	}
	if ctypes.IsVoid(fn.ReturnType) {
		return ShapeStatement
	}
	return OutputNumber
}

// FileName is the artifact name of a module's block file.
func FileName(module string) string { return module + ".js" }

// Render produces the block-definition file of one module. Functions with a
// parameter the type classifier rejects are left out and returned as skipped.
func Render(md *meta.Metadata, module *meta.Module) (meta.Artifact, []meta.SkippedFunction, error) {
	var (
		defs    []blockDef
		skipped []meta.SkippedFunction
	)
	for i := range module.Functions {
		fn := &module.Functions[i]
		if p, bad := meta.UnsupportedParameter(fn); bad {
			skipped = append(skipped, meta.SkippedFunction{
				Module:    module.Name,
				Function:  fn.Name,
				Parameter: p.Name,
				Type:      p.Type,
			})
			continue
		}
		def := blockDef{
			ID:         common.BlockID(module.Name, fn.Name),
			MessageKey: common.MessageKey(module.Name, fn.Name),
			Category:   module.Name,
			Colour:     common.ColourExtension(module.Name),
			Shape:      Shape(md, fn),
		}
		for idx, p := range fn.Parameters {
			arg := blockArg{
				Name:     common.InputName(p.Name),
				LabelKey: common.ParameterMessageKey(module.Name, fn.Name, p.Name),
			}
			if check, ok := md.Overrides.ParameterCheck(fn.Name, idx); ok {
				arg.Check = check
			}
			def.Args = append(def.Args, arg)
		}
		defs = append(defs, def)
	}

	name := FileName(module.Name)
	var buf bytes.Buffer
	data := struct {
		Header string
		Module string
		Blocks []blockDef
	}{
		Header: common.FileHeader("//", name),
		Module: module.Name,
		Blocks: defs,
	}
	if err := blockFileTmpl.Execute(&buf, data); err != nil {
		return meta.Artifact{}, nil, fmt.Errorf("execute block template for %s: %w", module.Name, err)
	}
	return meta.Artifact{Name: name, Content: buf.Bytes()}, skipped, nil
}

// Generate renders one block file per whitelisted module present in the
// catalog and logs a warning for every function it had to leave out.
func Generate(logger *slog.Logger, md *meta.Metadata) ([]meta.Artifact, []meta.SkippedFunction, error) {
	var (
		artifacts []meta.Artifact
		skipped   []meta.SkippedFunction
	)
	for _, module := range md.Whitelisted() {
		logger.Debug("Generating block definitions", "module", module.Name, "functions", len(module.Functions))
		art, sk, err := Render(md, module)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range sk {
			logger.Warn("Skipping function with unsupported parameter type",
				"module", s.Module,
				"function", s.Function,
				"parameter", s.Parameter,
				"type", s.Type)
		}
		artifacts = append(artifacts, art)
		skipped = append(skipped, sk...)
	}
	logger.Info("Generated block definitions", "files", len(artifacts), "skipped", len(skipped))
	return artifacts, skipped, nil
}

func jsonValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
