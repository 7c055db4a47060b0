package toolbox

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/template"

	"github.com/kipr/kipr-scratch/internal/codegen/common"
	"github.com/kipr/kipr-scratch/internal/codegen/ctypes"
	"github.com/kipr/kipr-scratch/internal/codegen/meta"
	"github.com/kipr/kipr-scratch/internal/codegen/overrides"
)

const FileName = "default_toolbox.js"

const (
	BooleanShadow = "kipr_boolean"
	NumberShadow  = "math_number"
)

const toolboxTemplate = `{{.Header}}
'use strict';

goog.provide('Blockly.Blocks.defaultToolbox');

goog.require('Blockly.Blocks');

Blockly.Blocks.defaultToolbox = {{js .Open}} +
{{- range .Lines}}
  {{js .}} +
{{- end}}
  {{js .Close}};
`

var toolboxTmpl = template.Must(template.New("toolbox").Funcs(template.FuncMap{
	"js": common.JSString,
}).Parse(toolboxTemplate))

// staticCategories are appended after the generated categories.
const staticCategories = `
<category name="Control" id="control" colour="#FFAB19" secondaryColour="#CF8B17">
  <block type="control_start"></block>
  <block type="control_wait">
    <value name="DURATION">
      <shadow type="math_positive_number">
        <field name="NUM">1</field>
      </shadow>
    </value>
  </block>
  <block type="control_repeat">
    <value name="TIMES">
      <shadow type="math_whole_number">
        <field name="NUM">10</field>
      </shadow>
    </value>
  </block>
  <block type="control_forever"></block>
  <block type="control_if"></block>
  <block type="control_if_else"></block>
  <block type="control_wait_until"></block>
  <block type="control_repeat_until"></block>
  <block type="control_start_as_clone"></block>
  <block type="control_create_clone_of">
    <value name="CLONE_OPTION">
      <shadow type="control_create_clone_of_menu"></shadow>
    </value>
  </block>
  <block type="control_delete_this_clone"></block>
</category>
<category name="Operators" id="operators" colour="#40BF4A" secondaryColour="#389438">
  <block type="operator_add">
    <value name="NUM1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="NUM2">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
  </block>
  <block type="operator_subtract">
    <value name="NUM1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="NUM2">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
  </block>
  <block type="operator_multiply">
    <value name="NUM1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="NUM2">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
  </block>
  <block type="operator_divide">
    <value name="NUM1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="NUM2">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
  </block>
  <block type="operator_random">
    <value name="FROM">
      <shadow type="math_number">
        <field name="NUM">1</field>
      </shadow>
    </value>
    <value name="TO">
      <shadow type="math_number">
        <field name="NUM">10</field>
      </shadow>
    </value>
  </block>
  <block type="operator_lt">
    <value name="OPERAND1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="OPERAND2">
      <shadow type="math_number">
        <field name="NUM">50</field>
      </shadow>
    </value>
  </block>
  <block type="operator_equals">
    <value name="OPERAND1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="OPERAND2">
      <shadow type="math_number">
        <field name="NUM">50</field>
      </shadow>
    </value>
  </block>
  <block type="operator_gt">
    <value name="OPERAND1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="OPERAND2">
      <shadow type="math_number">
        <field name="NUM">50</field>
      </shadow>
    </value>
  </block>
  <block type="operator_and"></block>
  <block type="operator_or"></block>
  <block type="operator_not"></block>
  <block type="operator_join">
    <value name="STRING1">
      <shadow type="text">
        <field name="TEXT">apple</field>
      </shadow>
    </value>
    <value name="STRING2">
      <shadow type="text">
        <field name="TEXT">banana</field>
      </shadow>
    </value>
  </block>
  <block type="operator_letter_of">
    <value name="LETTER">
      <shadow type="math_whole_number">
        <field name="NUM">1</field>
      </shadow>
    </value>
    <value name="STRING">
      <shadow type="text">
        <field name="TEXT">apple</field>
      </shadow>
    </value>
  </block>
  <block type="operator_length">
    <value name="STRING">
      <shadow type="text">
        <field name="TEXT">apple</field>
      </shadow>
    </value>
  </block>
  <block type="operator_contains">
    <value name="STRING1">
      <shadow type="text">
        <field name="TEXT">apple</field>
      </shadow>
    </value>
    <value name="STRING2">
      <shadow type="text">
        <field name="TEXT">a</field>
      </shadow>
    </value>
  </block>
  <block type="operator_mod">
    <value name="NUM1">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
    <value name="NUM2">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
  </block>
  <block type="operator_round">
    <value name="NUM">
      <shadow type="math_number">
        <field name="NUM"></field>
      </shadow>
    </value>
  </block>
  <block type="kipr_boolean">
    <field name="BOOL">TRUE</field>
  </block>
</category>
`

// StaticLines returns the fixed Control and Operators categories, one XML line per element.
func StaticLines() []string {
	return strings.Split(strings.Trim(staticCategories, "\n"), "\n")
}

// Shadow returns the placeholder block type and field for the parameter at
// index of fn. Boolean-checked inputs get a kipr_boolean literal, everything
// else a math_number holding the numeric default of the parameter type.
func Shadow(table *overrides.Table, fn *meta.Function, index int) (shadowType, field, value string) {
	if check, ok := table.ParameterCheck(fn.Name, index); ok && check == overrides.BooleanCheck {
		return BooleanShadow, "BOOL", "TRUE"
	}
	spec, _ := ctypes.Classify(fn.Parameters[index].Type)
	return NumberShadow, "NUM", strconv.FormatFloat(spec.Default, 'f', -1, 64)
}

// Categories returns the module names in toolbox order: by hue for a
// procedural theme, catalog order otherwise.
func Categories(md *meta.Metadata) []string {
	var names []string
	for _, m := range md.Whitelisted() {
		names = append(names, m.Name)
	}
	return md.Theme.Order(names)
}

func categoryLines(md *meta.Metadata, module *meta.Module) []string {
	c, _ := md.Theme.Colours(module.Name)
	lines := []string{fmt.Sprintf(`<category name="%s" id="%s" colour="%s" secondaryColour="%s">`,
		common.XMLAttr(common.ToTitle(module.Name)),
		common.XMLAttr(module.Name),
		common.XMLAttr(c.Primary),
		common.XMLAttr(c.Secondary))}

	for i := range module.Functions {
		fn := &module.Functions[i]
		if md.Blacklist.Contains(module.Name, fn.Name) {
			continue
		}
		if _, bad := meta.UnsupportedParameter(fn); bad {
			continue
		}
		id := common.XMLAttr(common.BlockID(module.Name, fn.Name))
		if len(fn.Parameters) == 0 {
			lines = append(lines, fmt.Sprintf(`  <block type="%s"></block>`, id))
			continue
		}
		lines = append(lines, fmt.Sprintf(`  <block type="%s">`, id))
		for idx, p := range fn.Parameters {
			shadowType, field, value := Shadow(md.Overrides, fn, idx)
			lines = append(lines,
				fmt.Sprintf(`    <value name="%s">`, common.XMLAttr(common.InputName(p.Name))),
				fmt.Sprintf(`      <shadow type="%s">`, shadowType),
				fmt.Sprintf(`        <field name="%s">%s</field>`, field, value),
				`      </shadow>`,
				`    </value>`,
			)
		}
		lines = append(lines, `  </block>`)
	}
	return append(lines, `</category>`)
}

// Render produces default_toolbox.js: the generated categories followed by
// the static Control and Operators categories.
func Render(md *meta.Metadata) (meta.Artifact, error) {
	var lines []string
	for _, name := range Categories(md) {
		module, ok := md.Catalog.Module(name)
		if !ok {
			continue
		}
		lines = append(lines, categoryLines(md, module)...)
	}
	lines = append(lines, StaticLines()...)

	data := struct {
		Header string
		Open   string
		Lines  []string
		Close  string
	}{
		Header: common.FileHeader("//", FileName),
		Open:   `<xml id="toolbox-categories" style="display: none">`,
		Lines:  lines,
		Close:  `</xml>`,
	}
	var buf bytes.Buffer
	if err := toolboxTmpl.Execute(&buf, data); err != nil {
		return meta.Artifact{}, fmt.Errorf("execute toolbox template: %w", err)
	}
	return meta.Artifact{Name: FileName, Content: buf.Bytes()}, nil
}

func Generate(logger *slog.Logger, md *meta.Metadata) ([]meta.Artifact, error) {
	for _, name := range Categories(md) {
		if _, ok := md.Theme.Colours(name); !ok && md.Theme != nil {
			logger.Warn("No theme colours for module, using fallback", "module", name)
		}
	}
	art, err := Render(md)
	if err != nil {
		return nil, err
	}
	logger.Info("Generated toolbox", "categories", len(Categories(md)))
	return []meta.Artifact{art}, nil
}
