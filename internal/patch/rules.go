package patch

import (
	"fmt"
	"strings"

	"github.com/kipr/kipr-scratch/internal/codegen/common"
)

// Stock markers in the vendored scratch-blocks sources.
const (
	ColoursOpen       = "Blockly.Colours = {"
	WorkspaceColour   = `"workspace": "#F9F9F9"`
	FlyoutColour      = `"flyout": "#F9F9F9"`
	CategoryNamesOpen = "var categoryNames ="
	CategoryNamesEnd  = "];"
	FlyoutWidthLine   = "Blockly.VerticalFlyout.prototype.DEFAULT_WIDTH ="
	MessagesRequire   = "goog.require('Blockly.Msg');"
	ControlProvide    = "goog.provide('Blockly.Blocks.control');"
)

// StockCategories are the category names scratch-blocks registers colour
// extensions for before any generated module is added.
var StockCategories = []string{
	"control", "data", "data_lists", "sounds", "motion", "looks",
	"event", "sensing", "pen", "operators", "more",
}

// DefaultFlyoutWidth is the flyout width written when none is configured.
const DefaultFlyoutWidth = 300

// Rule rewrites one vendored file. Apply always receives the pristine content.
type Rule struct {
	Path  string // relative to the scratch-blocks root, slash separated
	Apply func(src string, in *Input) (string, error)
}

// Rules returns the rule set in application order.
func Rules() []Rule {
	return []Rule{
		{Path: "core/colours.js", Apply: patchColours},
		{Path: "blocks_vertical/vertical_extensions.js", Apply: patchCategoryNames},
		{Path: "core/flyout_vertical.js", Apply: patchFlyoutWidth},
		{Path: "msg/messages.js", Apply: patchMessages},
		{Path: "blocks_vertical/control.js", Apply: patchControl},
	}
}

func requireMarker(src, file, marker string) (int, error) {
	idx := strings.Index(src, marker)
	if idx < 0 {
		return -1, &MarkerError{File: file, Marker: marker}
	}
	return idx, nil
}

func replaceMarker(src, file, marker, replacement string) (string, error) {
	if _, err := requireMarker(src, file, marker); err != nil {
		return "", err
	}
	return strings.Replace(src, marker, replacement, 1), nil
}

func patchColours(src string, in *Input) (string, error) {
	const file = "core/colours.js"
	var err error
	if in.Theme != nil && in.Theme.Workspace != "" {
		if src, err = replaceMarker(src, file, WorkspaceColour, fmt.Sprintf(`"workspace": "%s"`, in.Theme.Workspace)); err != nil {
			return "", err
		}
	}
	if in.Theme != nil && in.Theme.Flyout != "" {
		if src, err = replaceMarker(src, file, FlyoutColour, fmt.Sprintf(`"flyout": "%s"`, in.Theme.Flyout)); err != nil {
			return "", err
		}
	}

	idx, err := requireMarker(src, file, ColoursOpen)
	if err != nil {
		return "", err
	}
	at := idx + len(ColoursOpen)

	var b strings.Builder
	for _, module := range in.Modules {
		c, _ := in.Theme.Colours(module)
		fmt.Fprintf(&b, "\n  %q: {\n    \"primary\": %q,\n    \"secondary\": %q,\n    \"tertiary\": %q\n  },",
			module, c.Primary, c.Secondary, c.Tertiary)
	}
	return src[:at] + b.String() + src[at:], nil
}

func patchCategoryNames(src string, in *Input) (string, error) {
	const file = "blocks_vertical/vertical_extensions.js"
	start, err := requireMarker(src, file, CategoryNamesOpen)
	if err != nil {
		return "", err
	}
	end := strings.Index(src[start:], CategoryNamesEnd)
	if end < 0 {
		return "", &MarkerError{File: file, Marker: CategoryNamesEnd}
	}
	end += start + len(CategoryNamesEnd)

	names := append(append([]string(nil), StockCategories...), in.Modules...)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = common.JSString(n)
	}
	region := CategoryNamesOpen + "\n      [" + strings.Join(quoted, ", ") + "];"
	return src[:start] + region + src[end:], nil
}

func patchFlyoutWidth(src string, in *Input) (string, error) {
	const file = "core/flyout_vertical.js"
	start, err := requireMarker(src, file, FlyoutWidthLine)
	if err != nil {
		return "", err
	}
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}
	width := in.FlyoutWidth
	if width <= 0 {
		width = DefaultFlyoutWidth
	}
	return src[:start] + fmt.Sprintf("%s %d;", FlyoutWidthLine, width) + src[end:], nil
}

const controlStartMessage = "Blockly.Msg.CONTROL_START = 'when program starts';\n"

func patchMessages(src string, in *Input) (string, error) {
	if _, err := requireMarker(src, "msg/messages.js", MessagesRequire); err != nil {
		return "", err
	}
	return ensureNewline(src) + "\n// libwallaby\n" + string(in.Messages) + controlStartMessage, nil
}

const controlBlocks = `
Blockly.Blocks['control_start'] = {
  /**
   * Hat block marking the program entry point.
   * @this Blockly.Block
   */
  init: function() {
    this.jsonInit({
      "id": "control_start",
      "message0": Blockly.Msg.CONTROL_START,
      "category": Blockly.Categories.control,
      "extensions": ["colours_control", "shape_hat"]
    });
  }
};

Blockly.Blocks['kipr_boolean'] = {
  /**
   * Boolean literal used as the shadow of Boolean-checked inputs.
   * @this Blockly.Block
   */
  init: function() {
    this.jsonInit({
      "message0": "%1",
      "args0": [
        {
          "type": "field_dropdown",
          "name": "BOOL",
          "options": [
            ["true", "TRUE"],
            ["false", "FALSE"]
          ]
        }
      ],
      "category": Blockly.Categories.operators,
      "extensions": ["colours_operators", "output_boolean"]
    });
  }
};
`

func patchControl(src string, _ *Input) (string, error) {
	if _, err := requireMarker(src, "blocks_vertical/control.js", ControlProvide); err != nil {
		return "", err
	}
	return ensureNewline(src) + controlBlocks, nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

