// Package theme computes the primary/secondary/tertiary colours of each
// generated block category.
//
// Two file formats are accepted. The literal form maps module names to hex
// triples. The procedural form carries a hue per module and one shared
// saturation/lightness pair per colour slot:
//
//	{
//	  "hues": {"analog": 210, "motor": 30},
//	  "primary_saturation": 70, "primary_lightness": 50,
//	  "secondary_saturation": 70, "secondary_lightness": 40,
//	  "tertiary_saturation": 70, "tertiary_lightness": 30
//	}
package theme

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/kipr/kipr-scratch/internal/codegen/common"
	"github.com/kipr/kipr-scratch/internal/validator"
)

// Colours is the colour triple of one category.
type Colours struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

// Fallback is used for modules the literal table does not mention.
var Fallback = Colours{Primary: "#888888", Secondary: "#777777", Tertiary: "#666666"}

// Slot is a saturation/lightness pair in percent.
type Slot struct {
	Saturation float64
	Lightness  float64
}

// Theme is the colour configuration for one run.
type Theme struct {
	procedural bool
	literal    map[string]Colours
	hues       map[string]float64
	slots      [3]Slot

	// Workspace and Flyout replace the stock scratch-blocks background colours when set.
	Workspace string
	Flyout    string
}

// NewLiteral builds a theme from fixed colour triples.
func NewLiteral(colours map[string]Colours) (*Theme, error) {
	t := &Theme{literal: make(map[string]Colours, len(colours))}
	for _, module := range common.SortedKeys(colours) {
		c := colours[module]
		var err error
		if c.Primary, err = normalizeHex(c.Primary); err != nil {
			return nil, fmt.Errorf("module %s primary: %w", module, err)
		}
		if c.Secondary, err = normalizeHex(c.Secondary); err != nil {
			return nil, fmt.Errorf("module %s secondary: %w", module, err)
		}
		if c.Tertiary, err = normalizeHex(c.Tertiary); err != nil {
			return nil, fmt.Errorf("module %s tertiary: %w", module, err)
		}
		t.literal[module] = c
	}
	return t, nil
}

// NewProcedural builds a theme from per-module hues (degrees) and the
// primary, secondary and tertiary slots.
func NewProcedural(hues map[string]float64, primary, secondary, tertiary Slot) *Theme {
	if hues == nil {
		hues = map[string]float64{}
	}
	return &Theme{
		procedural: true,
		hues:       hues,
		slots:      [3]Slot{primary, secondary, tertiary},
	}
}

// Procedural reports whether colours are derived from hues.
func (t *Theme) Procedural() bool { return t != nil && t.procedural }

// Hue returns the configured hue of module in degrees, 0 when absent.
func (t *Theme) Hue(module string) float64 {
	if t == nil {
		return 0
	}
	return t.hues[module]
}

// Colours returns the colour triple of module. The boolean is false when a
// literal theme has no entry and Fallback was returned.
func (t *Theme) Colours(module string) (Colours, bool) {
	if t == nil {
		return Fallback, false
	}
	if !t.procedural {
		c, ok := t.literal[module]
		if !ok {
			return Fallback, false
		}
		return c, true
	}
	h := t.Hue(module) / 360
	return Colours{
		Primary:   slotHex(h, t.slots[0]),
		Secondary: slotHex(h, t.slots[1]),
		Tertiary:  slotHex(h, t.slots[2]),
	}, true
}

// Order sorts module names by hue when the theme is procedural.
// Literal themes keep the given order.
func (t *Theme) Order(modules []string) []string {
	out := append([]string(nil), modules...)
	if !t.Procedural() {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return t.Hue(out[i]) < t.Hue(out[j])
	})
	return out
}

func slotHex(h float64, s Slot) string {
	r, g, b := HLSToRGB(h, s.Lightness/100, s.Saturation/100)
	return Hex(r, g, b)
}

const (
	oneThird = 1.0 / 3.0
	oneSixth = 1.0 / 6.0
	twoThird = 2.0 / 3.0
)

// HLSToRGB converts hue, lightness and saturation in [0,1] to RGB in [0,1].
func HLSToRGB(h, l, s float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var m2 float64
	if l <= 0.5 {
		m2 = l * (1 + s)
	} else {
		m2 = l + s - l*s
	}
	m1 := 2*l - m2
	return channel(m1, m2, h+oneThird), channel(m1, m2, h), channel(m1, m2, h-oneThird)
}

func channel(m1, m2, hue float64) float64 {
	hue -= math.Floor(hue)
	switch {
	case hue < oneSixth:
		return m1 + (m2-m1)*hue*6
	case hue < 0.5:
		return m2
	case hue < twoThird:
		return m1 + (m2-m1)*(twoThird-hue)*6
	default:
		return m1
	}
}

// Hex formats RGB in [0,1] as #rrggbb, truncating each scaled channel.
func Hex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", quantize(r), quantize(g), quantize(b))
}

func quantize(v float64) int {
	n := int(v * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

func normalizeHex(s string) (string, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

type proceduralFile struct {
	Hues                map[string]float64 `json:"hues"`
	PrimarySaturation   float64            `json:"primary_saturation"`
	PrimaryLightness    float64            `json:"primary_lightness"`
	SecondarySaturation float64            `json:"secondary_saturation"`
	SecondaryLightness  float64            `json:"secondary_lightness"`
	TertiarySaturation  float64            `json:"tertiary_saturation"`
	TertiaryLightness   float64            `json:"tertiary_lightness"`
	Workspace           string             `json:"workspace"`
	Flyout              string             `json:"flyout"`
}

// Parse validates and decodes a theme document of either form.
func Parse(data []byte) (*Theme, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode theme: %w", err)
	}

	if _, ok := probe["hues"]; ok {
		if err := validator.ValidateFile(validator.ProceduralTheme, data); err != nil {
			return nil, err
		}
		var f proceduralFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode procedural theme: %w", err)
		}
		t := NewProcedural(f.Hues,
			Slot{Saturation: f.PrimarySaturation, Lightness: f.PrimaryLightness},
			Slot{Saturation: f.SecondarySaturation, Lightness: f.SecondaryLightness},
			Slot{Saturation: f.TertiarySaturation, Lightness: f.TertiaryLightness},
		)
		if err := t.setBackgrounds(f.Workspace, f.Flyout); err != nil {
			return nil, err
		}
		return t, nil
	}

	if err := validator.ValidateFile(validator.LiteralTheme, data); err != nil {
		return nil, err
	}
	colours := make(map[string]Colours, len(probe))
	var workspace, flyout string
	for key, raw := range probe {
		switch key {
		case "workspace":
			if err := json.Unmarshal(raw, &workspace); err != nil {
				return nil, fmt.Errorf("decode workspace colour: %w", err)
			}
		case "flyout":
			if err := json.Unmarshal(raw, &flyout); err != nil {
				return nil, fmt.Errorf("decode flyout colour: %w", err)
			}
		default:
			var c Colours
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("decode colours of %s: %w", key, err)
			}
			colours[key] = c
		}
	}
	t, err := NewLiteral(colours)
	if err != nil {
		return nil, err
	}
	if err := t.setBackgrounds(workspace, flyout); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Theme) setBackgrounds(workspace, flyout string) error {
	var err error
	if strings.TrimSpace(workspace) != "" {
		if t.Workspace, err = normalizeHex(workspace); err != nil {
			return fmt.Errorf("workspace colour: %w", err)
		}
	}
	if strings.TrimSpace(flyout) != "" {
		if t.Flyout, err = normalizeHex(flyout); err != nil {
			return fmt.Errorf("flyout colour: %w", err)
		}
	}
	return nil
}

// Load reads the theme file at path.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load theme %s: %w", path, err)
	}
	return t, nil
}
