package meta_test

import (
	"testing"

	"github.com/kipr/kipr-scratch/internal/codegen/meta"
	"github.com/stretchr/testify/assert"
)

func sampleMetadata() *meta.Metadata {
	return &meta.Metadata{
		Catalog: &meta.Catalog{Modules: []meta.Module{
			{Name: "motor", Functions: []meta.Function{
				{Name: "motor", ReturnType: "void", Parameters: []meta.Parameter{{Name: "port", Type: "int"}, {Name: "percent", Type: "int"}}},
				{Name: "ao", ReturnType: "void"},
			}},
			{Name: "graphics", Functions: []meta.Function{
				{Name: "graphics_open", ReturnType: "int", Parameters: []meta.Parameter{{Name: "width", Type: "int"}}},
			}},
			{Name: "analog", Functions: []meta.Function{
				{Name: "analog", ReturnType: "int", Parameters: []meta.Parameter{{Name: "port", Type: "int"}}},
				{Name: "analog_name", ReturnType: "p.char", Parameters: []meta.Parameter{{Name: "port", Type: "int"}, {Name: "buf", Type: "p.char"}}},
			}},
		}},
		Whitelist: []string{"analog", "motor", "servo"},
	}
}

func TestWhitelistedKeepsCatalogOrder(t *testing.T) {
	md := sampleMetadata()
	var names []string
	for _, m := range md.Whitelisted() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"motor", "analog"}, names)
}

func TestSkipped(t *testing.T) {
	md := sampleMetadata()
	assert.Equal(t, []meta.SkippedFunction{
		{Module: "analog", Function: "analog_name", Parameter: "buf", Type: "p.char"},
	}, md.Skipped())
}

func TestUnsupportedParameter(t *testing.T) {
	fn := meta.Function{Name: "f", Parameters: []meta.Parameter{{Name: "a", Type: "double"}, {Name: "b", Type: "p.void"}, {Name: "c", Type: "p.int"}}}
	p, bad := meta.UnsupportedParameter(&fn)
	assert.True(t, bad)
	assert.Equal(t, "b", p.Name)

	_, bad = meta.UnsupportedParameter(&meta.Function{Name: "g"})
	assert.False(t, bad)
}

func TestCatalogLookups(t *testing.T) {
	md := sampleMetadata()
	m, ok := md.Catalog.Module("graphics")
	assert.True(t, ok)
	assert.Equal(t, "graphics_open", m.Functions[0].Name)

	_, ok = md.Catalog.Module("servo")
	assert.False(t, ok)

	assert.Equal(t, 5, md.Catalog.FunctionCount())
}

func TestBlacklist(t *testing.T) {
	b := meta.Blacklist{"motor": {"ao", "alloff"}}
	assert.True(t, b.Contains("motor", "ao"))
	assert.False(t, b.Contains("motor", "motor"))
	assert.False(t, b.Contains("analog", "ao"))

	var empty meta.Blacklist
	assert.False(t, empty.Contains("motor", "ao"))
}

func TestParameterIsNumeric(t *testing.T) {
	assert.True(t, meta.Parameter{Name: "x", Type: "uint16_t"}.IsNumeric())
	assert.False(t, meta.Parameter{Name: "x", Type: "p.char"}.IsNumeric())
}

func TestParseBlacklist(t *testing.T) {
	b, err := meta.ParseBlacklist([]byte(`{"motor": ["ao", "alloff"], "servo": []}`))
	if assert.NoError(t, err) {
		assert.True(t, b.Contains("motor", "alloff"))
		assert.False(t, b.Contains("servo", "enable_servos"))
	}

	_, err = meta.ParseBlacklist([]byte(`{"motor": "ao"}`))
	assert.Error(t, err)
}
