package generator_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kipr/kipr-scratch/internal/codegen/generator"
	"github.com/kipr/kipr-scratch/internal/codegen/meta"
	"github.com/kipr/kipr-scratch/internal/codegen/scanner"
	"github.com/kipr/kipr-scratch/internal/log"
)

const bindingXML = `<?xml version="1.0" ?>
<top>
  <include>
    <attributelist><attribute name="name" value="swig.swg"/></attributelist>
  </include>
  <include>
    <attributelist><attribute name="name" value="kipr.i"/></attributelist>
    <include>
      <attributelist><attribute name="name" value="analog.i"/></attributelist>
      <include>
        <attributelist><attribute name="name" value="/src/kipr/analog/analog.h"/></attributelist>
        <cdecl>
          <attributelist>
            <attribute name="name" value="get_analog"/>
            <attribute name="type" value="int"/>
            <parmlist>
              <parm><attributelist>
                <attribute name="name" value="port"/>
                <attribute name="type" value="int"/>
              </attributelist></parm>
            </parmlist>
          </attributelist>
        </cdecl>
        <cdecl>
          <attributelist>
            <attribute name="name" value="get_analog_name"/>
            <attribute name="type" value="void"/>
            <parmlist>
              <parm><attributelist>
                <attribute name="name" value="buf"/>
                <attribute name="type" value="p.char"/>
              </attributelist></parm>
            </parmlist>
          </attributelist>
        </cdecl>
        <cdecl>
          <attributelist>
            <attribute name="name" value="analog_count"/>
            <attribute name="type" value="int"/>
          </attributelist>
        </cdecl>
      </include>
    </include>
    <include>
      <attributelist><attribute name="name" value="graphics.i"/></attributelist>
      <include>
        <attributelist><attribute name="name" value="/src/kipr/graphics/graphics.h"/></attributelist>
        <cdecl>
          <attributelist>
            <attribute name="name" value="graphics_close"/>
            <attribute name="type" value="void"/>
          </attributelist>
        </cdecl>
      </include>
    </include>
  </include>
</top>
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, scanner.BindingPath(root), bindingXML)
	return root
}

func TestRunGetAnalog(t *testing.T) {
	root := buildRoot(t)
	out := filepath.Join(t.TempDir(), "js")

	res, err := generator.New(out, log.Discard()).Run(generator.Sources{
		BuildRoot: root,
		Whitelist: []string{"analog"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"analog"}, res.Modules)
	require.Len(t, res.Blocks, 1)

	blockFile, err := os.ReadFile(filepath.Join(out, "analog.js"))
	require.NoError(t, err)
	js := string(blockFile)
	assert.Contains(t, js, `Blockly.Blocks["analog_get_analog"]`)
	assert.Contains(t, js, `"name": "PORT"
        }`)
	assert.NotContains(t, js, `"check"`)
	assert.Contains(t, js, `"extensions": ["colours_analog", "output_number"]`)

	msgs := string(res.Messages.Content)
	assert.Contains(t, msgs, "Blockly.Msg.ANALOG_GET_ANALOG = 'get_analog(%1)';\n")
	assert.Contains(t, msgs, "Blockly.Msg.ANALOG_GET_ANALOG_PORT = 'port';\n")

	// Every message the block file reads is defined by messages.js.
	refs := regexp.MustCompile(`Blockly\.Msg\.([A-Z0-9_]+)`).FindAllStringSubmatch(js, -1)
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		assert.Contains(t, msgs, "Blockly.Msg."+ref[1]+" = ", ref[1])
	}
	assert.Contains(t, js, "Blockly.Msg.ANALOG_GET_ANALOG_PORT")

	_, err = os.Stat(filepath.Join(out, "default_toolbox.js"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "graphics.js"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunReturnTypeOverride(t *testing.T) {
	root := buildRoot(t)
	cfg := t.TempDir()
	overridesPath := filepath.Join(cfg, "overrides.json")
	writeFile(t, overridesPath, `{"get_analog": {"return_type": "boolean_output"}}`)

	res, err := generator.New(t.TempDir(), log.Discard()).Run(generator.Sources{
		BuildRoot: root,
		Whitelist: []string{"analog"},
		Overrides: overridesPath,
	})
	require.NoError(t, err)

	js := string(res.Blocks[0].Content)
	assert.Contains(t, js, `"extensions": ["colours_analog", "boolean_output"]`)
	assert.Contains(t, js, `Blockly.Blocks["analog_analog_count"]`)
}

func TestRunSkipsUnsupportedParameter(t *testing.T) {
	root := buildRoot(t)
	res, err := generator.New(t.TempDir(), log.Discard()).Run(generator.Sources{
		BuildRoot: root,
		Whitelist: []string{"analog"},
	})
	require.NoError(t, err)

	assert.Equal(t, []meta.SkippedFunction{
		{Module: "analog", Function: "get_analog_name", Parameter: "buf", Type: "p.char"},
	}, res.Skipped)

	js := string(res.Blocks[0].Content)
	assert.NotContains(t, js, "analog_get_analog_name")
	assert.Contains(t, js, `Blockly.Blocks["analog_get_analog"]`)
	assert.Contains(t, js, `Blockly.Blocks["analog_analog_count"]`)

	assert.NotContains(t, string(res.Toolbox.Content), "analog_get_analog_name")
	assert.Contains(t, string(res.Messages.Content), "ANALOG_GET_ANALOG_NAME = 'get_analog_name(%1)'")
}

func TestLoadMetadataErrors(t *testing.T) {
	type testCase struct {
		name  string
		setup func(t *testing.T) generator.Sources
	}
	cases := []testCase{
		{
			name: "missing binding",
			setup: func(t *testing.T) generator.Sources {
				return generator.Sources{BuildRoot: t.TempDir()}
			},
		},
		{
			name: "missing overrides file",
			setup: func(t *testing.T) generator.Sources {
				return generator.Sources{BuildRoot: buildRoot(t), Overrides: filepath.Join(t.TempDir(), "nope.json")}
			},
		},
		{
			name: "malformed theme",
			setup: func(t *testing.T) generator.Sources {
				p := filepath.Join(t.TempDir(), "theme.json")
				writeFile(t, p, `{"analog": {"primary": "red"}}`)
				return generator.Sources{BuildRoot: buildRoot(t), Theme: p}
			},
		},
		{
			name: "malformed blacklist",
			setup: func(t *testing.T) generator.Sources {
				p := filepath.Join(t.TempDir(), "blacklist.json")
				writeFile(t, p, `["ao"]`)
				return generator.Sources{BuildRoot: buildRoot(t), Blacklist: p}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := generator.LoadMetadata(log.Discard(), tc.setup(t))
			assert.Error(t, err)
		})
	}
}

func TestLoadMetadataDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	md, err := generator.LoadMetadata(logger, generator.Sources{BuildRoot: buildRoot(t)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `level=WARN msg="No override table configured; using default block shapes"`)
	assert.Contains(t, buf.String(), `level=WARN msg="No theme configured; using fallback category colours"`)
	assert.Equal(t, meta.DefaultWhitelist, md.Whitelist)
	assert.Nil(t, md.Theme)
	assert.Equal(t, 0, md.Overrides.Len())
	assert.Len(t, md.Catalog.Modules, 2)
}
