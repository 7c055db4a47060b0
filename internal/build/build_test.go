package build_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kipr/kipr-scratch/internal/build"
	"github.com/kipr/kipr-scratch/internal/codegen/generator"
	"github.com/kipr/kipr-scratch/internal/codegen/scanner"
	"github.com/kipr/kipr-scratch/internal/log"
	"github.com/kipr/kipr-scratch/internal/pack"
)

const binding = `<top>
  <include/>
  <include>
    <include>
      <include>
        <attributelist><attribute name="name" value="/kipr/motor/motor.h"/></attributelist>
        <cdecl>
          <attributelist>
            <attribute name="name" value="ao"/>
            <attribute name="type" value="void"/>
          </attributelist>
        </cdecl>
      </include>
    </include>
  </include>
</top>
`

var vendored = map[string]string{
	"core/colours.js":                        "Blockly.Colours = {\n  \"workspace\": \"#F9F9F9\",\n  \"flyout\": \"#F9F9F9\"\n};\n",
	"blocks_vertical/vertical_extensions.js": "  var categoryNames =\n      ['control', 'more'];\n",
	"core/flyout_vertical.js":                "Blockly.VerticalFlyout.prototype.DEFAULT_WIDTH = 250;\n",
	"msg/messages.js":                        "goog.require('Blockly.Msg');\n",
	"blocks_vertical/control.js":             "goog.provide('Blockly.Blocks.control');\n",
	"blocks_vertical/motion.js":              "// stock\n",
	"blocks_vertical/sound.js":               "// stock\n",
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func workspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, build.LibwallabyDir), 0o755))
	for rel, content := range vendored {
		writeFile(t, filepath.Join(root, build.ScratchBlocksDir, filepath.FromSlash(rel)), content)
	}
	return root
}

type fakeRunner struct {
	t        *testing.T
	root     string
	missing  map[string]bool
	failAt   string
	commands []build.Command
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(_ context.Context, c build.Command) (int, error) {
	f.commands = append(f.commands, c)
	if c.Stage == f.failAt {
		return 2, nil
	}
	switch c.Stage {
	case "compile":
		writeFile(f.t, scanner.BindingPath(filepath.Join(f.root, build.LibwallabyBuild)), binding)
	case "bundle":
		sb := filepath.Join(f.root, build.ScratchBlocksDir)
		for _, file := range pack.Files {
			p := filepath.Join(sb, filepath.FromSlash(file.Source))
			if _, err := os.Stat(p); err != nil {
				writeFile(f.t, p, "// built\n")
			}
		}
		writeFile(f.t, filepath.Join(sb, "media", "logo.svg"), "<svg/>")
	}
	return 0, nil
}

func (f *fakeRunner) stages() []string {
	var out []string
	for _, c := range f.commands {
		out = append(out, c.Stage)
	}
	return out
}

func TestRunAllStages(t *testing.T) {
	root := workspace(t)
	runner := &fakeRunner{t: t, root: root}

	res, err := build.New(build.Options{
		Root:      root,
		CMakeArgs: "-DCMAKE_BUILD_TYPE=Release;;-GNinja",
		Sources:   generator.Sources{Whitelist: []string{"motor"}},
		Version:   "1.2.3",
	}, runner, log.Discard()).Run(context.Background())
	require.NoError(t, err)

	var names []string
	for _, s := range res.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"preflight", "configure", "compile", "retire", "generate", "patch", "install", "bundle", "package"}, names)
	assert.Equal(t, []string{"configure", "compile", "install", "bundle"}, runner.stages())

	configure := runner.commands[0]
	assert.Equal(t, "cmake", configure.Name)
	assert.Equal(t, []string{"-DCMAKE_BUILD_TYPE=Release", "-GNinja"}, configure.Args[:2])
	assert.Equal(t, "-Blibwallaby-build", configure.Args[len(configure.Args)-1])

	bundle := runner.commands[3]
	require.Len(t, bundle.Env, 1)
	assert.True(t, strings.HasPrefix(bundle.Env[0], "PATH="+filepath.Join(root, "scratch-blocks", "node_modules", ".bin")))

	sb := filepath.Join(root, build.ScratchBlocksDir)
	_, err = os.Stat(filepath.Join(sb, "blocks_vertical", "motion.js.old"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(sb, "blocks_vertical", "motor.js"))
	assert.NoError(t, err)

	msgs, err := os.ReadFile(filepath.Join(sb, "msg", "messages.js"))
	require.NoError(t, err)
	assert.Contains(t, string(msgs), "Blockly.Msg.MOTOR_AO = 'ao()';")

	require.NotNil(t, res.Manifest)
	assert.Equal(t, "1.2.3", res.Manifest.Version)
	_, err = os.Stat(filepath.Join(root, pack.DirName, "media", "logo.svg"))
	assert.NoError(t, err)
}

func TestRunStopsAtFailingStage(t *testing.T) {
	root := workspace(t)
	runner := &fakeRunner{t: t, root: root, failAt: "install"}

	res, err := build.New(build.Options{Root: root, SkipPackage: true}, runner, log.Discard()).Run(context.Background())
	var se *build.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "install", se.Stage)
	assert.Equal(t, 2, se.ExitCode)
	assert.Equal(t, []string{"configure", "compile", "install"}, runner.stages())
	assert.Len(t, res.Stages, 6)
}

func TestPreflight(t *testing.T) {
	type testCase struct {
		name    string
		setup   func(t *testing.T, root string)
		missing map[string]bool
		errText string
	}
	cases := []testCase{
		{
			name:    "missing submodule",
			setup:   func(t *testing.T, root string) { require.NoError(t, os.RemoveAll(filepath.Join(root, build.ScratchBlocksDir))) },
			errText: "submodule scratch-blocks not initialized",
		},
		{
			name:    "missing tools",
			missing: map[string]bool{"cmake": true, "npm": true},
			errText: "required tools not found in PATH: cmake, npm",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := workspace(t)
			if tc.setup != nil {
				tc.setup(t, root)
			}
			runner := &fakeRunner{t: t, root: root, missing: tc.missing}
			_, err := build.New(build.Options{Root: root}, runner, log.Discard()).Run(context.Background())
			var se *build.StageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "preflight", se.Stage)
			assert.ErrorContains(t, err, tc.errText)
			assert.Empty(t, runner.commands)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	root := workspace(t)
	_, err := build.New(build.Options{Root: root}, &fakeRunner{t: t, root: root}, log.Discard()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCMakeArgs(t *testing.T) {
	assert.Equal(t, build.FixedCMakeArgs, build.CMakeArgs(""))
	args := build.CMakeArgs(" -DA=1 ;-DB=2")
	assert.Equal(t, []string{"-DA=1", "-DB=2"}, args[:2])
	assert.Len(t, args, 2+len(build.FixedCMakeArgs))
}

func TestStageErrorMessage(t *testing.T) {
	assert.Equal(t, "stage bundle: exited with status 1", (&build.StageError{Stage: "bundle", ExitCode: 1}).Error())
	err := &build.StageError{Stage: "generate", ExitCode: -1, Err: errors.New("boom")}
	assert.Equal(t, "stage generate: boom", err.Error())
}
