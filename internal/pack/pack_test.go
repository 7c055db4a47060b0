package pack_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kipr/kipr-scratch/internal/log"
	"github.com/kipr/kipr-scratch/internal/pack"
)

func seedScratchBlocks(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range pack.Files {
		p := filepath.Join(root, filepath.FromSlash(f.Source))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("// "+f.Source+"\n"), 0o644))
	}
	icons := filepath.Join(root, "media", "icons")
	require.NoError(t, os.MkdirAll(icons, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(icons, "control_repeat.svg"), []byte("<svg/>"), 0o644))
	return root
}

func TestPackage(t *testing.T) {
	src := seedScratchBlocks(t)
	out := filepath.Join(t.TempDir(), pack.DirName)

	m, err := pack.Package(log.Discard(), pack.Options{ScratchBlocks: src, Output: out, Version: "2.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "2.0.1", m.Version)

	data, err := os.ReadFile(filepath.Join(out, "messages.js"))
	require.NoError(t, err)
	assert.Equal(t, "// msg/messages.js\n", string(data))

	_, err = os.Stat(filepath.Join(out, "media", "icons", "control_repeat.svg"))
	assert.NoError(t, err)

	manifest, err := os.ReadFile(filepath.Join(out, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, `{
  "name": "kipr-scratch",
  "version": "2.0.1",
  "description": "KIPR's fork of Scratch 3.0"
}
`, string(manifest))

	_, err = os.Stat(filepath.Join(out, "README.md"))
	assert.NoError(t, err)
}

func TestPackageDefaultVersion(t *testing.T) {
	m, err := pack.Package(log.Discard(), pack.Options{ScratchBlocks: seedScratchBlocks(t), Output: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", m.Version)
}

func TestPackageMissingOutput(t *testing.T) {
	src := seedScratchBlocks(t)
	require.NoError(t, os.Remove(filepath.Join(src, "blocks_compressed.js")))

	_, err := pack.Package(log.Discard(), pack.Options{ScratchBlocks: src, Output: t.TempDir()})
	assert.ErrorContains(t, err, "blocks_compressed.js")
}
