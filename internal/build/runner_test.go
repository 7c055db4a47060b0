package build_test

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kipr/kipr-scratch/internal/build"
	"github.com/kipr/kipr-scratch/internal/log"
)

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := build.NewExecRunner(log.NewProcess(logger, slog.LevelInfo))
	if _, err := r.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	code, err := r.Run(context.Background(), build.Command{
		Stage: "bundle",
		Name:  "sh",
		Args:  []string{"-c", `echo "building $KIPR_TEST"; echo oops >&2; exit 3`},
		Dir:   t.TempDir(),
		Env:   []string{"KIPR_TEST=blocks"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	out := buf.String()
	assert.Contains(t, out, `msg="building blocks" stage=bundle stream=stdout`)
	assert.Contains(t, out, `msg=oops stage=bundle stream=stderr`)
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := build.NewExecRunner(log.NewProcess(nil, slog.LevelInfo))
	code, err := r.Run(context.Background(), build.Command{Stage: "install", Name: "kipr-scratch-no-such-tool"})
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}
