// Package build drives the full kipr-scratch pipeline: the libwallaby CMake
// build that produces the SWIG XML binding, block generation, patching of
// the vendored scratch-blocks sources, the npm install and bundler build,
// and packaging. Stages run in order and the first failure aborts the run.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kipr/kipr-scratch/internal/codegen/generator"
	"github.com/kipr/kipr-scratch/internal/log"
	"github.com/kipr/kipr-scratch/internal/pack"
	"github.com/kipr/kipr-scratch/internal/patch"
)

const (
	LibwallabyDir    = "libwallaby"
	LibwallabyBuild  = "libwallaby-build"
	ScratchBlocksDir = "scratch-blocks"

	// CMakeArgsEnv holds extra ";"-separated CMake arguments.
	CMakeArgsEnv = "LIBWALLABY_CMAKE_ARGS"
)

// RequiredTools must be on PATH before anything runs.
var RequiredTools = []string{"cmake", "node", "npm"}

// FixedCMakeArgs are appended after the user supplied arguments.
var FixedCMakeArgs = []string{
	"-Dwith_camera=OFF",
	"-Dwith_graphics=OFF",
	"-Dwith_tello=OFF",
	"-Dwith_python_binding=OFF",
	"-Dwith_xml_binding=ON",
	"-DDUMMY=ON",
	"-Dwith_tests=OFF",
	"-S" + LibwallabyDir,
	"-B" + LibwallabyBuild,
}

// RetiredBlocks are stock scratch-blocks files renamed to <name>.old so the
// bundler does not pick them up.
var RetiredBlocks = []string{
	"event.js",
	"extensions.js",
	"default_toolbox.js",
	"looks.js",
	"motion.js",
	"sensing.js",
	"sound.js",
}

// StageError reports a failed stage. ExitCode is -1 when the failure was
// not a child process exit.
type StageError struct {
	Stage    string
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("stage %s: exited with status %d", e.Stage, e.ExitCode)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Options struct {
	Root        string // directory holding the libwallaby and scratch-blocks checkouts
	CMakeArgs   string // raw LIBWALLABY_CMAKE_ARGS value
	Sources     generator.Sources
	FlyoutWidth int
	Version     string
	SkipPackage bool
}

// StageResult records one completed stage.
type StageResult struct {
	Name     string
	Duration time.Duration
}

type Result struct {
	Stages    []StageResult
	Generated *generator.Result
	Patched   *patch.Result
	Manifest  *pack.Manifest
}

type stage struct {
	name string
	run  func(ctx context.Context) error
}

type Orchestrator struct {
	opts   Options
	runner Runner
	logger *slog.Logger

	result Result
}

func New(opts Options, runner Runner, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{opts: opts, runner: runner, logger: logger}
}

func (o *Orchestrator) path(elem ...string) string {
	return filepath.Join(append([]string{o.opts.Root}, elem...)...)
}

func (o *Orchestrator) stages() []stage {
	st := []stage{
		{"preflight", o.preflight},
		{"configure", o.configure},
		{"compile", o.compile},
		{"retire", o.retire},
		{"generate", o.generate},
		{"patch", o.applyPatches},
		{"install", o.install},
		{"bundle", o.bundle},
	}
	if !o.opts.SkipPackage {
		st = append(st, stage{"package", o.packageOutputs})
	}
	return st
}

// Run executes every stage in order and stops at the first failure.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	o.result = Result{}
	for _, s := range o.stages() {
		if err := ctx.Err(); err != nil {
			return &o.result, &StageError{Stage: s.name, ExitCode: -1, Err: err}
		}
		log.ForStage(o.logger, s.name).Info("Running stage")
		start := time.Now()
		if err := s.run(ctx); err != nil {
			var se *StageError
			if errors.As(err, &se) {
				return &o.result, err
			}
			return &o.result, &StageError{Stage: s.name, ExitCode: -1, Err: err}
		}
		o.result.Stages = append(o.result.Stages, StageResult{Name: s.name, Duration: time.Since(start)})
	}
	o.logger.Info("Build complete", "stages", len(o.result.Stages))
	return &o.result, nil
}

func (o *Orchestrator) exec(ctx context.Context, c Command) error {
	log.ForStage(o.logger, c.Stage).Debug("Starting process", "cmd", c.Name, "args", c.Args, "dir", c.Dir)
	code, err := o.runner.Run(ctx, c)
	if err != nil {
		return &StageError{Stage: c.Stage, ExitCode: -1, Err: err}
	}
	if code != 0 {
		return &StageError{Stage: c.Stage, ExitCode: code}
	}
	return nil
}

func (o *Orchestrator) preflight(_ context.Context) error {
	for _, dir := range []string{LibwallabyDir, ScratchBlocksDir} {
		if _, err := os.Stat(o.path(dir)); err != nil {
			return fmt.Errorf("submodule %s not initialized (run 'git submodule update --init'): %w", dir, err)
		}
	}
	var missing []string
	for _, tool := range RequiredTools {
		p, err := o.runner.LookPath(tool)
		if err != nil {
			missing = append(missing, tool)
			continue
		}
		o.logger.Debug("Found tool", "tool", tool, "path", p)
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found in PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CMakeArgs splits the raw LIBWALLABY_CMAKE_ARGS value on ";" and appends
// the fixed configuration flags.
func CMakeArgs(raw string) []string {
	var args []string
	for _, a := range strings.Split(raw, ";") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return append(args, FixedCMakeArgs...)
}

func (o *Orchestrator) configure(ctx context.Context) error {
	return o.exec(ctx, Command{Stage: "configure", Name: "cmake", Args: CMakeArgs(o.opts.CMakeArgs), Dir: o.opts.Root})
}

func (o *Orchestrator) compile(ctx context.Context) error {
	return o.exec(ctx, Command{Stage: "compile", Name: "cmake", Args: []string{"--build", LibwallabyBuild}, Dir: o.opts.Root})
}

func (o *Orchestrator) retire(_ context.Context) error {
	dir := o.path(ScratchBlocksDir, "blocks_vertical")
	for _, name := range RetiredBlocks {
		src := filepath.Join(dir, name)
		if err := os.Rename(src, src+".old"); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("retire %s: %w", name, err)
		}
		o.logger.Debug("Retired stock block file", "file", name)
	}
	return nil
}

func (o *Orchestrator) generate(_ context.Context) error {
	src := o.opts.Sources
	src.BuildRoot = o.path(LibwallabyBuild)
	res, err := generator.New(o.path(ScratchBlocksDir, "blocks_vertical"), o.logger).Run(src)
	if err != nil {
		return err
	}
	o.result.Generated = res
	return nil
}

func (o *Orchestrator) applyPatches(_ context.Context) error {
	gen := o.result.Generated
	res, err := patch.New(o.path(ScratchBlocksDir), o.logger).Apply(&patch.Input{
		Modules:     gen.Modules,
		Messages:    gen.Messages.Content,
		Theme:       gen.Theme,
		FlyoutWidth: o.opts.FlyoutWidth,
	})
	if err != nil {
		return err
	}
	o.result.Patched = res
	return nil
}

func (o *Orchestrator) install(ctx context.Context) error {
	return o.exec(ctx, Command{Stage: "install", Name: "npm", Args: []string{"install"}, Dir: o.path(ScratchBlocksDir)})
}

func (o *Orchestrator) bundle(ctx context.Context) error {
	bin := o.path(ScratchBlocksDir, "node_modules", ".bin")
	pathEnv := "PATH=" + bin + string(os.PathListSeparator) + os.Getenv("PATH")
	return o.exec(ctx, Command{
		Stage: "bundle",
		Name:  "node",
		Args:  []string{"build.py"},
		Dir:   o.path(ScratchBlocksDir),
		Env:   []string{pathEnv},
	})
}

func (o *Orchestrator) packageOutputs(_ context.Context) error {
	m, err := pack.Package(o.logger, pack.Options{
		ScratchBlocks: o.path(ScratchBlocksDir),
		Output:        o.path(pack.DirName),
		Version:       o.opts.Version,
	})
	if err != nil {
		return err
	}
	o.result.Manifest = m
	return nil
}
