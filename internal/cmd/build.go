package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kipr/kipr-scratch/internal/build"
	"github.com/kipr/kipr-scratch/internal/log"
	"github.com/kipr/kipr-scratch/internal/pack"
)

type Build struct {
	Root        string `help:"Directory holding the libwallaby and scratch-blocks checkouts" default:"." type:"path" env:"KIPR_SCRATCH_ROOT"`
	CMakeArgs   string `name:"cmake-args" help:"Extra ';'-separated CMake arguments for libwallaby" env:"LIBWALLABY_CMAKE_ARGS"`
	FlyoutWidth int    `help:"Width of the vertical flyout in pixels" default:"300" env:"KIPR_SCRATCH_FLYOUT_WIDTH"`
	Version     string `help:"package.json version (defaults to the kipr-scratch version)" env:"KIPR_SCRATCH_VERSION"`
	NoPackage   bool   `help:"Stop after the scratch-blocks build"`
	ProcessLog  string `help:"Log level for child process output" default:"info" enum:"trace,debug,info,warn,error" env:"KIPR_SCRATCH_PROCESS_LOG"`

	Generation `embed:""`
}

// Run is called by Kong when the build command is executed.
func (b *Build) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.RunContext(ctx, logger, build.NewExecRunner(log.NewProcess(logger, log.ParseLevel(b.ProcessLog))))
}

func (b *Build) RunContext(ctx context.Context, logger *slog.Logger, runner build.Runner) error {
	logger.Info("Starting kipr-scratch build", "root", b.Root)

	res, err := build.New(build.Options{
		Root:        b.Root,
		CMakeArgs:   b.CMakeArgs,
		Sources:     b.Sources(""),
		FlyoutWidth: b.FlyoutWidth,
		Version:     b.Version,
		SkipPackage: b.NoPackage,
	}, runner, logger).Run(ctx)
	if interactive() && res != nil {
		renderStages(os.Stdout, res.Stages)
		if res.Generated != nil {
			renderSkipped(os.Stdout, res.Generated.Skipped)
		}
	}
	return err
}

type Package struct {
	ScratchBlocks string `help:"Built scratch-blocks checkout" default:"scratch-blocks" type:"path" env:"KIPR_SCRATCH_SCRATCH_BLOCKS"`
	Output        string `help:"Package directory" default:"kipr-scratch" type:"path" env:"KIPR_SCRATCH_PACKAGE_OUTPUT"`
	Version       string `help:"package.json version (defaults to the kipr-scratch version)" env:"KIPR_SCRATCH_VERSION"`
}

// Run is called by Kong when the package command is executed.
func (p *Package) Run(logger *slog.Logger) error {
	_, err := pack.Package(logger, pack.Options{
		ScratchBlocks: filepath.Clean(p.ScratchBlocks),
		Output:        filepath.Clean(p.Output),
		Version:       p.Version,
	})
	return err
}
