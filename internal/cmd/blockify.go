package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kipr/kipr-scratch/internal/codegen/generator"
	"github.com/kipr/kipr-scratch/internal/patch"
)

// Generation holds the inputs shared by every command that renders blocks.
type Generation struct {
	Whitelist []string `help:"Modules that get blocks (defaults to the standard libwallaby set)" env:"KIPR_SCRATCH_WHITELIST"`
	Overrides string   `help:"Per-function override table (JSON)" type:"path" env:"KIPR_SCRATCH_OVERRIDES"`
	Theme     string   `help:"Literal or procedural colour theme (JSON)" type:"path" env:"KIPR_SCRATCH_THEME"`
	Blacklist string   `help:"Functions hidden from the toolbox, keyed by module (JSON)" type:"path" env:"KIPR_SCRATCH_BLACKLIST"`
}

func (g Generation) Sources(buildRoot string) generator.Sources {
	return generator.Sources{
		BuildRoot: buildRoot,
		Whitelist: g.Whitelist,
		Overrides: g.Overrides,
		Theme:     g.Theme,
		Blacklist: g.Blacklist,
	}
}

type Blockify struct {
	BuildRoot string `arg:"" name:"build-root" help:"libwallaby build directory containing binding/xml/kipr.xml" type:"path"`
	OutputDir string `arg:"" name:"output-dir" help:"Directory the block files and default_toolbox.js are written to" type:"path"`

	Generation `embed:""`
}

// Run is called by Kong when the blockify command is executed.
func (b *Blockify) Run(logger *slog.Logger) error {
	logger.Info("Starting block generation", "build_root", b.BuildRoot, "output", b.OutputDir)

	res, err := generator.New(b.OutputDir, logger).Run(b.Sources(b.BuildRoot))
	if err != nil {
		return err
	}
	if interactive() {
		renderSkipped(os.Stdout, res.Skipped)
	}
	return nil
}

type Patch struct {
	ScratchBlocks string `arg:"" name:"scratch-blocks-dir" help:"scratch-blocks checkout to patch" type:"path"`
	BuildRoot     string `help:"libwallaby build directory" default:"libwallaby-build" type:"path" env:"KIPR_SCRATCH_BUILD_ROOT"`
	FlyoutWidth   int    `help:"Width of the vertical flyout in pixels" default:"300" env:"KIPR_SCRATCH_FLYOUT_WIDTH"`
	Restore       bool   `help:"Put the pristine vendored files back and exit"`

	Generation `embed:""`
}

// Run is called by Kong when the patch command is executed.
func (p *Patch) Run(logger *slog.Logger) error {
	patcher := patch.New(p.ScratchBlocks, logger)
	if p.Restore {
		return patcher.Restore()
	}

	md, err := generator.LoadMetadata(logger, p.Sources(p.BuildRoot))
	if err != nil {
		return err
	}
	gen, err := generator.Generate(logger, md)
	if err != nil {
		return err
	}
	res, err := patcher.Apply(patchInput(gen, p.FlyoutWidth))
	if err != nil {
		return fmt.Errorf("patch scratch-blocks: %w", err)
	}
	if interactive() {
		renderPatched(os.Stdout, res)
	}
	return nil
}

func patchInput(gen *generator.Result, flyoutWidth int) *patch.Input {
	return &patch.Input{
		Modules:     gen.Modules,
		Messages:    gen.Messages.Content,
		Theme:       gen.Theme,
		FlyoutWidth: flyoutWidth,
	}
}
