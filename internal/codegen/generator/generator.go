package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kipr/kipr-scratch/internal/codegen/generator/blocks"
	"github.com/kipr/kipr-scratch/internal/codegen/generator/messages"
	"github.com/kipr/kipr-scratch/internal/codegen/generator/toolbox"
	"github.com/kipr/kipr-scratch/internal/codegen/meta"
	"github.com/kipr/kipr-scratch/internal/codegen/overrides"
	"github.com/kipr/kipr-scratch/internal/codegen/scanner"
	"github.com/kipr/kipr-scratch/internal/codegen/theme"
)

// Sources names the inputs of one generation run. Empty config paths mean
// "not configured": no overrides, no blacklist, fallback colours.
type Sources struct {
	BuildRoot string
	Whitelist []string
	Overrides string
	Theme     string
	Blacklist string
}

// Result holds every artifact of one catalog pass. The patcher consumes
// Messages and Modules; Blocks and Toolbox are written to the output directory.
type Result struct {
	Blocks   []meta.Artifact
	Toolbox  meta.Artifact
	Messages meta.Artifact
	Modules  []string
	Skipped  []meta.SkippedFunction
	Theme    *theme.Theme
}

// Files returns the artifacts written by Write, in write order.
func (r *Result) Files() []meta.Artifact {
	return append(append([]meta.Artifact(nil), r.Blocks...), r.Toolbox)
}

type Generator struct {
	outputDir string
	logger    *slog.Logger
}

func New(outputDir string, logger *slog.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Run loads the metadata, generates every artifact and writes the block and
// toolbox files to the output directory.
func (g *Generator) Run(src Sources) (*Result, error) {
	md, err := LoadMetadata(g.logger, src)
	if err != nil {
		return nil, err
	}
	res, err := Generate(g.logger, md)
	if err != nil {
		return nil, err
	}
	if err := g.Write(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *Generator) Write(res *Result) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, art := range res.Files() {
		path := filepath.Join(g.outputDir, art.Name)
		if err := os.WriteFile(path, art.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", art.Name, err)
		}
		g.logger.Debug("Wrote artifact", "path", path, "bytes", len(art.Content))
	}
	g.logger.Info("Block generation complete", "output", g.outputDir, "files", len(res.Files()))
	return nil
}

// Generate renders all artifacts from md without touching the file system.
func Generate(logger *slog.Logger, md *meta.Metadata) (*Result, error) {
	res := &Result{Theme: md.Theme}
	for _, m := range md.Whitelisted() {
		res.Modules = append(res.Modules, m.Name)
	}
	res.Modules = md.Theme.Order(res.Modules)

	var err error
	if res.Blocks, res.Skipped, err = blocks.Generate(logger, md); err != nil {
		return nil, fmt.Errorf("generate blocks: %w", err)
	}

	tb, err := toolbox.Generate(logger, md)
	if err != nil {
		return nil, fmt.Errorf("generate toolbox: %w", err)
	}
	res.Toolbox = tb[0]
	res.Messages = messages.Generate(logger, md)[0]
	return res, nil
}

// LoadMetadata scans the binding XML under src.BuildRoot and loads the
// configured override, theme and blacklist tables.
func LoadMetadata(logger *slog.Logger, src Sources) (*meta.Metadata, error) {
	md := &meta.Metadata{Whitelist: src.Whitelist}
	if len(md.Whitelist) == 0 {
		md.Whitelist = meta.DefaultWhitelist
	}

	logger.Info("Scanning binding XML", "build_root", src.BuildRoot)
	catalog, err := scanner.ScanBindingXML(logger, scanner.BindingPath(src.BuildRoot))
	if err != nil {
		return nil, fmt.Errorf("failed to scan binding: %w", err)
	}
	md.Catalog = catalog
	logger.Info("Found modules", "count", len(catalog.Modules), "functions", catalog.FunctionCount())

	for _, name := range md.Whitelist {
		if _, ok := catalog.Module(name); !ok {
			logger.Warn("Whitelisted module not present in binding", "module", name)
		}
	}

	// Without an override table every block uses the void/number shape rule.
	// Without a theme every category gets the fallback colours.
	if src.Overrides == "" {
		logger.Warn("No override table configured; using default block shapes", "hint", "kipr-scratch config init --tables")
	} else {
		if md.Overrides, err = overrides.Load(src.Overrides); err != nil {
			return nil, err
		}
		logger.Debug("Loaded overrides", "functions", md.Overrides.Len())
	}
	if src.Theme == "" {
		logger.Warn("No theme configured; using fallback category colours", "hint", "kipr-scratch config init --tables")
	} else {
		if md.Theme, err = theme.Load(src.Theme); err != nil {
			return nil, err
		}
		logger.Debug("Loaded theme", "procedural", md.Theme.Procedural())
	}
	if src.Blacklist != "" {
		if md.Blacklist, err = meta.LoadBlacklist(src.Blacklist); err != nil {
			return nil, err
		}
		logger.Debug("Loaded blacklist", "modules", len(md.Blacklist))
	}
	return md, nil
}
