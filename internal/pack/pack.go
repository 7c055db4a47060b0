// Package pack assembles the distributable kipr-scratch directory from a
// built scratch-blocks checkout.
package pack

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"

	"github.com/kipr/kipr-scratch/internal/codegen/common"
)

// DirName is the default package directory name.
const DirName = "kipr-scratch"

// File maps a scratch-blocks build output to its place in the package.
type File struct {
	Source string // relative to the scratch-blocks root, slash separated
	Dest   string // relative to the package root
}

// Files are the compiled scratch-blocks outputs shipped in the package.
var Files = []File{
	{Source: "blockly_compressed_vertical.js", Dest: "blockly_compressed_vertical.js"},
	{Source: "blocks_compressed_vertical.js", Dest: "blocks_compressed_vertical.js"},
	{Source: "blocks_compressed.js", Dest: "blocks_compressed.js"},
	{Source: "msg/messages.js", Dest: "messages.js"},
	{Source: "msg/scratch_msgs.js", Dest: "scratch_msgs.js"},
}

// MediaDir is copied recursively.
const MediaDir = "media"

// Manifest is the package.json written into the package root.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type Options struct {
	ScratchBlocks string
	Output        string
	Version       string // defaults to common.GetVersion
}

// Package copies the build outputs and media tree into opts.Output and writes
// package.json and README.md next to them.
func Package(logger *slog.Logger, opts Options) (*Manifest, error) {
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return nil, fmt.Errorf("create package directory: %w", err)
	}

	for _, f := range Files {
		src := filepath.Join(opts.ScratchBlocks, filepath.FromSlash(f.Source))
		dst := filepath.Join(opts.Output, filepath.FromSlash(f.Dest))
		if err := copy.Copy(src, dst); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Source, err)
		}
		logger.Debug("Copied build output", "source", f.Source, "dest", f.Dest)
	}

	media := filepath.Join(opts.ScratchBlocks, MediaDir)
	if err := copy.Copy(media, filepath.Join(opts.Output, MediaDir), copy.Options{PreserveTimes: true}); err != nil {
		return nil, fmt.Errorf("copy media: %w", err)
	}

	version := opts.Version
	if version == "" {
		v, err := common.GetVersion()
		if err != nil {
			return nil, fmt.Errorf("get version: %w", err)
		}
		version = v
	}
	manifest := &Manifest{
		Name:        DirName,
		Version:     version,
		Description: "KIPR's fork of Scratch 3.0",
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode package.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(opts.Output, "package.json"), append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write package.json: %w", err)
	}

	if err := common.GenerateReadme(logger, opts.Output); err != nil {
		return nil, err
	}

	logger.Info("Packaged kipr-scratch", "dir", opts.Output, "version", manifest.Version)
	return manifest, nil
}
