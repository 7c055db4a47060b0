package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const readmeTemplate = `# kipr-scratch

KIPR's fork of Scratch 3.0 blocks, generated from the libwallaby C API.

## Contents

- blockly_compressed_vertical.js - the Blockly/scratch-blocks core
- blocks_compressed_vertical.js, blocks_compressed.js - block definitions, including one
  category per libwallaby module
- messages.js, scratch_msgs.js - message catalogs
- media/ - block and workspace icons

This package is produced by ` + "`kipr-scratch build`" + `; do not edit it by hand.
`

func GenerateReadme(logger *slog.Logger, outputDir string) error {
	readmePath := filepath.Join(outputDir, "README.md")

	if err := os.WriteFile(readmePath, []byte(readmeTemplate), 0644); err != nil {
		return fmt.Errorf("write README.md: %w", err)
	}

	logger.Debug("Generated README.md", "path", readmePath)
	return nil
}
