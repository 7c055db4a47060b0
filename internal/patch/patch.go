// Package patch rewrites the vendored scratch-blocks sources so they know
// about the generated libwallaby categories.
//
// Every rule works from a pristine backup (<file>.orig) that is created on
// first contact, so applying the patches any number of times yields the same
// bytes. Insertion and replacement points are located by textual markers; a
// marker that cannot be found is reported as a *MarkerError.
package patch

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/kipr/kipr-scratch/internal/codegen/theme"
)

// BackupSuffix is appended to a vendored file to name its pristine copy.
const BackupSuffix = ".orig"

// Input is what the rules need from one generation pass.
type Input struct {
	Modules     []string // generated categories, in toolbox order
	Messages    []byte   // message catalog appended to msg/messages.js
	Theme       *theme.Theme
	FlyoutWidth int
}

// MarkerError is returned when a vendored file no longer contains a marker
// a rule anchors on.
type MarkerError struct {
	File   string
	Marker string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s: marker %q not found", e.File, e.Marker)
}

// FileResult describes one patched file.
type FileResult struct {
	Path          string `json:"path"`
	Digest        string `json:"digest"` // hex blake2b-256 of the patched content
	BackupCreated bool   `json:"backupCreated"`
}

type Result struct {
	Files []FileResult `json:"files"`
}

// Digest returns the digest recorded for path, relative to the scratch-blocks root.
func (r *Result) Digest(path string) (string, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f.Digest, true
		}
	}
	return "", false
}

type Patcher struct {
	root   string
	rules  []Rule
	logger *slog.Logger
}

// New returns a patcher for the scratch-blocks checkout at root.
func New(root string, logger *slog.Logger) *Patcher {
	return &Patcher{
		root:   root,
		rules:  Rules(),
		logger: logger,
	}
}

// Apply runs every rule against the pristine content of its file and
// overwrites the file with the result.
func (p *Patcher) Apply(in *Input) (*Result, error) {
	res := &Result{}
	for _, rule := range p.rules {
		target := filepath.Join(p.root, filepath.FromSlash(rule.Path))
		created, err := ensureBackup(target)
		if err != nil {
			return nil, err
		}
		if created {
			p.logger.Debug("Created pristine backup", "file", rule.Path)
		}

		pristine, err := os.ReadFile(target + BackupSuffix)
		if err != nil {
			return nil, fmt.Errorf("read backup of %s: %w", rule.Path, err)
		}
		out, err := rule.Apply(string(pristine), in)
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", rule.Path, err)
		}
		if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", rule.Path, err)
		}

		sum := blake2b.Sum256([]byte(out))
		res.Files = append(res.Files, FileResult{
			Path:          rule.Path,
			Digest:        hex.EncodeToString(sum[:]),
			BackupCreated: created,
		})
		p.logger.Info("Patched vendored file", "file", rule.Path, "bytes", len(out))
	}
	return res, nil
}

// Restore moves every backup back over its patched file.
func (p *Patcher) Restore() error {
	for _, rule := range p.rules {
		target := filepath.Join(p.root, filepath.FromSlash(rule.Path))
		if err := os.Rename(target+BackupSuffix, target); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("restore %s: %w", rule.Path, err)
		}
		p.logger.Info("Restored vendored file", "file", rule.Path)
	}
	return nil
}

func ensureBackup(target string) (bool, error) {
	backup := target + BackupSuffix
	if _, err := os.Stat(backup); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", backup, err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", target, err)
	}
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", backup, err)
	}
	return true, nil
}
