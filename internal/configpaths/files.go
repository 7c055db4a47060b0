// Package configpaths locates kipr-scratch configuration files.
//
// Lookup order, first match wins per loader: the --config path, then
// kipr-scratch.* in the checkout being built, then config.* in the user
// config directory.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	AppName = "kipr-scratch"

	// ConfigEnv names an explicit config file when --config is absent.
	ConfigEnv = "KIPR_SCRATCH_CONFIG"
)

// Candidates lists the config files to try, grouped by kong loader.
type Candidates struct {
	JSON []string
	YAML []string
	TOML []string
}

func (c *Candidates) add(path string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c.YAML = append(c.YAML, path)
	case ".toml":
		c.TOML = append(c.TOML, path)
	default:
		c.JSON = append(c.JSON, path)
	}
}

func (c *Candidates) addBase(base string) {
	for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
		c.add(base + ext)
	}
}

// UserConfigDir returns the per-user configuration directory of kipr-scratch.
func UserConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, AppName), nil
		}
		return "", errors.New("AppData not set")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Find builds the candidate list. An explicit path is routed to the loader
// matching its extension, defaulting to JSON.
func Find(explicit, checkout string) Candidates {
	var c Candidates
	if explicit != "" {
		c.add(explicit)
	}
	if checkout != "" {
		c.addBase(filepath.Join(checkout, AppName))
	}
	if dir, err := UserConfigDir(); err == nil {
		c.addBase(filepath.Join(dir, "config"))
	}
	return c
}

// EnsureDir creates the parent directory of filePath.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// ExplicitConfig returns the --config value from raw arguments, or ConfigEnv
// when the flag is absent. It runs before kong so the file can be handed to
// kong.Configuration.
func ExplicitConfig(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(ConfigEnv)
}
