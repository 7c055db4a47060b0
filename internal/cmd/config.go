package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/kipr/kipr-scratch/internal/codegen/meta"
	"github.com/kipr/kipr-scratch/internal/configpaths"
	"github.com/kipr/kipr-scratch/internal/validator"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a specific command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"blockify,patch,build,package"`
	Format  string `help:"Output format" enum:"json,yaml,yml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Tables  bool   `help:"Also write starter overrides, theme and blacklist tables next to the config"`
	Force   bool   `help:"Overwrite existing files"`
}

var configurable = map[string]func() any{
	"blockify": func() any { return &Blockify{} },
	"patch":    func() any { return &Patch{} },
	"build":    func() any { return &Build{} },
	"package":  func() any { return &Package{} },
}

// Starter table file names, written next to the config by --tables.
const (
	OverridesFile = "overrides.json"
	ThemeFile     = "theme.json"
	BlacklistFile = "blacklist.json"
)

// Template returns the config document of a command with its flags at their
// defaults. Keys follow the lookup rules of the matching kong loader: JSON
// uses snake_case, TOML uses the flag name, and YAML nests the flag names
// under the command.
func Template(command, format string) (map[string]any, error) {
	grammar, ok := configurable[command]
	if !ok {
		return nil, fmt.Errorf("unknown command %q; expected blockify, patch, build or package", command)
	}
	parser, err := kong.New(grammar(), kong.Name(command), kong.NoDefaultHelp())
	if err != nil {
		return nil, fmt.Errorf("load %s flags: %w", command, err)
	}

	values := make(map[string]any, len(parser.Model.Flags))
	for _, f := range parser.Model.Flags {
		// kong expands an empty path to the working directory.
		if f.Tag.Type == "path" && f.Default == "" {
			continue
		}
		key := f.Name
		if format == "json" {
			key = strings.ReplaceAll(key, "-", "_")
		}
		values[key] = flagDefault(f)
	}
	if format == "yaml" {
		return map[string]any{command: values}, nil
	}
	return values, nil
}

func flagDefault(f *kong.Flag) any {
	switch f.Target.Kind() {
	case reflect.Bool:
		b, _ := strconv.ParseBool(f.Default)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(f.Default, 10, 64)
		return n
	case reflect.Slice:
		if f.Default == "" {
			return []string{}
		}
		return strings.Split(f.Default, ",")
	default:
		return f.Default
	}
}

// Run writes the template and, with --tables, the starter config tables.
func (c *ConfigInit) Run() error {
	format := c.Format
	if format == "yml" {
		format = "yaml"
	}
	root, err := Template(c.Command, format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + format
	}
	if err := c.checkDest(dest); err != nil {
		return err
	}

	if c.Tables && c.Command != "package" {
		paths, err := c.writeTables(filepath.Dir(dest))
		if err != nil {
			return err
		}
		values := root
		if format == "yaml" {
			values = root[c.Command].(map[string]any)
		}
		for key, p := range paths {
			values[key] = p
		}
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(root, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(root)
	case "toml":
		data, err = toml.Marshal(root)
	default:
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	if err != nil {
		return fmt.Errorf("encode %s template: %w", format, err)
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func (c *ConfigInit) checkDest(path string) error {
	if c.Force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s exists; use --force to overwrite", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// writeTables writes the starter tables into dir and returns the config key
// of each one with its path.
func (c *ConfigInit) writeTables(dir string) (map[string]string, error) {
	tables := []struct {
		key, file, schema string
		doc               any
	}{
		{"overrides", OverridesFile, validator.Overrides, map[string]any{}},
		{"theme", ThemeFile, validator.ProceduralTheme, StarterTheme(meta.DefaultWhitelist)},
		{"blacklist", BlacklistFile, validator.Blacklist, StarterBlacklist(meta.DefaultWhitelist)},
	}
	out := make(map[string]string, len(tables))
	for _, tbl := range tables {
		data, err := json.MarshalIndent(tbl.doc, "", "  ")
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateFile(tbl.schema, data); err != nil {
			return nil, fmt.Errorf("starter %s: %w", tbl.file, err)
		}
		path := filepath.Join(dir, tbl.file)
		if err := c.checkDest(path); err != nil {
			return nil, err
		}
		if err := configpaths.EnsureDir(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return nil, err
		}
		out[tbl.key] = path
	}
	return out, nil
}

// StarterTheme spreads the modules evenly around the hue circle.
func StarterTheme(modules []string) map[string]any {
	hues := make(map[string]float64, len(modules))
	for i, m := range modules {
		hues[m] = math.Round(float64(i) * 360 / float64(len(modules)))
	}
	return map[string]any{
		"hues":                 hues,
		"primary_saturation":   70,
		"primary_lightness":    50,
		"secondary_saturation": 70,
		"secondary_lightness":  40,
		"tertiary_saturation":  70,
		"tertiary_lightness":   30,
	}
}

// StarterBlacklist hides nothing but lists every module so entries can be added in place.
func StarterBlacklist(modules []string) map[string][]string {
	out := make(map[string][]string, len(modules))
	for _, m := range modules {
		out[m] = []string{}
	}
	return out
}
