// Package config declares the kong command tree of kipr-scratch.
package config

import (
	"github.com/kipr/kipr-scratch/internal/cmd"
	"github.com/kipr/kipr-scratch/internal/log"
)

type Log struct {
	Level  string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"KIPR_SCRATCH_LOG_LEVEL"`
	File   string `help:"Also write logs to this file" type:"path" env:"KIPR_SCRATCH_LOG_FILE"`
	Format string `help:"Log record format" default:"text" enum:"text,json" env:"KIPR_SCRATCH_LOG_FORMAT"`
}

func (l Log) Options() log.Options {
	return log.Options{Level: l.Level, File: l.File, Format: l.Format}
}

type CLI struct {
	ConfigFile string `name:"config" help:"Path to a JSON, YAML or TOML configuration file" type:"path" env:"KIPR_SCRATCH_CONFIG"`
	Log        Log    `embed:"" prefix:"log."`

	Blockify cmd.Blockify      `cmd:"" help:"Generate block definitions and the default toolbox from the libwallaby SWIG XML binding"`
	Patch    cmd.Patch         `cmd:"" help:"Patch the vendored scratch-blocks sources with the generated categories"`
	Build    cmd.Build         `cmd:"" help:"Build libwallaby, generate and patch blocks, build scratch-blocks and package the result"`
	Package  cmd.Package       `cmd:"" help:"Package a built scratch-blocks checkout"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
