package main

import (
	"os"

	"github.com/kipr/kipr-scratch/internal/cmd"
	"github.com/kipr/kipr-scratch/internal/config"
	"github.com/kipr/kipr-scratch/internal/configpaths"
	"github.com/kipr/kipr-scratch/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	wd, _ := os.Getwd()
	paths := configpaths.Find(configpaths.ExplicitConfig(os.Args[1:]), wd)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("kipr-scratch"),
		kong.Description("Generate Scratch blocks for the KIPR libwallaby API and build the kipr-scratch package"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, paths.JSON...),
		kong.Configuration(kongyaml.Loader, paths.YAML...),
		kong.Configuration(kongtoml.Loader, paths.TOML...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Options())
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)

	err = ctx.Run()
	if hint := cmd.Hint(err); hint != "" {
		logger.Error(hint)
	}
	ctx.FatalIfErrorf(err)
}
