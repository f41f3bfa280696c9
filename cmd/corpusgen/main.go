package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/corpusgen/cmd/corpusgen/commands"
	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("corpusgen"),
		kong.Description("Build and maintain the generated example corpus"),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
