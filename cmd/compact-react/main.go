package main

import (
	"github.com/alecthomas/kong"

	"github.com/kxue43/compact-react/scaffold"
	"github.com/kxue43/compact-react/version"
)

func main() {
	var cli scaffold.Cmd

	ctx := kong.Parse(
		&cli,
		kong.Name("compact-react"),
		kong.Description("Create a React project from the no-cra template."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version.FromBuildInfo()},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
