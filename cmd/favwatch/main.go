package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/favwatch/cmd/favwatch/commands"
	"git.home.luguber.info/inful/favwatch/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("favwatch"),
		kong.Description("Watches favorite characters' online presence and notifies on transitions."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, cli)
	ctx.FatalIfErrorf(err)
}
