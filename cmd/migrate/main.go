// Command migrate manages the PostgreSQL schema.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "migrate")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&upCmd{}, "schema")
	commander.Register(&downCmd{}, "schema")
	commander.Register(&stepsCmd{}, "schema")
	commander.Register(&gotoCmd{}, "schema")
	commander.Register(&versionCmd{}, "schema")
	commander.Register(&forceCmd{}, "schema")
	commander.Register(&createCmd{}, "files")
	commander.Register(&listCmd{}, "files")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
