// Command ledgerctl prints ledger views straight from the configured store.
//
// Usage:
//
//	ledgerctl balances -user <id>
//	ledgerctl totals -user <id> -year 2024
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "ledger")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
