package main

import (
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

func tilecodecVersion(cmd *commander.Command, args []string) error {
	fmt.Fprintf(state.stdout, "tilecodec version: %s\n", Version)
	return nil
}

func makeCmdVersion() *commander.Command {
	return &commander.Command{
		Run:       tilecodecVersion,
		UsageLine: "version",
		Short:     "display version",
		Long: `
Shows tilecodec version.

ex:
  $ tilecodec version
`,
		Flag: *flag.NewFlagSet("tilecodec-version", flag.ExitOnError),
	}
}
