// Command tilecodec compresses integer and string streams into tiles and
// inspects them.
package main

import (
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

// Common state shared by all commands
var state = struct {
	flags  *flag.FlagSet
	stdout io.Writer
	stderr io.Writer
}{
	stdout: os.Stdout,
	stderr: os.Stderr,
}

// RootCommand creates root command in command tree
func RootCommand() *commander.Command {
	cmd := &commander.Command{
		UsageLine: "tilecodec",
		Short:     "tile entropy codec",
		Long: `
tilecodec compresses streams of small integers and strings into tiles.
Every stream becomes a named section, coded with an adaptive range coder
that uses the previous value as context and escapes long runs.`,
		Flag: *flag.NewFlagSet("tilecodec", flag.ExitOnError),
		Subcommands: []*commander.Command{
			makeCmdEncode(),
			makeCmdDecode(),
			makeCmdStats(),
			makeCmdVersion(),
		},
	}

	cmd.Flag.String("log-level", "info", "log level: debug, info, warn, error")
	cmd.Flag.String("log-format", "default", "log format: default or json")

	return cmd
}

// Run runs single command starting from root cmd with args
func Run(cmd *commander.Command, cmdArgs []string) int {
	cmd.Stdout = state.stdout
	cmd.Stderr = state.stderr

	flags, args, err := cmd.ParseFlags(cmdArgs)
	if err != nil {
		log.Error().Err(err).Msg("unable to parse flags")
		return 1
	}

	setupLogger(flags.Lookup("log-level").Value.String(), flags.Lookup("log-format").Value.String(), state.stderr)
	state.flags = flags

	if err = cmd.Dispatch(args); err != nil {
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}
