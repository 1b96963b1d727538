package main

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/egonelbre/exp-tile-compression/arithcode"
	"github.com/egonelbre/exp-tile-compression/tile"
)

// parseInput parses a section argument of the form name[:mode]=file.
func parseInput(arg string, defaultMode tile.Mode) (name string, mode tile.Mode, path string, err error) {
	spec, path, ok := strings.Cut(arg, "=")
	if !ok || spec == "" || path == "" {
		return "", 0, "", errors.Errorf("invalid section %q, expected name[:mode]=file", arg)
	}

	name, modeName, hasMode := strings.Cut(spec, ":")
	mode = defaultMode
	if hasMode {
		mode, err = tile.ParseMode(modeName)
		if err != nil {
			return "", 0, "", errors.Wrapf(err, "section %q", name)
		}
	}
	return name, mode, path, nil
}

func tilecodecEncode(cmd *commander.Command, args []string) error {
	if len(args) < 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	defaultMode, err := tile.ParseMode(state.flags.Lookup("mode").Value.String())
	if err != nil {
		return err
	}
	opts := arithcode.Options{
		MaxValue:     state.flags.Lookup("max-value").Value.Get().(int),
		MinRunLength: state.flags.Lookup("min-run").Value.Get().(int),
	}
	workers := state.flags.Lookup("workers").Value.Get().(int)

	output := args[0]
	inputs := make([]tile.Input, 0, len(args)-1)
	for _, arg := range args[1:] {
		name, mode, path, err := parseInput(arg, defaultMode)
		if err != nil {
			return err
		}

		in := tile.Input{Name: name, Mode: mode, Options: opts}
		if mode == tile.ModeStrings {
			in.Strings, err = readStrings(path)
		} else {
			in.Values, err = readValues(path)
		}
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	t, err := tile.Build(context.Background(), inputs, workers)
	if err != nil {
		return errors.Wrap(err, "unable to build tile")
	}

	for i := range t.Sections {
		s := &t.Sections[i]
		log.Debug().
			Str("section", s.Name).
			Stringer("mode", s.Mode).
			Int("count", s.Count).
			Int64("bits", s.Bits).
			Msg("section compressed")
	}

	data := t.Marshal()
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrapf(err, "unable to write %s", output)
	}

	log.Info().Str("file", output).Int("sections", len(t.Sections)).Int("bytes", len(data)).Msg("tile written")
	return nil
}

func makeCmdEncode() *commander.Command {
	cmd := &commander.Command{
		Run:       tilecodecEncode,
		UsageLine: "encode <output.tile> <name>[:<mode>]=<file> ...",
		Short:     "compress streams into a tile",
		Long: `
Encode reads every input file as a section of the tile. Files for the
runlength and context modes hold whitespace separated non-negative
integers, files for the strings mode hold one string per line.

ex:
  $ tilecodec encode -mode=runlength area.tile elevation=elevation.txt tags:strings=tags.txt
`,
		Flag: *flag.NewFlagSet("tilecodec-encode", flag.ExitOnError),
	}

	cmd.Flag.String("mode", tile.ModeRunLength.String(), "default section mode: runlength, context or strings")
	cmd.Flag.Int("max-value", -1, "largest value of runlength sections, negative derives it from the data")
	cmd.Flag.Int("min-run", arithcode.DefaultMinRunLength, "shortest run coded with the run escape")
	cmd.Flag.Int("workers", 0, "number of sections compressed concurrently, 0 for no limit")

	return cmd
}
