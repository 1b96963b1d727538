package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func tilecodecDecode(cmd *commander.Command, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	t, err := readTile(args[0])
	if err != nil {
		return err
	}

	s, ok := t.Section(args[1])
	if !ok {
		return errors.Errorf("section %q not found in %s", args[1], args[0])
	}

	text, err := formatSection(s)
	if err != nil {
		return errors.Wrapf(err, "unable to decode section %q", s.Name)
	}

	if len(args) == 2 {
		_, err = io.WriteString(state.stdout, text)
		return err
	}

	if err := os.WriteFile(args[2], []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "unable to write %s", args[2])
	}
	log.Info().Str("section", s.Name).Str("file", args[2]).Int("count", s.Count).Msg("section decoded")
	return nil
}

func makeCmdDecode() *commander.Command {
	return &commander.Command{
		Run:       tilecodecDecode,
		UsageLine: "decode <input.tile> <section> [<output>]",
		Short:     "decompress a section of a tile",
		Long: `
Decode writes the content of the section in the format accepted by encode,
to the output file or to stdout.

ex:
  $ tilecodec decode area.tile elevation elevation.txt
`,
		Flag: *flag.NewFlagSet("tilecodec-decode", flag.ExitOnError),
	}
}
