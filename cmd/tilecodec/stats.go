package main

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/egonelbre/exp-tile-compression/tile"
)

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// rawSection returns the decoded section as bytes: values as uvarints and
// strings zero terminated.
func rawSection(s *tile.Section) ([]byte, error) {
	var raw []byte
	if s.Mode == tile.ModeStrings {
		values, err := s.Strings()
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			raw = append(raw, v...)
			raw = append(raw, 0)
		}
		return raw, nil
	}

	values, err := s.Values()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		raw = binary.AppendUvarint(raw, uint64(v))
	}
	return raw, nil
}

// gzipSize returns the size of data compressed with gzip at the best level.
func gzipSize(data []byte) (int64, error) {
	var counter countingWriter
	w, err := pgzip.NewWriterLevel(&counter, pgzip.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return counter.n, nil
}

func tilecodecStats(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	t, err := readTile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(state.stdout, "%-16s %-10s %10s %10s %10s %10s %8s\n",
		"section", "mode", "count", "raw", "gzip", "coded", "bits/val")

	var totalRaw, totalGzip, totalCoded int64
	for i := range t.Sections {
		s := &t.Sections[i]

		raw, err := rawSection(s)
		if err != nil {
			return errors.Wrapf(err, "unable to decode section %q", s.Name)
		}
		gz, err := gzipSize(raw)
		if err != nil {
			return errors.Wrap(err, "gzip baseline")
		}

		bitsPerValue := 0.0
		if s.Count > 0 {
			bitsPerValue = float64(s.Bits) / float64(s.Count)
		}
		fmt.Fprintf(state.stdout, "%-16s %-10s %10d %10d %10d %10d %8.3f\n",
			s.Name, s.Mode, s.Count, len(raw), gz, len(s.Payload), bitsPerValue)

		totalRaw += int64(len(raw))
		totalGzip += gz
		totalCoded += int64(len(s.Payload))
	}

	fmt.Fprintf(state.stdout, "%-16s %-10s %10s %10d %10d %10d\n",
		"total", "", "", totalRaw, totalGzip, totalCoded)
	return nil
}

func makeCmdStats() *commander.Command {
	return &commander.Command{
		Run:       tilecodecStats,
		UsageLine: "stats <input.tile>",
		Short:     "show compression statistics of a tile",
		Long: `
Stats lists the sections of a tile with their raw size, the size the same
data takes with gzip and the coded size, all in bytes.

ex:
  $ tilecodec stats area.tile
`,
		Flag: *flag.NewFlagSet("tilecodec-stats", flag.ExitOnError),
	}
}
