package tile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/egonelbre/exp-tile-compression/arithcode"
)

// Input describes a section to compress.
type Input struct {
	Name    string
	Mode    Mode
	Values  []int    // Used by ModeRunLength and ModeContext
	Strings []string // Used by ModeStrings
	Options arithcode.Options
}

func (in *Input) compress() (Section, error) {
	if in.Mode == ModeStrings {
		return NewStringSection(in.Name, in.Strings)
	}
	return NewSection(in.Name, in.Mode, in.Values, in.Options)
}

// Build compresses inputs into a tile. Every section has its own bit
// channel and coder, so up to workers sections are compressed
// concurrently; workers <= 0 means no limit. Sections keep input order.
func Build(ctx context.Context, inputs []Input, workers int) (*Tile, error) {
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.Name] {
			return nil, fmt.Errorf("duplicate section %q", in.Name)
		}
		seen[in.Name] = true
	}

	sections := make([]Section, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := inputs[i].compress()
			if err != nil {
				return err
			}
			sections[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Tile{Version: Version, Sections: sections}, nil
}
