package segment

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/comicstrip/pkg/transcript"
)

// SplitParallel is [Split] with the per-utterance chunking spread over up
// to workers goroutines (unbounded when workers <= 0). Chunking has no
// shared state between utterances; pause insertion depends on the segment
// emitted just before, so results are reduced strictly in input order. The
// output is identical to Split.
func SplitParallel(ctx context.Context, utts []transcript.Utterance, opts Options, workers int) ([]Segment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := transcript.Validate(utts); err != nil {
		return nil, err
	}

	chunks := make([][]Segment, len(utts))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, u := range utts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := chunk(i, u, opts)
			if err != nil {
				return err
			}
			chunks[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Segment
	for _, c := range chunks {
		out = appendUtterance(out, c, opts.PauseLen)
	}
	return out, nil
}
