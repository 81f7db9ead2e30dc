package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/comicstrip/pkg/pipeline"
	"github.com/matzehuels/comicstrip/pkg/transcript"
)

// segmentCommand creates the segment command for inspecting captions.
func (c *CLI) segmentCommand() *cobra.Command {
	var asJSON bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "segment [transcript.json]",
		Short: "Split a transcript into caption segments",
		Long: `Split a transcript into caption segments.

The transcript is either a JSON array of utterances or a transcription
response of the form {"results": {"utterances": [...]}}. Each utterance
needs start, end, transcript and speaker. Long utterances are wrapped into
several segments; silent gaps become pause segments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSegment(cmd.Context(), cmd, args[0], opts, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print segments as JSON")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "characters per caption segment (default 50)")
	cmd.Flags().Var(optionalInt{&opts.MinWidth}, "min-width", "shortest trailing caption chunk (default 20)")
	cmd.Flags().Var(optionalFloat{&opts.PauseLen}, "pause", "seconds of silence that insert a pause segment (default 0.5)")

	return cmd
}

func (c *CLI) runSegment(ctx context.Context, cmd *cobra.Command, input string, opts pipeline.Options, asJSON bool) error {
	utts, err := transcript.Load(input)
	if err != nil {
		return fmt.Errorf("load transcript %s: %w", input, err)
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	segs, err := runner.Segment(ctx, utts, c.options(opts))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(segs)
	}

	printSegments(out, segs)
	c.Logger.Debug("segmented", "utterances", len(utts), "segments", len(segs))
	return nil
}
