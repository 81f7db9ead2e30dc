package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/pipeline"
	"github.com/matzehuels/comicstrip/pkg/render/sink"
)

// layoutCommand creates the layout command for composing a page.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [storyboard]",
		Short: "Compose a storyboard into a page layout",
		Long: `Compose a storyboard into a page layout.

The storyboard (JSON or YAML) holds the transcript utterances and the
keyframes to draw under them. The output is the same page JSON that
'render -f json' produces: every panel's slot, drawn rectangle, subject
and caption box.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], c.options(opts), output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.page.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the storyboard, composes the page, and writes its JSON.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	sb, err := panel.Load(input)
	if err != nil {
		return fmt.Errorf("load storyboard %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Composing page...")
	spinner.Start()

	composed, cacheHit, err := runner.ComposeWithCacheInfo(ctx, sb, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compose page: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderJSON(composed.Page, sink.WithJSONID(composed.StoryboardHash))
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".page.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	pg := composed.Page
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(pg.Entries), pg.Shelves(), pg.Overflows(), cacheHit)
	printNewline()
	printNextStep("Render", "comicstrip render "+input)

	return nil
}
