package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/pipeline"
	"github.com/matzehuels/comicstrip/pkg/render"
	"github.com/matzehuels/comicstrip/pkg/render/styles"
)

// renderCommand creates the render command for drawing comic pages.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [storyboard]",
		Short: "Render a storyboard as a comic page",
		Long: `Render a storyboard as a comic page.

The storyboard (JSON or YAML) is segmented, laid out and drawn in one go.
SVG and JSON are produced natively; PNG and PDF are converted with
rsvg-convert. Without rsvg-convert, PNG falls back to a simpler built-in
rasterizer and PDF is unavailable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], c.options(opts), output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", "", "visual style: "+strings.Join(styles.Names(), ", ")+" (default simple)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG resolution multiplier (default 2)")
	cmd.Flags().BoolVar(&opts.Embed, "embed", false, "inline keyframes in the SVG as data URIs")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached pages and artifacts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	sb, err := panel.Load(input)
	if err != nil {
		return fmt.Errorf("load storyboard %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if slices.Contains(opts.Formats, pipeline.FormatPNG) && !render.Available() {
		printWarning("rsvg-convert not found; PNG output is a simplified preview")
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering page...")
	spinner.Start()

	result, err := runner.Execute(ctx, sb, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(output, input, opts.Formats)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
	}
	prog.done(fmt.Sprintf("Wrote %d file(s)", len(paths)))

	printSuccess("Render complete")
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Segments, result.Stats.Shelves, result.Stats.Overflows,
		result.CacheInfo.PageHit && result.CacheInfo.RenderHit)
	printDetail("Page ID: %s", result.ID)

	return nil
}

// outputPaths maps each format to its output file. A single format writes
// to output as given; several formats share a base path with per-format
// extensions. Without output, the base is the input path minus its
// extension. JSON pages are written as <base>.page.json.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + ".page.json" // never the storyboard itself
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path. If output is empty, it strips the
// extension from input. If output has a format extension (.svg, .pdf,
// etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
