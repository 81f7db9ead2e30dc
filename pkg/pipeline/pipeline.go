// Package pipeline provides the core comic pipeline for comicstrip.
//
// This package implements the complete segment → compose → render pipeline
// shared by the CLI and the HTTP server, so both entry points produce the
// same pages from the same storyboard and options.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Segment: split the storyboard's utterances into caption segments
//  2. Compose: attach keyframes to segments, pack them into shelves and
//     place the captions
//  3. Render: generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	sb, err := panel.Load("storyboard.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, sb, pipeline.Options{
//	    Formats: []string{"svg"},
//	    Style:   "comic",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	segs, err := runner.Segment(ctx, sb.Utterances, opts)
//	pg, err := runner.Compose(ctx, sb, opts)
//	artifacts, err := runner.Render(ctx, pg, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/comicstrip/pkg/cache"
	"github.com/matzehuels/comicstrip/pkg/caption"
	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/page"
	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/render/styles"
	"github.com/matzehuels/comicstrip/pkg/segment"
	"github.com/matzehuels/comicstrip/pkg/shelf"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultStyle is the default visual style.
	DefaultStyle = "simple"

	// DefaultScale is the default PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists the supported output formats in display order.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the comic pipeline. Zero values
// select the defaults. Parameters for which zero is itself a valid setting
// are pointers, and nil selects their default. This struct supports JSON
// serialization for API requests.
type Options struct {
	// Segment options
	Width    int     `json:"width,omitempty"`     // characters per caption segment
	MinWidth *int     `json:"min_width,omitempty"` // shortest trailing chunk
	PauseLen *float64 `json:"pause,omitempty"`     // silent gap that inserts a pause panel

	// Layout options
	PageWidth   float64 `json:"page_width,omitempty"`
	ShelfHeight float64 `json:"shelf_height,omitempty"`
	MinArea     float64 `json:"min_area,omitempty"`
	Tolerance   float64 `json:"tolerance,omitempty"`
	Padding     *float64 `json:"padding,omitempty"`
	Border      *float64 `json:"border,omitempty"`
	LineWidth   int     `json:"line_width,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Embed   bool     `json:"embed,omitempty"` // inline images as data URIs in SVG output

	Refresh bool `json:"refresh,omitempty"` // bypass cached pages and artifacts

	// Runtime options (not serialized)
	Workers int         `json:"-"` // per-stage concurrency, 0 for unbounded
	Logger  *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this rendered page (a random UUID).
	ID string

	// StoryboardHash is the content hash of the storyboard.
	StoryboardHash string

	// Segments are the caption segments, pauses included.
	Segments []segment.Segment

	// Page is the composed layout.
	Page page.Page

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Utterances  int
	Segments    int
	Shelves     int
	Overflows   int
	SegmentTime time.Duration
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PageHit   bool // Whether the composed page came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateOutputFormat(format, Formats...)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	_, err := styles.ByName(style)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and checks every stage's options.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSegment(); err != nil {
		return err
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetSegmentDefaults sets default values for segmentation.
func (o *Options) SetSegmentDefaults() {
	if o.Width == 0 {
		o.Width = segment.DefaultWidth
	}
	if o.MinWidth == nil {
		o.MinWidth = Ptr(segment.DefaultMinWidth)
	}
	if o.PauseLen == nil {
		o.PauseLen = Ptr(segment.DefaultPauseLen)
	}
	o.setLogger()
}

// ValidateForSegment sets defaults and validates segmentation options.
func (o *Options) ValidateForSegment() error {
	o.SetSegmentDefaults()
	return o.SegmentOptions().Validate()
}

// SetComposeDefaults sets default values for page composition.
func (o *Options) SetComposeDefaults() {
	o.SetSegmentDefaults()
	if o.PageWidth == 0 {
		o.PageWidth = shelf.DefaultPageWidth
	}
	if o.ShelfHeight == 0 {
		o.ShelfHeight = shelf.DefaultShelfHeight
	}
	if o.MinArea == 0 {
		o.MinArea = shelf.DefaultMinArea
	}
	if o.Tolerance == 0 {
		o.Tolerance = shelf.DefaultTolerance
	}
	if o.Padding == nil {
		o.Padding = Ptr(page.DefaultPadding)
	}
	if o.Border == nil {
		o.Border = Ptr(page.DefaultBorder)
	}
	if o.LineWidth == 0 {
		o.LineWidth = caption.DefaultLineWidth
	}
}

// ValidateForCompose sets defaults and validates composition options.
func (o *Options) ValidateForCompose() error {
	o.SetComposeDefaults()
	if err := o.SegmentOptions().Validate(); err != nil {
		return err
	}
	return o.PageOptions().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender sets defaults and validates rendering options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return ValidateStyle(o.Style)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Ptr returns a pointer to v, for the optional fields of [Options].
func Ptr[T any](v T) *T { return &v }

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// SegmentOptions returns the segmenter configuration.
func (o *Options) SegmentOptions() segment.Options {
	return segment.Options{
		Width:    o.Width,
		MinWidth: valueOr(o.MinWidth, segment.DefaultMinWidth),
		PauseLen: valueOr(o.PauseLen, segment.DefaultPauseLen),
	}
}

// PageOptions returns the page composition configuration.
func (o *Options) PageOptions() page.Options {
	opts := page.DefaultOptions()
	opts.Shelf = shelf.Options{
		PageWidth:   o.PageWidth,
		ShelfHeight: o.ShelfHeight,
		MinArea:     o.MinArea,
		Tolerance:   o.Tolerance,
	}
	opts.Padding = valueOr(o.Padding, page.DefaultPadding)
	opts.Border = valueOr(o.Border, page.DefaultBorder)
	opts.LineWidth = o.LineWidth
	opts.Workers = o.Workers
	return opts
}

// PageKeyOpts returns cache key options for page composition.
func (o *Options) PageKeyOpts() cache.PageKeyOpts {
	return cache.PageKeyOpts{
		Width:       o.Width,
		MinWidth:    valueOr(o.MinWidth, segment.DefaultMinWidth),
		PauseLen:    valueOr(o.PauseLen, segment.DefaultPauseLen),
		PageWidth:   o.PageWidth,
		ShelfHeight: o.ShelfHeight,
		MinArea:     o.MinArea,
		Tolerance:   o.Tolerance,
		Padding:     valueOr(o.Padding, page.DefaultPadding),
		Border:      valueOr(o.Border, page.DefaultBorder),
		LineWidth:   o.LineWidth,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Style: o.Style}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatSVG:
		k.Embed = o.Embed
	}
	return k
}

// storyboardKey is the part of a storyboard that determines its page.
type storyboardKey struct {
	Storyboard *panel.Storyboard `json:"storyboard"`
	Images     []imageStamp      `json:"images,omitempty"`
}

type imageStamp struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}
