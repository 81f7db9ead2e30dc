package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/comicstrip/pkg/cache"
	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/observability"
	"github.com/matzehuels/comicstrip/pkg/page"
	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/segment"
	"github.com/matzehuels/comicstrip/pkg/transcript"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete segment → compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, sb *panel.Storyboard, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		ID:        uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Utterances = len(sb.Utterances)

	// Stages 1 and 2: Segment and Compose
	composeStart := time.Now()
	composed, hit, err := r.ComposeWithCacheInfo(ctx, sb, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.StoryboardHash = composed.StoryboardHash
	result.Segments = composed.Segments
	result.Page = composed.Page
	result.Stats.Segments = len(composed.Segments)
	result.Stats.Shelves = composed.Page.Shelves()
	result.Stats.Overflows = composed.Page.Overflows()
	result.Stats.SegmentTime = composed.SegmentTime
	result.Stats.ComposeTime = time.Since(composeStart) - composed.SegmentTime
	result.CacheInfo.PageHit = hit

	r.Logger.Info("composed page",
		"id", result.ID,
		"segments", result.Stats.Segments,
		"shelves", result.Stats.Shelves,
		"overflows", result.Stats.Overflows,
		"cached", hit,
		"duration", time.Since(composeStart))

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, composed.Page, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"id", result.ID,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Segment splits utterances into caption segments.
func (r *Runner) Segment(ctx context.Context, utts []transcript.Utterance, opts Options) ([]segment.Segment, error) {
	if err := opts.ValidateForSegment(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnSegmentStart(ctx, len(utts))
	start := time.Now()
	segs, err := segment.SplitParallel(ctx, utts, opts.SegmentOptions(), opts.Workers)
	hooks.OnSegmentComplete(ctx, len(segs), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("segmented transcript",
		"utterances", len(utts),
		"segments", len(segs),
		"duration", time.Since(start))
	return segs, nil
}

// Composed is a laid-out page together with the segments it was built from.
// It is the unit stored in the page cache.
type Composed struct {
	StoryboardHash string            `json:"storyboard_hash"`
	Segments       []segment.Segment `json:"segments"`
	Page           page.Page         `json:"page"`
	SegmentTime    time.Duration     `json:"-"`
}

// ComposeWithCacheInfo segments the storyboard, attaches its frames and lays
// out the page, returning whether the result came from the cache.
func (r *Runner) ComposeWithCacheInfo(ctx context.Context, sb *panel.Storyboard, opts Options) (Composed, bool, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return Composed{}, false, err
	}
	r.applyLogger(&opts)

	sbHash, err := StoryboardHash(sb)
	if err != nil {
		return Composed{}, false, err
	}
	cacheKey := r.Keyer.PageKey(sbHash, opts.PageKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Composed
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, cacheKey)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("page cache lookup failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKey)
	}

	segStart := time.Now()
	segs, err := r.Segment(ctx, sb.Utterances, opts)
	if err != nil {
		return Composed{}, false, err
	}
	segTime := time.Since(segStart)

	pg, err := r.composePage(ctx, sb, segs, opts)
	if err != nil {
		return Composed{}, false, err
	}
	composed := Composed{StoryboardHash: sbHash, Segments: segs, Page: pg, SegmentTime: segTime}

	// Cache the result
	if data, err := json.Marshal(composed); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLPage); err != nil {
			opts.Logger.Warn("page cache store failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return composed, false, nil
}

// Compose is a convenience wrapper that calls ComposeWithCacheInfo and
// returns only the page.
func (r *Runner) Compose(ctx context.Context, sb *panel.Storyboard, opts Options) (page.Page, error) {
	c, _, err := r.ComposeWithCacheInfo(ctx, sb, opts)
	return c.Page, err
}

func (r *Runner) composePage(ctx context.Context, sb *panel.Storyboard, segs []segment.Segment, opts Options) (page.Page, error) {
	panels, err := panel.Attach(segs, sb.Frames)
	if err != nil {
		return page.Page{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, len(panels))
	start := time.Now()
	pg, err := page.Compose(ctx, panels, opts.PageOptions())
	if err != nil {
		hooks.OnComposeComplete(ctx, 0, 0, time.Since(start), err)
		return page.Page{}, err
	}
	hooks.OnComposeComplete(ctx, pg.Shelves(), pg.Overflows(), time.Since(start), nil)

	if n := pg.Overflows(); n > 0 {
		opts.Logger.Debug("captions overflowed their panels", "count", n)
	}
	return pg, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, pg page.Page, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	pageData, err := json.Marshal(pg)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize page for cache key")
	}
	pageHash := cache.Hash(pageData)

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(pageHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, pg, pageHash, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(pageHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, pg page.Page, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, pg, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// StoryboardHash returns the content hash used to key composed pages. Local
// keyframes contribute their size and modification time, so replacing an
// image on disk invalidates the page.
func StoryboardHash(sb *panel.Storyboard) (string, error) {
	key := storyboardKey{Storyboard: sb}
	for _, f := range sb.Frames {
		var stamp imageStamp
		if fi, err := os.Stat(f.Image); err == nil {
			stamp = imageStamp{Size: fi.Size(), ModTime: fi.ModTime().UTC()}
		}
		key.Images = append(key.Images, stamp)
	}
	data, err := json.Marshal(key)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize storyboard")
	}
	return cache.Hash(data), nil
}
