// Package pkg provides the core libraries for comicstrip.
//
// # Overview
//
// Comicstrip turns a transcribed video into a comic page. Utterances from a
// speech-to-text service become short captions, each caption is paired with
// a keyframe, the keyframes are packed into shelves on the page, and a
// speech bubble is placed beside each panel's subject.
//
// # Architecture
//
// The typical data flow:
//
//	Storyboard (utterances + keyframes)
//	         ↓
//	    [segment] (captions and pauses)
//	         ↓
//	    [panel] (keyframe per caption)
//	         ↓
//	    [shelf] + [caption] via [page] (layout)
//	         ↓
//	    [render/sink] (SVG/PNG/PDF/JSON)
//
// [pipeline] runs these stages with caching ([cache]) and is shared by the
// CLI and the HTTP server.
//
// # Main Packages
//
//   - [transcript]: reading and validating utterances
//   - [segment]: splitting utterances into caption segments
//   - [geom]: the rectangle type shared by every stage
//   - [shelf]: the shelf packer
//   - [caption]: caption wrapping and bubble placement
//   - [panel]: storyboards, keyframe probing and frame attachment
//   - [page]: page composition
//   - [render], [render/sink], [render/styles]: drawing and conversion
//   - [pipeline]: orchestration (segment → compose → render)
//   - [cache]: file, Redis and null caches
//   - [errors]: coded errors
//   - [observability]: metrics and tracing hooks
//
// [transcript]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/transcript
// [segment]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/segment
// [geom]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/geom
// [shelf]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/shelf
// [caption]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/caption
// [panel]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/panel
// [page]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/page
// [render]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/render/sink
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/render/styles
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/comicstrip/pkg/observability
package pkg
