// Package segment splits transcribed utterances into caption segments.
//
// Each [Segment] is short enough to caption a single comic panel. Long
// utterances are word-wrapped into chunks; every chunk gets a slice of the
// utterance's time span proportional to its character count, and
// continuation ellipses mark where a sentence runs across panels. Silent
// gaps longer than [Options.PauseLen] become synthetic blank segments so
// the strip keeps the rhythm of the conversation.
//
// The segmenter performs no layout. Its output is consumed in order by the
// panel attachment and packing stages.
package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/transcript"
)

// Default segmentation parameters.
const (
	DefaultWidth    = 50  // maximum characters per chunk
	DefaultMinWidth = 20  // shortest acceptable trailing chunk
	DefaultPauseLen = 0.5 // seconds of silence that produce a blank segment
)

// Ellipsis marks continuation at either end of a segment.
const Ellipsis = "..."

// Segment is one caption-sized slice of an utterance.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker *int    `json:"speaker"`
}

// Duration returns End-Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// IsPause reports whether s is a synthetic silent segment.
func (s Segment) IsPause() bool { return s.Text == "" }

// Options controls segmentation.
type Options struct {
	Width    int     // target maximum characters per segment
	MinWidth int     // minimum viable trailing chunk length
	PauseLen float64 // minimum silent gap that inserts a blank segment
}

// DefaultOptions returns the standard segmentation parameters.
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, MinWidth: DefaultMinWidth, PauseLen: DefaultPauseLen}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if o.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "segment width must be positive, got %d", o.Width)
	}
	if o.MinWidth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "segment min width must not be negative, got %d", o.MinWidth)
	}
	if o.PauseLen < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "pause length must not be negative, got %v", o.PauseLen)
	}
	return nil
}

// singleLimit is the longest transcript emitted as one segment. The +1
// accounts for the separating space dropped when the tail is merged.
func (o Options) singleLimit() int { return o.Width + o.MinWidth + 1 }

// Split converts utts into an ordered sequence of caption segments.
//
// Utterances are validated first (see [transcript.Validate]); malformed
// input is rejected with an error naming the offending record. A wrap that
// yields fewer than two chunks for an over-long transcript is reported as
// an invariant violation.
func Split(utts []transcript.Utterance, opts Options) ([]Segment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := transcript.Validate(utts); err != nil {
		return nil, err
	}

	var out []Segment
	for i, u := range utts {
		chunks, err := chunk(i, u, opts)
		if err != nil {
			return nil, err
		}
		out = appendUtterance(out, chunks, opts.PauseLen)
	}
	return out, nil
}

// appendUtterance appends the chunks of one utterance to out, preceded by
// a blank segment when the silence since the last emitted segment exceeds
// pauseLen.
func appendUtterance(out, chunks []Segment, pauseLen float64) []Segment {
	if len(out) > 0 && len(chunks) > 0 {
		prevEnd := out[len(out)-1].End
		if start := chunks[0].Start; start-prevEnd > pauseLen {
			out = append(out, Segment{Start: prevEnd, End: start})
		}
	}
	return append(out, chunks...)
}

// chunk splits a single utterance. It never inserts pauses; those depend
// on the previously emitted segment and are handled by the caller.
func chunk(i int, u transcript.Utterance, opts Options) ([]Segment, error) {
	text := u.Transcript
	total := utf8.RuneCountInString(text)

	if total <= opts.singleLimit() {
		if !strings.HasSuffix(text, ".") {
			text += Ellipsis
		}
		return []Segment{{Start: u.Start, End: u.End, Text: text, Speaker: copySpeaker(u.Speaker)}}, nil
	}

	lines := Wrap(text, opts.Width)
	if len(lines) < 2 {
		return nil, errors.Invariant("record %d: wrapping %d characters at width %d produced %d chunk(s)",
			i, total, opts.Width, len(lines))
	}

	last := len(lines) - 1
	if utf8.RuneCountInString(lines[last]) < opts.MinWidth {
		lines[last-1] += " " + lines[last]
		lines = lines[:last]
		last--
	}

	out := make([]Segment, 0, len(lines))
	perChar := u.Duration() / float64(total)
	start := u.Start
	for j, line := range lines {
		end := start + float64(utf8.RuneCountInString(line))*perChar
		if j == last {
			end = u.End
		}

		caption := line
		if j > 0 {
			caption = Ellipsis + caption
		}
		if j < last {
			caption = trailingEllipsis(caption)
		}

		out = append(out, Segment{Start: start, End: end, Text: caption, Speaker: copySpeaker(u.Speaker)})
		start = end
	}
	return out, nil
}

// trailingEllipsis marks a mid-utterance chunk as continuing. Chunks that
// already end a sentence are left alone.
func trailingEllipsis(s string) string {
	if strings.HasSuffix(s, ",") {
		s += " "
	}
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + Ellipsis
}

func copySpeaker(s *int) *int {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
