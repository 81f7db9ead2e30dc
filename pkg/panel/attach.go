package panel

import (
	"math"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/segment"
)

// Attach pairs every segment with a keyframe and returns one panel per
// segment, in order. A segment gets the first frame whose span contains the
// segment's midpoint, or else the frame nearest to the midpoint in time.
// Frames must already carry their sizes; see [Storyboard.Resolve].
func Attach(segments []segment.Segment, frames []Frame) ([]Panel, error) {
	if len(frames) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidPanel, "no frames to attach")
	}

	type resolved struct {
		img     Image
		subject *geom.Rect
	}
	res := make([]resolved, len(frames))
	for i, f := range frames {
		img, subj, err := f.image(i)
		if err != nil {
			return nil, err
		}
		res[i] = resolved{img: img, subject: subj}
	}

	panels := make([]Panel, len(segments))
	for i, seg := range segments {
		j := nearestFrame(frames, (seg.Start+seg.End)/2)
		p, err := New(seg, res[j].img, res[j].subject)
		if err != nil {
			return nil, errors.AtRecord(errors.ErrCodeInvalidPanel, j, "%s", errors.UserMessage(err))
		}
		panels[i] = p
	}
	return panels, nil
}

// nearestFrame returns the index of the first frame containing t, or the
// frame closest to t. Ties go to the earlier frame.
func nearestFrame(frames []Frame, t float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, f := range frames {
		d := math.Max(0, math.Max(f.Start-t, t-f.End))
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return best
}
