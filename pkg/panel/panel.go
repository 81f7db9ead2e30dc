// Package panel models comic panels: a caption segment paired with the
// keyframe image shown behind it and the subject detected in that image.
//
// Panels are assembled from a storyboard manifest, which carries the
// utterances of the transcript and the keyframes chosen by upstream
// collaborators. See [Load] and [Attach].
package panel

import (
	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/segment"
)

// Image is an opaque keyframe handle plus its pixel size.
type Image struct {
	Ref    string    `json:"ref"`            // file path, URL or data URI
	Width  int       `json:"width"`          // pixels, after any crop
	Height int       `json:"height"`         // pixels, after any crop
	Crop   geom.Rect `json:"crop,omitzero"` // region of the source shown, zero for all of it

	SourceWidth  int `json:"source_width,omitempty"` // uncropped size, set with Crop
	SourceHeight int `json:"source_height,omitempty"`
}

// Aspect returns Width/Height.
func (im Image) Aspect() float64 {
	return geom.FullImage(im.Width, im.Height).Aspect()
}

// Cropped reports whether only part of the source image is shown.
func (im Image) Cropped() bool { return !im.Crop.Empty() }

// Panel is one unit of the comic.
type Panel struct {
	Segment segment.Segment `json:"segment"`
	Image   Image           `json:"image"`
	Subject geom.Rect       `json:"subject"` // image coordinates
}

// New builds a Panel. A nil subject stands for "nothing detected" and is
// stored as the full image. The image must have a positive size and the
// subject must lie within it.
func New(seg segment.Segment, img Image, subject *geom.Rect) (Panel, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return Panel{}, errors.New(errors.ErrCodeInvalidPanel,
			"image %s has invalid size %dx%d", img.Ref, img.Width, img.Height)
	}
	s := geom.FullImage(img.Width, img.Height)
	if subject != nil {
		s = *subject
	}
	if !s.WithinBounds(float64(img.Width), float64(img.Height)) {
		return Panel{}, errors.New(errors.ErrCodeInvalidPanel,
			"subject %+v outside image %s (%dx%d)", s, img.Ref, img.Width, img.Height)
	}
	return Panel{Segment: seg, Image: img, Subject: s}, nil
}

// Packed is a panel together with its slot on the page.
type Packed struct {
	Panel
	Rect  geom.Rect `json:"rect"` // packer coordinates, before border and padding
	Shelf int       `json:"shelf"`
}
