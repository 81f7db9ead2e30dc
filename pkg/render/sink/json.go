package sink

import (
	"encoding/json"

	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/page"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	id    string
	style string
}

// WithJSONID records the page identifier in the output.
func WithJSONID(id string) JSONOption { return func(r *jsonRenderer) { r.id = id } }

// WithJSONStyle records the style name (e.g., "simple", "comic") in the
// output so the page can be redrawn the same way.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

type jsonOutput struct {
	ID      string      `json:"id,omitempty"`
	Style   string      `json:"style,omitempty"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Border  float64     `json:"border"`
	Shelves int         `json:"shelves"`
	Panels  []jsonPanel `json:"panels"`
}

type jsonPanel struct {
	Index    int        `json:"index"`
	Shelf    int        `json:"shelf"`
	Start    float64    `json:"start"`
	End      float64    `json:"end"`
	Speaker  *int       `json:"speaker"`
	Image    string     `json:"image"`
	Crop     *geom.Rect `json:"crop,omitempty"`
	Slot     geom.Rect  `json:"slot"`
	Rect     geom.Rect  `json:"rect"`
	Subject  geom.Rect  `json:"subject"`
	Caption  *geom.Rect `json:"caption,omitempty"`
	Lines    []string   `json:"lines,omitempty"`
	Overflow bool       `json:"overflow,omitempty"`
}

// RenderJSON exports the laid-out page as pretty-printed JSON for external
// renderers and for caching. Entries keep their order; panels without text
// have no caption.
func RenderJSON(pg page.Page, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		ID:      r.id,
		Style:   r.style,
		Width:   pg.Width,
		Height:  pg.Height,
		Border:  pg.Border,
		Shelves: pg.Shelves(),
		Panels:  make([]jsonPanel, len(pg.Entries)),
	}
	for i, e := range pg.Entries {
		jp := jsonPanel{
			Index:    i,
			Shelf:    e.Shelf,
			Start:    e.Start,
			End:      e.End,
			Speaker:  e.Speaker,
			Image:    e.Image.Ref,
			Slot:     e.Slot,
			Rect:     e.PanelRect,
			Subject:  e.Subject,
			Overflow: e.Overflow,
		}
		if e.Image.Cropped() {
			c := e.Image.Crop
			jp.Crop = &c
		}
		if e.HasCaption() {
			c := e.CaptionRect
			jp.Caption = &c
			jp.Lines = e.Lines
		}
		out.Panels[i] = jp
	}

	return json.MarshalIndent(out, "", "  ")
}
