package page

import (
	"context"
	"fmt"
	"testing"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/panel"
	"github.com/matzehuels/comicstrip/pkg/segment"
	"github.com/matzehuels/comicstrip/pkg/transcript"
)

func speaker(n int) *int { return &n }

// aspectImages cycles through 2.0, 1.0 and 0.5.
var aspectImages = []panel.Image{
	{Ref: "wide.png", Width: 400, Height: 200},
	{Ref: "square.png", Width: 200, Height: 200},
	{Ref: "tall.png", Width: 100, Height: 200},
}

func panelsFor(t *testing.T, segs []segment.Segment) []panel.Panel {
	t.Helper()
	out := make([]panel.Panel, len(segs))
	for i, s := range segs {
		p, err := panel.New(s, aspectImages[i%len(aspectImages)], nil)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = p
	}
	return out
}

func TestComposeEndToEnd(t *testing.T) {
	utts := []transcript.Utterance{
		{Start: 0, End: 2, Transcript: "Hey there!", Speaker: speaker(0)},
		{Start: 2, End: 12, Transcript: "The quick brown fox jumps over the lazy dog and then it runs far into the hills.", Speaker: speaker(1)},
		{Start: 12, End: 15, Transcript: "See you around.", Speaker: speaker(0)},
	}
	segs, err := segment.Split(utts, segment.Options{Width: 50, MinWidth: 20, PauseLen: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}

	pg, err := Compose(context.Background(), panelsFor(t, segs), DefaultOptions())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(pg.Entries) != len(segs) {
		t.Fatalf("got %d entries, want %d", len(pg.Entries), len(segs))
	}

	wantSlots := []geom.Rect{
		geom.New(0, 0, 360, 180),
		geom.New(0, 180, 180, 180),
		geom.New(180, 180, 90, 180),
		geom.New(270, 180, 180, 90),
	}
	for i, e := range pg.Entries {
		if e.Slot != wantSlots[i] {
			t.Errorf("entry %d slot = %+v, want %+v", i, e.Slot, wantSlots[i])
		}
		if e.Start != segs[i].Start || e.End != segs[i].End {
			t.Errorf("entry %d out of order: [%v, %v]", i, e.Start, e.End)
		}
		if !e.PanelRect.Contains(e.CaptionRect) {
			t.Errorf("entry %d caption %+v escapes panel %+v", i, e.CaptionRect, e.PanelRect)
		}
		for j := 0; j < i; j++ {
			if e.Slot.Overlaps(pg.Entries[j].Slot) {
				t.Errorf("entry %d overlaps entry %d", i, j)
			}
		}
	}

	if pg.Width != 454 || pg.Height != 364 {
		t.Errorf("page = %vx%v, want 454x364", pg.Width, pg.Height)
	}
	if pg.Shelves() != 2 {
		t.Errorf("Shelves() = %d, want 2", pg.Shelves())
	}
}

func TestComposeCaptionPlacement(t *testing.T) {
	seg := segment.Segment{Start: 0, End: 2, Text: "Hey there!...", Speaker: speaker(0)}
	subject := geom.New(0, 0, 100, 100)
	p, err := panel.New(seg, aspectImages[0], &subject)
	if err != nil {
		t.Fatal(err)
	}
	pg, err := Compose(context.Background(), []panel.Panel{p}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	e := pg.Entries[0]
	if e.PanelRect != geom.New(10, 10, 344, 164) {
		t.Errorf("panel rect = %+v", e.PanelRect)
	}
	// 13 characters at 7px, anchored right inside the caption padding.
	if e.CaptionRect != geom.New(354-6-91, 16, 91, 14) {
		t.Errorf("caption rect = %+v", e.CaptionRect)
	}
	if e.Overflow {
		t.Error("caption beside subject reported as overflow")
	}
	if len(e.Lines) != 1 || e.Lines[0] != "Hey there!..." {
		t.Errorf("lines = %q", e.Lines)
	}
}

func TestComposePauseHasNoCaption(t *testing.T) {
	p, err := panel.New(segment.Segment{Start: 2, End: 3}, aspectImages[1], nil)
	if err != nil {
		t.Fatal(err)
	}
	pg, err := Compose(context.Background(), []panel.Panel{p}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if e := pg.Entries[0]; e.HasCaption() || !e.CaptionRect.Empty() {
		t.Errorf("pause entry has caption: %+v", e)
	}
}

func TestComposeErrors(t *testing.T) {
	tall := panel.Panel{Image: panel.Image{Ref: "sliver.png", Width: 10, Height: 1000}}
	_, err := Compose(context.Background(), []panel.Panel{tall}, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("unplaceable panel err = %v, want invariant", err)
	}

	broken := panel.Panel{Image: panel.Image{Ref: "broken.png"}}
	_, err = Compose(context.Background(), []panel.Panel{broken}, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvalidPanel) {
		t.Errorf("zero-size image err = %v, want invalid panel", err)
	}

	opts := DefaultOptions()
	opts.Padding = 100
	if _, err := Compose(context.Background(), nil, opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad options err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := panel.New(segment.Segment{Text: "x"}, aspectImages[0], nil)
	if _, err := Compose(ctx, []panel.Panel{p}, DefaultOptions()); err == nil {
		t.Error("cancelled context did not abort")
	}
}

func TestPackMatchesCompose(t *testing.T) {
	var panels []panel.Panel
	for i := range 5 {
		p, err := panel.New(segment.Segment{Start: float64(i), End: float64(i + 1), Text: "Hi."}, aspectImages[i%3], nil)
		if err != nil {
			t.Fatal(err)
		}
		panels = append(panels, p)
	}
	opts := DefaultOptions()

	packed, height, err := Pack(context.Background(), panels, opts.Shelf)
	if err != nil {
		t.Fatal(err)
	}
	pg, err := Compose(context.Background(), panels, opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(packed) != len(pg.Entries) {
		t.Fatalf("Pack returned %d panels, Compose %d entries", len(packed), len(pg.Entries))
	}
	if got, want := pg.Height, height+2*opts.Border; got != want {
		t.Errorf("page height = %v, want %v", got, want)
	}
	for i, pk := range packed {
		e := pg.Entries[i]
		if pk.Rect != e.Slot || pk.Shelf != e.Shelf {
			t.Errorf("entry %d: packed %v shelf %d, entry %v shelf %d", i, pk.Rect, pk.Shelf, e.Slot, e.Shelf)
		}
		if pk.Image != panels[i].Image || pk.Segment.Start != panels[i].Segment.Start {
			t.Errorf("entry %d: packed panel does not carry its source panel", i)
		}
		if i > 0 && pk.Shelf < packed[i-1].Shelf {
			t.Errorf("entry %d: shelf went backwards", i)
		}
	}
}

func TestComposeEmpty(t *testing.T) {
	pg, err := Compose(context.Background(), nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(pg.Entries) != 0 || pg.Shelves() != 0 {
		t.Errorf("empty page = %+v", pg)
	}
}

func ExampleCompose() {
	var panels []panel.Panel
	for i, img := range aspectImages {
		p, _ := panel.New(segment.Segment{Start: float64(i), End: float64(i + 1)}, img, nil)
		panels = append(panels, p)
	}
	pg, _ := Compose(context.Background(), panels, DefaultOptions())
	for _, e := range pg.Entries {
		fmt.Printf("shelf %d: %v,%v %vx%v\n", e.Shelf, e.Slot.X, e.Slot.Y, e.Slot.Width, e.Slot.Height)
	}
	// Output:
	// shelf 0: 0,0 360x180
	// shelf 1: 0,180 180x180
	// shelf 1: 180,180 90x180
}
