package geom

import (
	"math"
	"testing"
)

func TestRectAspect(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want float64
	}{
		{
			name: "landscape",
			rect: New(0, 0, 200, 100),
			want: 2,
		},
		{
			name: "portrait",
			rect: New(10, 10, 50, 100),
			want: 0.5,
		},
		{
			name: "zero height uses sentinel",
			rect: New(0, 0, 50, 0),
			want: AspectSentinel,
		},
		{
			name: "zero size uses sentinel",
			rect: Rect{},
			want: AspectSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rect.Aspect()
			if got != tt.want {
				t.Errorf("Aspect() = %v, want %v", got, tt.want)
			}
			if math.IsInf(got, 0) || math.IsNaN(got) {
				t.Errorf("Aspect() = %v, must be finite", got)
			}
		})
	}
}

func TestRectAreaAndCenter(t *testing.T) {
	r := New(10, 20, 30, 40)
	if got := r.Area(); got != 1200 {
		t.Errorf("Area() = %v, want 1200", got)
	}
	if got := r.Center(); got != (Point{X: 25, Y: 40}) {
		t.Errorf("Center() = %v, want {25 40}", got)
	}
	if got := r.Right(); got != 40 {
		t.Errorf("Right() = %v, want 40", got)
	}
	if got := r.Bottom(); got != 60 {
		t.Errorf("Bottom() = %v, want 60", got)
	}
}

func TestRectContains(t *testing.T) {
	outer := New(0, 0, 100, 100)
	tests := []struct {
		name  string
		inner Rect
		want  bool
	}{
		{"inside", New(10, 10, 20, 20), true},
		{"equal", outer, true},
		{"touching edge", New(50, 0, 50, 100), true},
		{"float noise at edge", New(0, 0, 100+1e-12, 100), true},
		{"sticks out right", New(90, 0, 20, 10), false},
		{"sticks out top", New(0, -5, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestRectOverlaps(t *testing.T) {
	a := New(0, 0, 100, 100)
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", New(50, 50, 100, 100), true},
		{"contained", New(10, 10, 10, 10), true},
		{"shared vertical edge", New(100, 0, 50, 100), false},
		{"shared horizontal edge", New(0, 100, 100, 50), false},
		{"disjoint", New(200, 200, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %v", tt.b)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	got := New(0, 0, 100, 100).Intersect(New(50, 25, 100, 50))
	want := New(50, 25, 50, 50)
	if got != want {
		t.Errorf("Intersect() = %v, want %v", got, want)
	}
	if got := New(0, 0, 10, 10).Intersect(New(20, 20, 5, 5)); got != (Rect{}) {
		t.Errorf("Intersect() of disjoint rects = %v, want zero", got)
	}
}

func TestRectInset(t *testing.T) {
	got := New(0, 0, 100, 50).Inset(8)
	want := New(8, 8, 84, 34)
	if got != want {
		t.Errorf("Inset(8) = %v, want %v", got, want)
	}

	tiny := New(0, 0, 10, 10).Inset(8)
	if tiny.Width != 0 || tiny.Height != 0 {
		t.Errorf("Inset beyond size should clamp to zero, got %v", tiny)
	}
}

func TestRectWithinBounds(t *testing.T) {
	if !New(0, 0, 640, 480).WithinBounds(640, 480) {
		t.Error("full image should be within bounds")
	}
	if New(600, 0, 100, 10).WithinBounds(640, 480) {
		t.Error("rect past right edge should not be within bounds")
	}
	if New(0, 0, -1, 10).WithinBounds(640, 480) {
		t.Error("negative width should not be within bounds")
	}
}

func TestFullImage(t *testing.T) {
	got := FullImage(640, 480)
	if got != New(0, 0, 640, 480) {
		t.Errorf("FullImage() = %v", got)
	}
}

func TestCropAround(t *testing.T) {
	tests := []struct {
		name        string
		subject     Rect
		wantCrop    Rect
		wantRebased Rect
	}{
		{
			name:        "subject top left keeps right and bottom",
			subject:     New(100, 50, 100, 100),
			wantCrop:    New(100, 50, 540, 430),
			wantRebased: New(0, 0, 100, 100),
		},
		{
			name:        "subject bottom right keeps left and top",
			subject:     New(440, 300, 100, 100),
			wantCrop:    New(0, 0, 540, 400),
			wantRebased: New(440, 300, 100, 100),
		},
		{
			name:        "full image subject",
			subject:     FullImage(640, 480),
			wantCrop:    New(0, 0, 640, 480),
			wantRebased: New(0, 0, 640, 480),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crop, rebased := CropAround(640, 480, tt.subject)
			if crop != tt.wantCrop {
				t.Errorf("crop = %v, want %v", crop, tt.wantCrop)
			}
			if rebased != tt.wantRebased {
				t.Errorf("rebased = %v, want %v", rebased, tt.wantRebased)
			}
			if !rebased.WithinBounds(crop.Width, crop.Height) {
				t.Errorf("rebased subject %v escapes crop %v", rebased, crop)
			}
		})
	}
}
