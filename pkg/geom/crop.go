package geom

// CropAround computes the keyframe crop for a w×h image whose subject is
// subject. On each axis the crop keeps the side of the image the subject's
// center falls in and cuts at the subject's far edge, so the subject ends
// up against the crop border facing the image center and the freed space
// on the other side is kept for the caption.
//
// It returns the crop rectangle in image coordinates and the subject
// rebased into the cropped image. A subject that covers the whole image
// yields the full image unchanged.
func CropAround(w, h float64, subject Rect) (crop, rebased Rect) {
	c := subject.Center()

	x0, x1 := subject.X, w
	if c.X > w/2 {
		x0, x1 = 0, subject.Right()
	}
	y0, y1 := subject.Y, h
	if c.Y > h/2 {
		y0, y1 = 0, subject.Bottom()
	}

	crop = Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	rebased = subject.Translate(-x0, -y0)
	return crop, rebased
}
