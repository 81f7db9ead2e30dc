package panel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/comicstrip/pkg/errors"
)

// Probe reads the pixel size of the image at ref from its header. ref is a
// file path or a base64 data URI. Remote URLs cannot be probed.
func Probe(ref string) (width, height int, err error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err := DecodeDataURI(ref)
		if err != nil {
			return 0, 0, err
		}
		return probeReader(ref, bytes.NewReader(data))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return 0, 0, errors.New(errors.ErrCodeInvalidPanel,
			"remote image %s needs explicit width and height", ref)
	}

	f, err := os.Open(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "open image %s", ref)
		}
		return 0, 0, fmt.Errorf("open image %s: %w", ref, err)
	}
	defer f.Close()
	return probeReader(ref, f)
}

func probeReader(ref string, r io.Reader) (int, int, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidPanel, err, "decode image header %s", shortRef(ref))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidPanel,
			"%s image %s has invalid size %dx%d", format, shortRef(ref), cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// DecodeDataURI returns the payload of a base64 data URI.
func DecodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New(errors.ErrCodeInvalidPanel, "image data URI must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPanel, err, "decode image data URI")
	}
	return data, nil
}

// shortRef keeps data URIs out of error messages.
func shortRef(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		if meta, _, ok := strings.Cut(ref, ","); ok {
			return meta + ",..."
		}
	}
	return ref
}
