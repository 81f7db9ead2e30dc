package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/comicstrip/pkg/errors"
	"github.com/matzehuels/comicstrip/pkg/geom"
	"github.com/matzehuels/comicstrip/pkg/transcript"
)

// Format is a storyboard manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the manifest format from a file extension. Anything
// other than .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Frame is a keyframe chosen for a span of the video.
type Frame struct {
	Start   float64    `json:"start" yaml:"start"`
	End     float64    `json:"end" yaml:"end"`
	Image   string     `json:"image" yaml:"image"`
	Width   int        `json:"width,omitempty" yaml:"width,omitempty"`
	Height  int        `json:"height,omitempty" yaml:"height,omitempty"`
	Subject *geom.Rect `json:"subject,omitempty" yaml:"subject,omitempty"`
	Crop    bool       `json:"crop,omitempty" yaml:"crop,omitempty"`
}

// Storyboard is the manifest the pipeline lays out: the transcript plus the
// keyframes to draw under it.
//
//	{
//	  "utterances": [{"start": 0, "end": 2, "transcript": "Hi.", "speaker": 0}],
//	  "frames": [{"start": 0, "end": 2, "image": "f0.png", "subject": {"x": 10, "y": 0, "width": 50, "height": 50}}]
//	}
type Storyboard struct {
	Utterances []transcript.Utterance `json:"utterances" yaml:"utterances"`
	Frames     []Frame                `json:"frames" yaml:"frames"`
}

// Read decodes a storyboard from r. Utterances get the same checks as a
// standalone transcript; frames are checked for timing and image
// references. Image sizes are not probed; see [Storyboard.Resolve].
func Read(r io.Reader, format Format) (*Storyboard, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read storyboard: %w", err)
	}

	var sb *Storyboard
	switch format {
	case FormatYAML:
		sb, err = decodeYAML(data)
	case FormatJSON, "":
		sb, err = decodeJSON(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown storyboard format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if err := validateFrames(sb.Frames); err != nil {
		return nil, err
	}
	return sb, nil
}

func decodeJSON(data []byte) (*Storyboard, error) {
	var raw struct {
		Utterances json.RawMessage `json:"utterances"`
		Frames     []Frame         `json:"frames"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode storyboard")
	}
	if len(raw.Utterances) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTranscript, "storyboard has no utterances")
	}
	utts, err := transcript.Read(bytes.NewReader(raw.Utterances))
	if err != nil {
		return nil, err
	}
	return &Storyboard{Utterances: utts, Frames: raw.Frames}, nil
}

func decodeYAML(data []byte) (*Storyboard, error) {
	var raw struct {
		Utterances []yaml.Node `yaml:"utterances"`
		Frames     []Frame     `yaml:"frames"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode storyboard")
	}
	if len(raw.Utterances) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTranscript, "storyboard has no utterances")
	}

	utts := make([]transcript.Utterance, len(raw.Utterances))
	for i, node := range raw.Utterances {
		u, err := decodeYAMLUtterance(i, &node)
		if err != nil {
			return nil, err
		}
		utts[i] = u
	}

	utts = transcript.Normalize(utts)
	if err := transcript.Validate(utts); err != nil {
		return nil, err
	}
	return &Storyboard{Utterances: utts, Frames: raw.Frames}, nil
}

func decodeYAMLUtterance(i int, node *yaml.Node) (transcript.Utterance, error) {
	if node.Kind != yaml.MappingNode {
		return transcript.Utterance{}, errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "utterance is not a mapping")
	}
	keys := make(map[string]bool, len(node.Content)/2)
	for j := 0; j+1 < len(node.Content); j += 2 {
		keys[node.Content[j].Value] = true
	}
	if err := transcript.RequireKeys(i, func(k string) bool { return keys[k] }); err != nil {
		return transcript.Utterance{}, err
	}

	var u transcript.Utterance
	if err := node.Decode(&u); err != nil {
		return transcript.Utterance{}, errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "decode utterance: %v", err)
	}
	return u, nil
}

func validateFrames(frames []Frame) error {
	if len(frames) == 0 {
		return errors.New(errors.ErrCodeInvalidPanel, "storyboard has no frames")
	}
	for i, f := range frames {
		if f.Image == "" {
			return errors.AtRecord(errors.ErrCodeInvalidPanel, i, "frame has no image")
		}
		if f.Start < 0 || f.End < f.Start || math.IsNaN(f.Start) || math.IsNaN(f.End) || math.IsInf(f.End, 0) {
			return errors.AtRecord(errors.ErrCodeInvalidPanel, i, "invalid frame span [%v, %v]", f.Start, f.End)
		}
		if f.Width < 0 || f.Height < 0 {
			return errors.AtRecord(errors.ErrCodeInvalidPanel, i, "invalid frame size %dx%d", f.Width, f.Height)
		}
	}
	return nil
}

// Load reads the storyboard at path, choosing the format by extension, and
// resolves its frames against the manifest's directory.
func Load(path string) (*Storyboard, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sb, err := Read(f, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	if err := sb.Resolve(filepath.Dir(path), true); err != nil {
		return nil, err
	}
	return sb, nil
}

// Resolve validates every frame's image reference, rewrites relative file
// paths against baseDir, and fills in missing sizes by probing the image
// header. Absolute paths are rejected unless allowAbsolute is set.
func (sb *Storyboard) Resolve(baseDir string, allowAbsolute bool) error {
	for i := range sb.Frames {
		f := &sb.Frames[i]
		if err := errors.ValidateImageRef(f.Image, allowAbsolute); err != nil {
			return errors.AtRecord(errors.ErrCodeInvalidPanel, i, "%s", errors.UserMessage(err))
		}
		if isLocal(f.Image) && !filepath.IsAbs(f.Image) && baseDir != "" {
			f.Image = filepath.Join(baseDir, f.Image)
		}
		if f.Width > 0 && f.Height > 0 {
			continue
		}
		w, h, err := Probe(f.Image)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		f.Width, f.Height = w, h
	}
	return nil
}

func isLocal(ref string) bool {
	return !strings.HasPrefix(ref, "data:") &&
		!strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}

// image returns the frame's image and subject, applying the keyframe crop
// when requested. The subject is nil when none was detected.
func (f Frame) image(i int) (Image, *geom.Rect, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return Image{}, nil, errors.AtRecord(errors.ErrCodeInvalidPanel, i,
			"frame %s has no size", shortRef(f.Image))
	}
	img := Image{Ref: f.Image, Width: f.Width, Height: f.Height}
	if f.Subject != nil && !f.Subject.WithinBounds(float64(f.Width), float64(f.Height)) {
		return Image{}, nil, errors.AtRecord(errors.ErrCodeInvalidPanel, i,
			"subject %+v outside image %dx%d", *f.Subject, f.Width, f.Height)
	}
	if !f.Crop || f.Subject == nil {
		return img, f.Subject, nil
	}

	crop, rebased := geom.CropAround(float64(f.Width), float64(f.Height), *f.Subject)
	img.Crop = crop
	img.SourceWidth, img.SourceHeight = f.Width, f.Height
	img.Width = int(math.Round(crop.Width))
	img.Height = int(math.Round(crop.Height))
	if img.Width <= 0 || img.Height <= 0 {
		return Image{}, nil, errors.AtRecord(errors.ErrCodeInvalidPanel, i, "crop around subject is empty")
	}
	rebased = rebased.Intersect(geom.FullImage(img.Width, img.Height))
	return img, &rebased, nil
}
