// Package transcript reads and sanitizes the utterances produced by the
// speech-to-text collaborator.
//
// Two JSON shapes are accepted: a bare array of utterances, or a
// transcription response envelope of the form
//
//	{"results": {"utterances": [{"start": 0.4, "end": 2.1, "transcript": "Hi.", "speaker": 0}]}}
//
// Every utterance must carry the start, end, transcript and speaker keys;
// speaker may be null. Malformed records are rejected with an error that
// names the record index. Nothing is repaired.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/comicstrip/pkg/errors"
)

// Utterance is one diarized span of speech.
type Utterance struct {
	Start      float64 `json:"start" yaml:"start"`
	End        float64 `json:"end" yaml:"end"`
	Transcript string  `json:"transcript" yaml:"transcript"`
	Speaker    *int    `json:"speaker" yaml:"speaker"`
}

// Duration returns End-Start.
func (u Utterance) Duration() float64 { return u.End - u.Start }

// requiredKeys are the fields every utterance object must carry.
var requiredKeys = []string{"start", "end", "transcript", "speaker"}

type envelope struct {
	Results *struct {
		Utterances []json.RawMessage `json:"utterances"`
	} `json:"results"`
}

// Read decodes utterances from r, checks that every record carries the
// required keys, and returns them normalized. It does not close r.
func Read(r io.Reader) ([]Utterance, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	raws, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	utts := make([]Utterance, len(raws))
	for i, raw := range raws {
		u, err := decodeRecord(i, raw)
		if err != nil {
			return nil, err
		}
		utts[i] = u
	}

	utts = Normalize(utts)
	if err := Validate(utts); err != nil {
		return nil, err
	}
	return utts, nil
}

// Load reads a transcript file at path. See [Read].
func Load(path string) ([]Utterance, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTranscript, "transcript is empty")
	}

	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTranscript, err, "decode utterance list")
		}
		return raws, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTranscript, err, "decode transcript response")
		}
		if env.Results == nil || env.Results.Utterances == nil {
			return nil, errors.New(errors.ErrCodeInvalidTranscript, "transcript response has no results.utterances")
		}
		return env.Results.Utterances, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidTranscript, "transcript must be a JSON array or object")
	}
}

func decodeRecord(i int, raw json.RawMessage) (Utterance, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Utterance{}, errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "utterance is not an object")
	}
	if err := RequireKeys(i, func(k string) bool { _, ok := fields[k]; return ok }); err != nil {
		return Utterance{}, err
	}

	var u Utterance
	if err := json.Unmarshal(raw, &u); err != nil {
		return Utterance{}, errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "decode utterance: %v", err)
	}
	return u, nil
}

// RequireKeys reports the first required utterance key for which has
// returns false, as an error naming record i. Decoders for other encodings
// use it to apply the same presence rule as [Read].
func RequireKeys(i int, has func(key string) bool) error {
	for _, k := range requiredKeys {
		if !has(k) {
			return errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "missing required field %q", k)
		}
	}
	return nil
}

// Normalize returns a copy of utts with every transcript in Unicode NFC
// form and runs of whitespace collapsed to single spaces. Character counts
// downstream are taken on this form.
func Normalize(utts []Utterance) []Utterance {
	out := make([]Utterance, len(utts))
	for i, u := range utts {
		u.Transcript = strings.Join(strings.Fields(norm.NFC.String(u.Transcript)), " ")
		out[i] = u
	}
	return out
}

// Validate checks timing and content of utts:
//   - every transcript is non-empty
//   - start and end are finite, start is not negative and end is not
//     before start
//   - each utterance starts at or after the end of the one before it
func Validate(utts []Utterance) error {
	prevEnd := 0.0
	for i, u := range utts {
		if u.Transcript == "" {
			return errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "transcript is empty")
		}
		if !finite(u.Start) || !finite(u.End) {
			return errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "times must be finite, got start %v end %v", u.Start, u.End)
		}
		if u.Start < 0 {
			return errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "start %v is negative", u.Start)
		}
		if u.End < u.Start {
			return errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "end %v is before start %v", u.End, u.Start)
		}
		if i > 0 && u.Start < prevEnd {
			return errors.AtRecord(errors.ErrCodeInvalidTranscript, i, "start %v is before previous end %v", u.Start, prevEnd)
		}
		prevEnd = u.End
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
