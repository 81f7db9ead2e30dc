package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// keyVersion is bumped whenever segmentation, packing or rendering changes
// output for identical inputs, so stale entries stop matching.
const keyVersion = 1

// Keyer builds cache keys.
type Keyer interface {
	// PageKey identifies a composed page.
	PageKey(storyboardHash string, opts PageKeyOpts) string
	// ArtifactKey identifies a rendered output of a composed page.
	ArtifactKey(pageHash string, opts ArtifactKeyOpts) string
}

// PageKeyOpts are the options that change page composition.
type PageKeyOpts struct {
	Width       int     `json:"w"`
	MinWidth    int     `json:"mw"`
	PauseLen    float64 `json:"p"`
	PageWidth   float64 `json:"pw"`
	ShelfHeight float64 `json:"sh"`
	MinArea     float64 `json:"ma"`
	Tolerance   float64 `json:"t"`
	Padding     float64 `json:"pad"`
	Border      float64 `json:"b"`
	LineWidth   int     `json:"lw"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"f"`
	Style  string  `json:"s"`
	Scale  float64 `json:"x,omitempty"`
	Embed  bool    `json:"e,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) PageKey(storyboardHash string, opts PageKeyOpts) string {
	return hashKey("page", storyboardHash, opts)
}

func (DefaultKeyer) ArtifactKey(pageHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", pageHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "kind:v<version>:<sha256 of subject and opts>".
func hashKey(kind, subject string, opts any) string {
	data, err := json.Marshal(opts)
	if err != nil {
		// Key option structs hold only numbers, strings and bools.
		panic("cache: unencodable key options: " + err.Error())
	}
	return kind + ":v" + strconv.Itoa(keyVersion) + ":" + Hash(append([]byte(subject+"\x00"), data...))
}
