package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/comicstrip/pkg/pipeline"
	"github.com/matzehuels/comicstrip/pkg/segment"
)

const testStoryboard = `{
  "utterances": [
    {"start": 0, "end": 2, "transcript": "Hey there!", "speaker": 0},
    {"start": 2, "end": 12, "transcript": "The quick brown fox jumps over the lazy dog and then it runs far into the hills.", "speaker": 1},
    {"start": 12, "end": 15, "transcript": "See you around.", "speaker": 0}
  ],
  "frames": [
    {"start": 0, "end": 2, "image": "wide.png", "width": 400, "height": 200},
    {"start": 2, "end": 13, "image": "square.png", "width": 200, "height": 200},
    {"start": 13, "end": 15, "image": "tall.png", "width": 100, "height": 200}
  ]
}`

// isolate points config, cache and .env lookups at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisURL, "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty leaves default", "", nil},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , json ,", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived from input", "", []string{"svg"}, map[string]string{"svg": "story.svg"}},
		{"explicit single", "page.out", []string{"png"}, map[string]string{"png": "page.out"}},
		{"json never overwrites input", "", []string{"json"}, map[string]string{"json": "story.page.json"}},
		{"multiple share base", "out/page.svg", []string{"svg", "png"}, map[string]string{"svg": "out/page.svg", "png": "out/page.png"}},
		{"unknown extension kept", "out/page.v2", []string{"svg", "pdf"}, map[string]string{"svg": "out/page.v2.svg", "pdf": "out/page.v2.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "story.json", tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("outputPaths() = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("path[%s] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := isolate(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("missing default config should be fine: %v", err)
	}
	if cfg.Render.Style != "" {
		t.Error("empty config should leave fields unset")
	}

	if _, err := loadConfig(filepath.Join(dir, "nope.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}

	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
[segment]
width = 40

[layout]
page_width = 600

[render]
style = "comic"
formats = ["svg", "json"]

[cache]
redis = "redis://file:6379/0"
`)
	writeFile(t, filepath.Join(dir, ".env"), envRedisURL+"=redis://env:6379/1\n")

	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Segment.Width != 40 || cfg.Layout.PageWidth != 600 || cfg.Render.Style != "comic" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Cache.Redis != "redis://env:6379/1" {
		t.Errorf("redis url = %q, want the .env value", cfg.Cache.Redis)
	}

	writeFile(t, path, "[segment\nwidth = ")
	if _, err := loadConfig(path); err == nil {
		t.Error("malformed config should fail")
	}
}

func TestConfigApply(t *testing.T) {
	var cfg Config
	cfg.Segment.Width = 40
	cfg.Layout.PageWidth = 600
	cfg.Render.Style = "comic"
	cfg.Render.Formats = []string{"png"}

	opts := pipeline.Options{Width: 30}
	cfg.apply(&opts)

	if opts.Width != 30 {
		t.Errorf("flag value overridden: width = %d", opts.Width)
	}
	if opts.PageWidth != 600 || opts.Style != "comic" || opts.Formats[0] != "png" {
		t.Errorf("config not applied: %+v", opts)
	}
	if opts.ShelfHeight != 0 {
		t.Error("unset config fields should leave defaults to the pipeline")
	}
}

func TestConfigApplyOptionalZero(t *testing.T) {
	var cfg Config
	if _, err := toml.Decode("[segment]\npause = 0.0\nmin_width = 0\n[layout]\nborder = 0.0\n", &cfg); err != nil {
		t.Fatal(err)
	}

	var opts pipeline.Options
	cfg.apply(&opts)
	if opts.PauseLen == nil || *opts.PauseLen != 0 || opts.MinWidth == nil || *opts.MinWidth != 0 {
		t.Errorf("explicit zeros from the file were dropped: pause %v min width %v", opts.PauseLen, opts.MinWidth)
	}
	if opts.Border == nil || *opts.Border != 0 {
		t.Errorf("border = %v, want 0", opts.Border)
	}
	if opts.Padding != nil {
		t.Errorf("padding = %v, want unset", *opts.Padding)
	}

	flagged := pipeline.Options{PauseLen: pipeline.Ptr(1.5)}
	cfg.apply(&flagged)
	if *flagged.PauseLen != 1.5 {
		t.Errorf("flag pause overridden by config: %v", *flagged.PauseLen)
	}
}

func TestOptionalFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPause *float64
		wantMin   *int
	}{
		{"unset", []string{}, nil, nil},
		{"explicit zero", []string{"--pause", "0", "--min-width", "0"}, pipeline.Ptr(0.0), pipeline.Ptr(0)},
		{"values", []string{"--pause=1.25", "--min-width=7"}, pipeline.Ptr(1.25), pipeline.Ptr(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
			addLayoutFlags(cmd, &opts)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatal(err)
			}
			if (opts.PauseLen == nil) != (tt.wantPause == nil) || (opts.PauseLen != nil && *opts.PauseLen != *tt.wantPause) {
				t.Errorf("pause = %v, want %v", opts.PauseLen, tt.wantPause)
			}
			if (opts.MinWidth == nil) != (tt.wantMin == nil) || (opts.MinWidth != nil && *opts.MinWidth != *tt.wantMin) {
				t.Errorf("min width = %v, want %v", opts.MinWidth, tt.wantMin)
			}
		})
	}

	var opts pipeline.Options
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	addLayoutFlags(cmd, &opts)
	cmd.SetArgs([]string{"--pause", "soon"})
	cmd.SilenceErrors, cmd.SilenceUsage = true, true
	if err := cmd.Execute(); err == nil {
		t.Error("non-numeric --pause should be rejected")
	}
}

func TestSegmentCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "transcript.json")
	writeFile(t, path, `{"results": {"utterances": [
		{"start": 0, "end": 2, "transcript": "Hey there!", "speaker": 0},
		{"start": 3, "end": 5, "transcript": "Hi.", "speaker": null}
	]}}`)

	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"segment", "--json", path})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	var segs []segment.Segment
	if err := json.Unmarshal(out.Bytes(), &segs); err != nil {
		t.Fatalf("segment --json output: %v", err)
	}
	if len(segs) != 3 || !segs[1].IsPause() {
		t.Errorf("segments = %+v, want text, pause, text", segs)
	}

	out.Reset()
	root = New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"segment", path})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Hey there!", "(pause)", "TEXT"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table missing %q:\n%s", want, out.String())
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "story.json")
	writeFile(t, input, testStoryboard)

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"render", "-f", "svg,json", "--style", "comic", input})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "story.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("story.svg = %.40q", svg)
	}
	if _, err := os.Stat(filepath.Join(dir, "story.page.json")); err != nil {
		t.Errorf("json output missing: %v", err)
	}

	root = New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"render", "-f", "gif", input})
	if err := root.Execute(); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "story.json")
	writeFile(t, input, testStoryboard)

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"layout", "--page-width", "600", input})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "story.page.json"))
	if err != nil {
		t.Fatal(err)
	}
	var pg struct {
		Width  float64           `json:"width"`
		Panels []json.RawMessage `json:"panels"`
	}
	if err := json.Unmarshal(data, &pg); err != nil {
		t.Fatal(err)
	}
	if pg.Width != 604 || len(pg.Panels) != 4 {
		t.Errorf("page width %v with %d panels, want 604 with 4", pg.Width, len(pg.Panels))
	}
}
