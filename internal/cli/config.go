package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/comicstrip/pkg/pipeline"
)

// envRedisURL selects the shared Redis cache instead of the file cache.
const envRedisURL = "COMICSTRIP_REDIS_URL"

// Config is the optional TOML configuration file. Every field is optional;
// command-line flags take precedence over it.
//
//	[segment]
//	width = 40
//
//	[layout]
//	page_width = 600
//
//	[render]
//	style = "comic"
//	formats = ["svg", "png"]
//
//	[cache]
//	redis = "redis://localhost:6379/0"
type Config struct {
	Segment struct {
		Width    int     `toml:"width"`
		MinWidth *int     `toml:"min_width"`
		Pause    *float64 `toml:"pause"`
	} `toml:"segment"`

	Layout struct {
		PageWidth   float64 `toml:"page_width"`
		ShelfHeight float64 `toml:"shelf_height"`
		MinArea     float64 `toml:"min_area"`
		Tolerance   float64 `toml:"tolerance"`
		Padding     *float64 `toml:"padding"`
		Border      *float64 `toml:"border"`
		LineWidth   int     `toml:"line_width"`
	} `toml:"layout"`

	Render struct {
		Style   string   `toml:"style"`
		Formats []string `toml:"formats"`
		Scale   float64  `toml:"scale"`
		Embed   bool     `toml:"embed"`
	} `toml:"render"`

	Cache struct {
		Dir   string `toml:"dir"`
		Redis string `toml:"redis"`
	} `toml:"cache"`

	Serve struct {
		Addr   string `toml:"addr"`
		Images string `toml:"images"`
	} `toml:"serve"`
}

// configPath returns the default config file location
// ($XDG_CONFIG_HOME/comicstrip/config.toml).
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// loadConfig reads .env from the working directory, then the TOML file at
// path. An empty path means the default location, which may be missing; an
// explicit path must exist. The Redis URL from the environment wins over
// the file.
func loadConfig(path string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if url := os.Getenv(envRedisURL); url != "" {
		cfg.Cache.Redis = url
	}
	return cfg, nil
}

// apply fills the unset fields of opts from the config file.
func (c Config) apply(opts *pipeline.Options) {
	setInt(&opts.Width, c.Segment.Width)
	setOptional(&opts.MinWidth, c.Segment.MinWidth)
	setOptional(&opts.PauseLen, c.Segment.Pause)

	setFloat(&opts.PageWidth, c.Layout.PageWidth)
	setFloat(&opts.ShelfHeight, c.Layout.ShelfHeight)
	setFloat(&opts.MinArea, c.Layout.MinArea)
	setFloat(&opts.Tolerance, c.Layout.Tolerance)
	setOptional(&opts.Padding, c.Layout.Padding)
	setOptional(&opts.Border, c.Layout.Border)
	setInt(&opts.LineWidth, c.Layout.LineWidth)

	if opts.Style == "" {
		opts.Style = c.Render.Style
	}
	if len(opts.Formats) == 0 {
		opts.Formats = c.Render.Formats
	}
	setFloat(&opts.Scale, c.Render.Scale)
	opts.Embed = opts.Embed || c.Render.Embed
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}

// setOptional fills an unset optional option; zero is a valid value.
func setOptional[T any](dst **T, v *T) {
	if *dst == nil && v != nil {
		*dst = v
	}
}
