// Package config loads gitlink settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/gitlink/pkg/batch"
	"github.com/odvcencio/gitlink/pkg/ident"
	"github.com/odvcencio/gitlink/pkg/permalink"
	"github.com/odvcencio/gitlink/pkg/remote"
	"github.com/odvcencio/gitlink/pkg/repo"
)

// Environment variables that override file settings.
const (
	EnvHost     = "GITLINK_HOST"
	EnvRemote   = "GITLINK_REMOTE"
	EnvLogLevel = "GITLINK_LOG_LEVEL"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the decoded configuration file.
type Config struct {
	Host        string `toml:"host"`
	Remote      string `toml:"remote"`
	Marker      string `toml:"marker"`
	EscapePaths bool   `toml:"escape_paths"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`

	Identifier Identifier `toml:"identifier"`
	Batch      Batch      `toml:"batch"`
}

// Identifier holds the [identifier] table.
type Identifier struct {
	Algorithm string `toml:"algorithm"`
	Encoding  string `toml:"encoding"`
}

// Batch holds the [batch] table.
type Batch struct {
	Concurrency int `toml:"concurrency"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Host:      remote.DefaultHost,
		Remote:    repo.DefaultRemote,
		Marker:    repo.DefaultMarker,
		LogLevel:  "warn",
		LogFormat: "text",
		Identifier: Identifier{
			Algorithm: string(ident.SHA256),
			Encoding:  string(ident.Hex),
		},
		Batch: Batch{Concurrency: batch.DefaultConcurrency},
	}
}

// DefaultPath is config.toml under the user's gitlink config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}
	return filepath.Join(dir, "gitlink", "config.toml"), nil
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, fmt.Errorf("load config %s: %w: unknown key %q", path, ErrInvalid, undecoded[0].String())
			}
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the GITLINK_* variables that lookup finds
// set and non-empty.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvHost, &c.Host)
	set(EnvRemote, &c.Remote)
	set(EnvLogLevel, &c.LogLevel)
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := remote.NormalizeHost(c.Host); err != nil {
		return fmt.Errorf("%w: host: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(c.Remote) == "" {
		return fmt.Errorf("%w: remote is empty", ErrInvalid)
	}
	if c.Marker == "" || strings.ContainsAny(c.Marker, `/\`) {
		return fmt.Errorf("%w: marker %q", ErrInvalid, c.Marker)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	}
	if _, err := ident.ParseAlgorithm(c.Identifier.Algorithm); err != nil {
		return fmt.Errorf("%w: identifier: %v", ErrInvalid, err)
	}
	if _, err := ident.ParseEncoding(c.Identifier.Encoding); err != nil {
		return fmt.Errorf("%w: identifier: %v", ErrInvalid, err)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("%w: batch concurrency %d", ErrInvalid, c.Batch.Concurrency)
	}
	return nil
}

// Builder returns the link builder for the configured host.
func (c Config) Builder() permalink.Builder {
	host, err := remote.NormalizeHost(c.Host)
	if err != nil {
		host = remote.DefaultHost
	}
	return permalink.Builder{Host: host, Escape: c.EscapePaths}
}

// RepoOptions turns the settings into repo.Options.
func (c Config) RepoOptions(log logrus.FieldLogger) []repo.Option {
	return []repo.Option{
		repo.WithRemote(c.Remote),
		repo.WithMarker(c.Marker),
		repo.WithBuilder(c.Builder()),
		repo.WithLogger(log),
	}
}

// IdentOptions returns the configured digest settings. Call Validate first.
func (c Config) IdentOptions() ident.Options {
	alg, _ := ident.ParseAlgorithm(c.Identifier.Algorithm)
	enc, _ := ident.ParseEncoding(c.Identifier.Encoding)
	return ident.Options{Algorithm: alg, Encoding: enc}
}
