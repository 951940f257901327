package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/gitlink/pkg/ident"
	"github.com/odvcencio/gitlink/pkg/remote"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Host != remote.DefaultHost || cfg.Remote != "origin" || cfg.Marker != ".git" {
		t.Fatalf("Default() = %+v", cfg)
	}
	if cfg.Batch.Concurrency != 10 || cfg.EscapePaths {
		t.Fatalf("Default() = %+v", cfg)
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvHost, "")
	t.Setenv(EnvRemote, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(absent) = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvHost, "")
	t.Setenv(EnvRemote, "")
	t.Setenv(EnvLogLevel, "")

	path := writeConfig(t, `
host = "git.example.com:8443"
remote = "upstream"
escape_paths = true
log_format = "json"

[identifier]
algorithm = "blake2b"
encoding = "base64"

[batch]
concurrency = 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "git.example.com:8443" || cfg.Remote != "upstream" || !cfg.EscapePaths {
		t.Fatalf("Load = %+v", cfg)
	}
	if cfg.Marker != ".git" || cfg.LogLevel != "warn" {
		t.Fatalf("unset keys lost their defaults: %+v", cfg)
	}
	if cfg.Batch.Concurrency != 4 {
		t.Fatalf("Batch.Concurrency = %d", cfg.Batch.Concurrency)
	}
	if got := cfg.IdentOptions(); got != (ident.Options{Algorithm: ident.BLAKE2b, Encoding: ident.Base64}) {
		t.Fatalf("IdentOptions = %+v", got)
	}
	b := cfg.Builder()
	if b.Host != "git.example.com:8443" || !b.Escape {
		t.Fatalf("Builder = %+v", b)
	}
	if n := len(cfg.RepoOptions(logrus.New())); n != 4 {
		t.Fatalf("RepoOptions returned %d options", n)
	}
}

func TestLoadRejects(t *testing.T) {
	t.Setenv(EnvHost, "")
	t.Setenv(EnvRemote, "")
	t.Setenv(EnvLogLevel, "")

	tests := map[string]string{
		"unknown key":     `colour = "blue"`,
		"bad level":       `log_level = "loud"`,
		"bad format":      `log_format = "xml"`,
		"bad algorithm":   "[identifier]\nalgorithm = \"md5\"",
		"bad encoding":    "[identifier]\nencoding = \"base32\"",
		"zero workers":    "[batch]\nconcurrency = 0",
		"host with path":  `host = "https://github.com/acme"`,
		"marker with dir": `marker = "a/.git"`,
		"empty remote":    `remote = " "`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Load error = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := Load(writeConfig(t, "host = ")); err == nil || errors.Is(err, ErrInvalid) {
		t.Fatalf("Load(syntax error) = %v, want a decode error", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvHost, "ghe.corp.example")
	t.Setenv(EnvRemote, "fork")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(writeConfig(t, `host = "github.com"`+"\n"+`remote = "upstream"`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Host != "ghe.corp.example" || cfg.Remote != "fork" || cfg.LogLevel != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvIgnoresBlank(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(func(key string) (string, bool) {
		if key == EnvRemote {
			return "   ", true
		}
		return "", false
	})
	if cfg.Remote != "origin" {
		t.Fatalf("blank override applied: Remote = %q", cfg.Remote)
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if !strings.HasSuffix(filepath.ToSlash(path), "gitlink/config.toml") {
		t.Fatalf("DefaultPath = %q", path)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	var buf bytes.Buffer
	log, err := cfg.NewLogger(&buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.WithField("root", "/src/widgets").Debug("bound repository")
	out := buf.String()
	if !strings.Contains(out, `"root":"/src/widgets"`) || !strings.Contains(out, `"level":"debug"`) {
		t.Fatalf("json log output = %q", out)
	}

	cfg.LogLevel = "warn"
	cfg.LogFormat = "text"
	buf.Reset()
	log, err = cfg.NewLogger(&buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}

	cfg.LogFormat = "xml"
	if _, err := cfg.NewLogger(&buf); !errors.Is(err, ErrInvalid) {
		t.Fatalf("NewLogger(xml) error = %v, want ErrInvalid", err)
	}
}
