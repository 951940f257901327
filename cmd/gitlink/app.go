package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlink/pkg/config"
	"github.com/odvcencio/gitlink/pkg/repo"
)

// app carries the settings shared by every subcommand.
type app struct {
	configPath string
	host       string
	remote     string
	logLevel   string

	cfg config.Config
	log *logrus.Logger
}

func (a *app) bindFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: user config dir/gitlink/config.toml)")
	flags.StringVar(&a.host, "host", "", "web host for generated links (overrides config and "+config.EnvHost+")")
	flags.StringVar(&a.remote, "remote", "", "remote whose URL identifies the repository (overrides config and "+config.EnvRemote+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: panic, fatal, error, warn, info, debug, trace")
}

// setup loads the config file, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.host != "" {
		cfg.Host = a.host
	}
	if a.remote != "" {
		cfg.Remote = a.remote
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	log.WithField("config", path).Debug("loaded config")
	return nil
}

// openRepo binds a Repo to the repository enclosing path. The returned
// path is absolute, resolved against the working directory.
func (a *app) openRepo(path string) (*repo.Repo, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", path, err)
	}
	r := a.newRepo()
	if err := r.FindRepository(abs); err != nil {
		return nil, "", err
	}
	return r, abs, nil
}

func (a *app) newRepo() *repo.Repo {
	return repo.New(a.cfg.RepoOptions(a.log)...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONTo writes v to path, or to w when path is empty.
func writeJSONTo(w io.Writer, path string, v any) error {
	if path == "" {
		return writeJSON(w, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
