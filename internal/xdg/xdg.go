// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

// Package xdg resolves XDG Base Directory paths for charcore.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "charcore"

func base(env string, fallback ...string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", oops.Code("XDG_NO_HOME").With("env", env).Wrap(err)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/charcore, defaulting to ~/.config.
func ConfigDir() (string, error) { return base("XDG_CONFIG_HOME", ".config") }

// DataDir returns $XDG_DATA_HOME/charcore, defaulting to ~/.local/share.
func DataDir() (string, error) { return base("XDG_DATA_HOME", ".local", "share") }

// StateDir returns $XDG_STATE_HOME/charcore, defaulting to ~/.local/state.
func StateDir() (string, error) { return base("XDG_STATE_HOME", ".local", "state") }

// ConfigFile is the default configuration file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ContentFile is the default game-content file.
func ContentFile() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "content.yaml"), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
