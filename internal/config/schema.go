package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode = 0o600
	configDirMode  = 0o700
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Read    endpointSchema `toml:"read"`
	Write   endpointSchema `toml:"write"`
	Session sessionSchema  `toml:"session"`
	History historySchema  `toml:"history"`
	Log     logSchema      `toml:"log"`
}

type endpointSchema struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type sessionSchema struct {
	Backoff                string `toml:"backoff"`
	WatchdogWindow         string `toml:"watchdog_window"`
	KeepaliveInterval      string `toml:"keepalive_interval"`
	CredentialPollInterval string `toml:"credential_poll_interval"`
}

type historySchema struct {
	Path string `toml:"path"`
}

type logSchema struct {
	File    string `toml:"file"`
	Verbose bool   `toml:"verbose"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Read:  endpointSchema{Host: cfg.Read.Host, Port: cfg.Read.Port},
		Write: endpointSchema{Host: cfg.Write.Host, Port: cfg.Write.Port},
		Session: sessionSchema{
			Backoff:                cfg.Session.Backoff.String(),
			WatchdogWindow:         cfg.Session.WatchdogWindow.String(),
			KeepaliveInterval:      cfg.Session.KeepaliveInterval.String(),
			CredentialPollInterval: cfg.Session.CredentialPollInterval.String(),
		},
		History: historySchema{Path: cfg.HistoryPath},
		Log:     logSchema{File: cfg.LogFile, Verbose: cfg.Verbose},
	}
}

// Write stores cfg as TOML at path. An existing file is kept unless overwrite is set.
func Write(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmp.Chmod(configFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}
