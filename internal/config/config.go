package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".minechat"
	envPrefix  = "MINECHAT"

	historyFile = "history.db"
	logFile     = "minechat.log"
)

const (
	KeyReadHost               = "read.host"
	KeyReadPort               = "read.port"
	KeyWriteHost              = "write.host"
	KeyWritePort              = "write.port"
	KeyBackoff                = "session.backoff"
	KeyWatchdogWindow         = "session.watchdog_window"
	KeyKeepaliveInterval      = "session.keepalive_interval"
	KeyCredentialPollInterval = "session.credential_poll_interval"
	KeyHistoryPath            = "history.path"
	KeyLogFile                = "log.file"
	KeyLogVerbose             = "log.verbose"
)

type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

type Session struct {
	Backoff                time.Duration
	WatchdogWindow         time.Duration
	KeepaliveInterval      time.Duration
	CredentialPollInterval time.Duration
}

type Config struct {
	Read        Endpoint
	Write       Endpoint
	Session     Session
	HistoryPath string
	LogFile     string
	Verbose     bool
}

// Default returns the settings used when neither a config file, the
// environment nor flags override them.
func Default(home string) Config {
	dir := Dir(home)

	return Config{
		Read:  Endpoint{Host: "minechat.dvmn.org", Port: 5000},
		Write: Endpoint{Host: "minechat.dvmn.org", Port: 5050},
		Session: Session{
			Backoff:                5 * time.Second,
			WatchdogWindow:         3 * time.Second,
			KeepaliveInterval:      3 * time.Second,
			CredentialPollInterval: 3 * time.Second,
		},
		HistoryPath: filepath.Join(dir, historyFile),
		LogFile:     filepath.Join(dir, logFile),
	}
}

func Dir(home string) string {
	return filepath.Join(home, configDir)
}

func Path(home string) string {
	return filepath.Join(Dir(home), configName+"."+configType)
}

// Load layers defaults, ~/.minechat/config.toml, MINECHAT_* variables and any
// flags already bound to v.
func Load(v *viper.Viper, home string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
	}

	setDefaults(v, Default(home))

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(Dir(home))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Read:  Endpoint{Host: v.GetString(KeyReadHost), Port: v.GetInt(KeyReadPort)},
		Write: Endpoint{Host: v.GetString(KeyWriteHost), Port: v.GetInt(KeyWritePort)},
		Session: Session{
			Backoff:                v.GetDuration(KeyBackoff),
			WatchdogWindow:         v.GetDuration(KeyWatchdogWindow),
			KeepaliveInterval:      v.GetDuration(KeyKeepaliveInterval),
			CredentialPollInterval: v.GetDuration(KeyCredentialPollInterval),
		},
		HistoryPath: expandHome(v.GetString(KeyHistoryPath), home),
		LogFile:     expandHome(v.GetString(KeyLogFile), home),
		Verbose:     v.GetBool(KeyLogVerbose),
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Validate(cfg Config) error {
	var errs []error

	for name, endpoint := range map[string]Endpoint{"read": cfg.Read, "write": cfg.Write} {
		if strings.TrimSpace(endpoint.Host) == "" {
			errs = append(errs, fmt.Errorf("%s host is empty", name))
		}
		if endpoint.Port <= 0 || endpoint.Port > 65535 {
			errs = append(errs, fmt.Errorf("%s port %d out of range", name, endpoint.Port))
		}
	}

	durations := map[string]time.Duration{
		KeyBackoff:                cfg.Session.Backoff,
		KeyWatchdogWindow:         cfg.Session.WatchdogWindow,
		KeyKeepaliveInterval:      cfg.Session.KeepaliveInterval,
		KeyCredentialPollInterval: cfg.Session.CredentialPollInterval,
	}
	for key, d := range durations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", key))
		}
	}

	if cfg.HistoryPath == "" {
		errs = append(errs, errors.New("history path is empty"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault(KeyReadHost, cfg.Read.Host)
	v.SetDefault(KeyReadPort, cfg.Read.Port)
	v.SetDefault(KeyWriteHost, cfg.Write.Host)
	v.SetDefault(KeyWritePort, cfg.Write.Port)
	v.SetDefault(KeyBackoff, cfg.Session.Backoff)
	v.SetDefault(KeyWatchdogWindow, cfg.Session.WatchdogWindow)
	v.SetDefault(KeyKeepaliveInterval, cfg.Session.KeepaliveInterval)
	v.SetDefault(KeyCredentialPollInterval, cfg.Session.CredentialPollInterval)
	v.SetDefault(KeyHistoryPath, cfg.HistoryPath)
	v.SetDefault(KeyLogFile, cfg.LogFile)
	v.SetDefault(KeyLogVerbose, cfg.Verbose)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
