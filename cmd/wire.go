package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/minechat/internal/adapters/render/chat"
	historyrender "github.com/bnema/minechat/internal/adapters/render/history"
	"github.com/bnema/minechat/internal/adapters/transport/tcp"
	"github.com/bnema/minechat/internal/application"
	"github.com/bnema/minechat/internal/config"
	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/logging"
	"github.com/bnema/minechat/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const dialTimeout = 10 * time.Second

type app struct {
	dialer          ports.Dialer
	clock           ports.Clock
	historyRenderer func([]domain.HistoryRecord, historyrender.RenderOptions) (string, error)
	chatRunner      func(context.Context, application.Queues) error
}

func wireApp() *app {
	return &app{
		dialer:          tcp.NewDialer(dialTimeout),
		clock:           ports.SystemClock{},
		historyRenderer: historyrender.Render,
		chatRunner: func(ctx context.Context, queues application.Queues) error {
			return chat.Run(ctx, queues)
		},
	}
}

const (
	flagReadHost  = "read-host"
	flagReadPort  = "read-port"
	flagWriteHost = "write-host"
	flagWritePort = "write-port"
	flagHistory   = "history"
	flagLogFile   = "log-file"
	flagVerbose   = "verbose"
)

var flagKeys = map[string]string{
	flagReadHost:  config.KeyReadHost,
	flagReadPort:  config.KeyReadPort,
	flagWriteHost: config.KeyWriteHost,
	flagWritePort: config.KeyWritePort,
	flagHistory:   config.KeyHistoryPath,
	flagLogFile:   config.KeyLogFile,
	flagVerbose:   config.KeyLogVerbose,
}

func addConnectionFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(flagReadHost, "", "host of the reading connection")
	flags.Int(flagReadPort, 0, "port of the reading connection")
	flags.String(flagWriteHost, "", "host of the writing connection")
	flags.Int(flagWritePort, 0, "port of the writing connection")
	flags.String(flagHistory, "", "path of the message history database")
	flags.String(flagLogFile, "", "path of the log file")
	flags.BoolP(flagVerbose, "v", false, "enable debug logging")
}

type identityFlags struct {
	token    string
	nickname string
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.token, "token", "", "account hash used to authorise")
	cmd.Flags().StringVar(&f.nickname, "nickname", "", "nickname to register when no token is given")
}

func (f identityFlags) credentials() domain.Credentials {
	return domain.Credentials{Token: f.token, Nickname: f.nickname}
}

// loadRuntime resolves the effective configuration for cmd and builds the
// logger that goes with it. Callers own the returned logger.
func loadRuntime(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	v := viper.New()
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return config.Config{}, nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(v, "")
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{File: cfg.LogFile, Verbose: cfg.Verbose})
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, logger, nil
}

func sessionConfig(cfg config.Config) application.SessionConfig {
	return application.SessionConfig{
		ReadAddress:            cfg.Read.Address(),
		WriteAddress:           cfg.Write.Address(),
		Backoff:                cfg.Session.Backoff,
		WatchdogWindow:         cfg.Session.WatchdogWindow,
		KeepaliveInterval:      cfg.Session.KeepaliveInterval,
		CredentialPollInterval: cfg.Session.CredentialPollInterval,
	}
}
