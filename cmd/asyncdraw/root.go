package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gogpu/asyncdraw"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// config is the merged view of flags, environment and config file.
type config struct {
	Scale   float64       `mapstructure:"scale"`
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
	Log     logConfig     `mapstructure:"log"`
}

type logConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// app holds state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config
	logFile io.Closer
}

// newRootCmd builds an isolated command tree, so tests can run commands
// side by side.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "asyncdraw",
		Short:         "Render declarative scenes off the UI goroutine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	f := root.PersistentFlags()
	f.StringVarP(&a.cfgFile, "config", "c", "", "config file (default $HOME/.asyncdraw.yaml)")
	f.Float64("scale", 0, "device pixels per logical unit; 0 uses the scene's scale")
	f.Duration("timeout", 0, "abandon a render after this long; 0 means no limit")
	f.Int("workers", 1, "background render workers for watch")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-file", "", "write logs to a rotated file instead of stderr")

	for key, flag := range map[string]string{
		"scale":     "scale",
		"timeout":   "timeout",
		"workers":   "workers",
		"log.level": "log-level",
		"log.file":  "log-file",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}
	a.v.SetDefault("log.max_size", 10)
	a.v.SetDefault("log.max_backups", 3)
	a.v.SetDefault("log.max_age", 28)
	a.v.SetDefault("log.compress", false)

	root.AddCommand(newRenderCmd(a), newWatchCmd(a), newTreeCmd(a), newVersionCmd())
	return root, a
}

// initialize reads the configuration and installs the logger.
func (a *app) initialize(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		path, err := homedir.Expand(a.cfgFile)
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		a.v.SetConfigFile(path)
	} else {
		if home, err := homedir.Dir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".asyncdraw")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("ASYNCDRAW")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if a.cfg.Scale < 0 {
		return fmt.Errorf("invalid scale %g", a.cfg.Scale)
	}

	logger, logFile, err := newLogger(a.cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logFile = logFile
	asyncdraw.SetLogger(logger)
	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("asyncdraw: config loaded", "file", used)
	}
	return nil
}

func (a *app) close() error {
	asyncdraw.SetLogger(nil)
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// newLogger returns a text logger writing to stderr, or to a
// lumberjack-rotated file when cfg.File is set. The closer is nil for
// stderr.
func newLogger(cfg logConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	w, closer := stderr, io.Closer(nil)
	if cfg.File != "" {
		path, err := homedir.Expand(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		w, closer = lj, lj
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}
