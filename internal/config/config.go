// Package config resolves scd node settings from flags, SCD_* environment
// variables and an optional <home>/config/app.toml, in that precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SCD"

	FlagHome      = "home"
	FlagAddr      = "addr"
	FlagTransport = "transport"
	FlagDBBackend = "db-backend"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"

	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

type Config struct {
	Home      string
	Addr      string
	Transport string
	DBBackend string
	LogLevel  string
	LogFormat string
}

func DefaultConfig() Config {
	return Config{
		Home:      ".scd",
		Addr:      "tcp://127.0.0.1:26658",
		Transport: "socket",
		DBBackend: string(dbm.GoLevelDBBackend),
		LogLevel:  zerolog.InfoLevel.String(),
		LogFormat: LogFormatPlain,
	}
}

// AddFlags registers the node flags with their defaults.
func AddFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.String(FlagHome, def.Home, "node home directory (data under <home>/data, config under <home>/config)")
	fs.String(FlagAddr, def.Addr, "ABCI listen address")
	fs.String(FlagTransport, def.Transport, "ABCI transport (socket|grpc)")
	fs.String(FlagDBBackend, def.DBBackend, "database backend (goleveldb|pebbledb|memdb)")
	fs.String(FlagLogLevel, def.LogLevel, "log level (trace|debug|info|warn|error)")
	fs.String(FlagLogFormat, def.LogFormat, "log format (plain|json)")
}

// Load merges flags, environment and the optional config file.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	def := DefaultConfig()
	v.SetDefault(FlagHome, def.Home)
	v.SetDefault(FlagAddr, def.Addr)
	v.SetDefault(FlagTransport, def.Transport)
	v.SetDefault(FlagDBBackend, def.DBBackend)
	v.SetDefault(FlagLogLevel, def.LogLevel)
	v.SetDefault(FlagLogFormat, def.LogFormat)

	path := filepath.Join(v.GetString(FlagHome), "config", "app.toml")
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg := Config{
		Home:      v.GetString(FlagHome),
		Addr:      v.GetString(FlagAddr),
		Transport: v.GetString(FlagTransport),
		DBBackend: v.GetString(FlagDBBackend),
		LogLevel:  v.GetString(FlagLogLevel),
		LogFormat: v.GetString(FlagLogFormat),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home must be set")
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must be set")
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("unsupported transport %q (socket|grpc)", c.Transport)
	}
	switch dbm.BackendType(c.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.PebbleDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db backend %q (goleveldb|pebbledb|memdb)", c.DBBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q (plain|json)", c.LogFormat)
	}
	return nil
}

func (c Config) Backend() dbm.BackendType {
	return dbm.BackendType(c.DBBackend)
}

// NewLogger builds the node logger writing to w.
func (c Config) NewLogger(w io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := []log.Option{log.LevelOption(level)}
	if c.LogFormat == LogFormatJSON {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...), nil
}
