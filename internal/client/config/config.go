package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName   = "libdesk"
	EnvPrefix = "LIBDESK"

	DefaultServerURL = "http://127.0.0.1:8000/"
	DefaultTimeout   = 15 * time.Second
)

// Flag names double as config file keys and, upper-cased with '-' turned
// into '_', as environment variable suffixes (LIBDESK_LOG_LEVEL).
const (
	FlagConfig    = "config"
	FlagServer    = "server"
	FlagState     = "state"
	FlagTimeout   = "timeout"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
)

// Config holds runtime settings for the libdesk CLI.
type Config struct {
	ServerURL string        `mapstructure:"server" validate:"required,url"`
	StatePath string        `mapstructure:"state" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	LogLevel  string        `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string        `mapstructure:"log-format" validate:"oneof=text json"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = DefaultServerURL
	c.StatePath = defaultStatePath()
	c.Timeout = DefaultTimeout
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+AppName, "state.db")
	}
	return filepath.Join(dir, AppName, "state.db")
}

// BindFlags registers the configuration flags on fs with defaults as their
// default values.
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a config file (yaml or json)")
	fs.StringP(FlagServer, "a", d.ServerURL, "base URL of the library API")
	fs.String(FlagState, d.StatePath, "path to the local state database")
	fs.Duration(FlagTimeout, d.Timeout, "per-request timeout")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(FlagLogFormat, d.LogFormat, "log format: text or json")
}

// Load builds a Config from, in increasing precedence: defaults, the config
// file, LIBDESK_* environment variables and flags explicitly set on fs.
// Without --config, ./libdesk.yaml and ~/.libdesk/libdesk.yaml are tried and
// a missing file is not an error.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	v := viper.New()
	v.SetDefault(FlagServer, cfg.ServerURL)
	v.SetDefault(FlagState, cfg.StatePath)
	v.SetDefault(FlagTimeout, cfg.Timeout)
	v.SetDefault(FlagLogLevel, cfg.LogLevel)
	v.SetDefault(FlagLogFormat, cfg.LogFormat)

	configFile := ""
	if fs != nil {
		configFile, _ = fs.GetString(FlagConfig)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})
	return v
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s=%v fails %q", fe.Field(), fe.Value(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %w", err)
}
