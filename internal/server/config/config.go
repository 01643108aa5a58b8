// Package config handles configuration for the development server,
// including defaults, an optional config file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "LIBDESK_SERVER"

const (
	FlagConfig          = "config"
	FlagAddr            = "addr"
	FlagDatabase        = "db"
	FlagSecretKey       = "secret-key"
	FlagAccessTokenTTL  = "access-ttl"
	FlagRefreshTokenTTL = "refresh-ttl"
	FlagAdminUser       = "admin-user"
	FlagAdminPassword   = "admin-password"
	FlagLogLevel        = "log-level"
	FlagLogFormat       = "log-format"
	FlagCORSOrigins     = "cors-origins"
	FlagLoginRate       = "login-rate"
	FlagLoginBurst      = "login-burst"
)

// Config holds runtime settings for the libdesk development server.
//
// Fields:
//   - Addr: listen address of the HTTP API.
//   - DatabasePath: SQLite file (or ":memory:").
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - AdminUser / AdminPassword: account created at startup when missing; empty disables seeding.
//   - CORSOrigins: browser origins allowed to call the API; empty disables CORS.
//   - LoginRate / LoginBurst: login and refresh attempts per minute per client address; 0 disables the limit.
type Config struct {
	Addr                         string        `mapstructure:"addr"`
	DatabasePath                 string        `mapstructure:"db"`
	SecretKey                    string        `mapstructure:"secret-key"`
	AccessTokenValidityDuration  time.Duration `mapstructure:"access-ttl"`
	RefreshTokenValidityDuration time.Duration `mapstructure:"refresh-ttl"`
	AdminUser                    string        `mapstructure:"admin-user"`
	AdminPassword                string        `mapstructure:"admin-password"`
	LogLevel                     string        `mapstructure:"log-level"`
	LogFormat                    string        `mapstructure:"log-format"`
	CORSOrigins                  []string      `mapstructure:"cors-origins"`
	LoginRate                    int           `mapstructure:"login-rate"`
	LoginBurst                   int           `mapstructure:"login-burst"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = "127.0.0.1:8000"
	c.DatabasePath = "libdesk-server.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 5 * time.Minute
	c.RefreshTokenValidityDuration = 24 * time.Hour
	c.AdminUser = "admin"
	c.AdminPassword = "admin"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.CORSOrigins = nil
	c.LoginRate = 20
	c.LoginBurst = 5
}

func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a config file (yaml or json)")
	fs.StringP(FlagAddr, "a", d.Addr, "listen address")
	fs.StringP(FlagDatabase, "d", d.DatabasePath, "SQLite database path")
	fs.StringP(FlagSecretKey, "k", d.SecretKey, "JWT signing key")
	fs.Duration(FlagAccessTokenTTL, d.AccessTokenValidityDuration, "access token lifetime")
	fs.Duration(FlagRefreshTokenTTL, d.RefreshTokenValidityDuration, "refresh token lifetime")
	fs.String(FlagAdminUser, d.AdminUser, "user created at startup if missing")
	fs.String(FlagAdminPassword, d.AdminPassword, "password of the startup user")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(FlagLogFormat, d.LogFormat, "log format: text or json")
	fs.StringSlice(FlagCORSOrigins, d.CORSOrigins, "comma separated origins allowed by CORS")
	fs.Int(FlagLoginRate, d.LoginRate, "login attempts per minute per client, 0 disables")
	fs.Int(FlagLoginBurst, d.LoginBurst, "login attempt burst per client")
}

// Load builds a Config from defaults, the --config file, LIBDESK_SERVER_*
// environment variables and explicitly set flags, in increasing precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	v := viper.New()
	defaults := map[string]any{
		FlagAddr:            cfg.Addr,
		FlagDatabase:        cfg.DatabasePath,
		FlagSecretKey:       cfg.SecretKey,
		FlagAccessTokenTTL:  cfg.AccessTokenValidityDuration,
		FlagRefreshTokenTTL: cfg.RefreshTokenValidityDuration,
		FlagAdminUser:       cfg.AdminUser,
		FlagAdminPassword:   cfg.AdminPassword,
		FlagLogLevel:        cfg.LogLevel,
		FlagLogFormat:       cfg.LogFormat,
		FlagCORSOrigins:     cfg.CORSOrigins,
		FlagLoginRate:       cfg.LoginRate,
		FlagLoginBurst:      cfg.LoginBurst,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if fs != nil {
		if file, _ := fs.GetString(FlagConfig); file != "" {
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
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

func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("invalid config: addr is empty")
	case c.SecretKey == "":
		return errors.New("invalid config: secret-key is empty")
	case c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0:
		return errors.New("invalid config: token lifetimes must be positive")
	case c.LoginRate < 0 || c.LoginBurst < 0:
		return errors.New("invalid config: login rate limit must not be negative")
	}
	return nil
}
