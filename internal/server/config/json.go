package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/finauth/internal/flagx"
	"github.com/dmitrijs2005/finauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Pointer and zero-able fields are only copied when present, so a file can
// override a subset of the defaults.
type JsonConfig struct {
	HTTPAddr           string          `json:"http_addr"`
	GRPCHealthAddr     string          `json:"grpc_health_addr"`
	DatabaseDSN        string          `json:"database_dsn"`
	AccessTokenSecret  string          `json:"access_token_secret"`
	RefreshTokenSecret string          `json:"refresh_token_secret"`
	AccessTokenTTL     *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    *timex.Duration `json:"refresh_token_ttl"`
	TokenIssuer        string          `json:"token_issuer"`
	BcryptCost         *int            `json:"bcrypt_cost"`
	RedisAddr          string          `json:"redis_addr"`
	LoginMaxAttempts   *int            `json:"login_max_attempts"`
	LoginLockout       *timex.Duration `json:"login_lockout"`
	LogLevel           string          `json:"log_level"`
}

// parseJson overlays the file named by -c / -config onto config. Without the
// flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenTTL != nil {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL != nil {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.LoginLockout != nil {
		config.LoginLockout = c.LoginLockout.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.LoginMaxAttempts != nil {
		config.LoginMaxAttempts = *c.LoginMaxAttempts
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
