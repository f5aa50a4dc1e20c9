package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/finauth/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv loads the .env file (or the one named by -env-file) into the
// process environment and then overlays the known variables onto config.
// Variables already set in the environment win over the file. A missing
// default .env is fine; a missing explicit one is an error.
func parseEnv(config *Config, args []string) error {
	path := flagx.EnvFileFlag(args)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	lookupString(&config.HTTPAddr, "HTTP_ADDR")
	lookupString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	lookupString(&config.DatabaseDSN, "DATABASE_DSN")
	lookupString(&config.AccessTokenSecret, "JWT_ACCESS_SECRET")
	lookupString(&config.RefreshTokenSecret, "JWT_REFRESH_SECRET")
	lookupString(&config.TokenIssuer, "JWT_ISSUER")
	lookupString(&config.RedisAddr, "REDIS_ADDR")
	lookupString(&config.LogLevel, "LOG_LEVEL")

	return errors.Join(
		lookupDuration(&config.AccessTokenTTL, "JWT_ACCESS_TTL"),
		lookupDuration(&config.RefreshTokenTTL, "JWT_REFRESH_TTL"),
		lookupDuration(&config.LoginLockout, "LOGIN_LOCKOUT"),
		lookupInt(&config.BcryptCost, "BCRYPT_COST"),
		lookupInt(&config.LoginMaxAttempts, "LOGIN_MAX_ATTEMPTS"),
	)
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func lookupInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
