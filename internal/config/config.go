package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds application level configuration loaded from environment
// variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT, default=8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`

	MySQLDSN string `env:"MYSQL_DSN, default=user:password@tcp(localhost:3306)/clientapi?charset=utf8mb4&parseTime=True&loc=Local"`

	JWTSecret  string        `env:"JWT_SECRET, default=change-me"`
	JWTTTL     time.Duration `env:"JWT_TTL,    default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=12"`

	Redis RedisConfig
}

// RedisConfig configures the optional cache backend.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB,   default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// Load builds Config from the environment with sensible defaults.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
