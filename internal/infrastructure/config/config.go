// Package config loads service configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// ServerConfig holds settings shared by both services.
type ServerConfig struct {
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`
}

// IsProduction reports whether the service runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

type MongoConfig struct {
	URI string `env:"MONGODB_URL, default=mongodb://localhost:27017"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// TokenConfig holds the shared token policy.
type TokenConfig struct {
	Secret    string        `env:"JWT_SECRET_KEY,   required"`
	Algorithm string        `env:"JWT_ALGORITHM,    default=HS256"`
	TTL       time.Duration `env:"ACCESS_TOKEN_TTL, default=30m"`
}

// IdentityConfig configures the identity service.
type IdentityConfig struct {
	Port       string `env:"PORT,          default=8000"`
	Database   string `env:"DATABASE_NAME, default=user_service_db"`
	BcryptCost int    `env:"BCRYPT_COST,   default=10"`

	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
}

// OrderConfig configures the order service.
type OrderConfig struct {
	Port             string        `env:"PORT,                 default=8001"`
	Database         string        `env:"DATABASE_NAME,        default=order_service_db"`
	UserServiceURL   string        `env:"USER_SERVICE_URL,     default=http://localhost:8000"`
	UserServiceTO    time.Duration `env:"USER_SERVICE_TIMEOUT, default=5s"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL,   default=0s"`
	TokenTTL         time.Duration `env:"ACCESS_TOKEN_TTL,     default=30m"`
	AuditWorkers     int           `env:"AUDIT_WORKERS,        default=4"`

	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

// LoadIdentity reads and validates the identity service configuration.
func LoadIdentity(ctx context.Context) (*IdentityConfig, error) {
	return LoadIdentityFrom(ctx, envconfig.OsLookuper())
}

// LoadIdentityFrom is LoadIdentity with an explicit lookuper.
func LoadIdentityFrom(ctx context.Context, l envconfig.Lookuper) (*IdentityConfig, error) {
	var cfg IdentityConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrder reads and validates the order service configuration.
func LoadOrder(ctx context.Context) (*OrderConfig, error) {
	return LoadOrderFrom(ctx, envconfig.OsLookuper())
}

// LoadOrderFrom is LoadOrder with an explicit lookuper.
func LoadOrderFrom(ctx context.Context, l envconfig.Lookuper) (*OrderConfig, error) {
	var cfg OrderConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *IdentityConfig) Validate() error {
	var errs []error
	errs = append(errs, validateServer(c.Server))
	switch strings.ToUpper(c.Token.Algorithm) {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not an HMAC algorithm", c.Token.Algorithm))
	}
	if c.Token.TTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	return joinConfigErrors(errs)
}

func (c *OrderConfig) Validate() error {
	var errs []error
	errs = append(errs, validateServer(c.Server))
	if c.UserServiceURL == "" {
		errs = append(errs, errors.New("USER_SERVICE_URL must be set"))
	}
	if c.UserServiceTO <= 0 {
		errs = append(errs, errors.New("USER_SERVICE_TIMEOUT must be positive"))
	}
	if c.IdentityCacheTTL < 0 {
		errs = append(errs, errors.New("IDENTITY_CACHE_TTL must not be negative"))
	}
	if c.IdentityCacheTTL > c.TokenTTL {
		errs = append(errs, errors.New("IDENTITY_CACHE_TTL must not exceed ACCESS_TOKEN_TTL"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	return joinConfigErrors(errs)
}

// CacheEnabled reports whether verified identities are cached in Redis.
func (c *OrderConfig) CacheEnabled() bool {
	return c.IdentityCacheTTL > 0
}

func validateServer(s ServerConfig) error {
	switch s.StoreDriver {
	case StoreMongo, StoreMemory:
		return nil
	}
	return fmt.Errorf("STORE_DRIVER %q is not one of %s, %s", s.StoreDriver, StoreMongo, StoreMemory)
}

func joinConfigErrors(errs []error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
