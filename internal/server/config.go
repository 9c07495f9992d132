package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/finance-calculators/internal/cache"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string               `yaml:"address"`
	MaxBodySize   string               `yaml:"maxBodySize"`
	Logging       config.LoggingConfig `yaml:"logging"`
	Cache         CacheConfig          `yaml:"cache"`
	bodySizeBytes int64
}

// CacheConfig selects where calculator results are memoized.
type CacheConfig struct {
	Backend      string `yaml:"backend"` // memory, redis, none
	RedisAddress string `yaml:"redisAddress"`
	TTL          string `yaml:"ttl"`        // Go duration, e.g. 5m
	MaxEntries   int    `yaml:"maxEntries"` // memory backend bound, 0 for the default
	ttl          time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:       constants.DefaultServerAddress,
		MaxBodySize:   strconv.FormatInt(constants.DefaultMaxBodySizeBytes, 10),
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
		Cache: CacheConfig{
			Backend: CacheMemory,
			ttl:     constants.DefaultCacheTTLSeconds * time.Second,
		},
	}
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = strconv.FormatInt(size, 10)
	}
}

// CacheTTL returns how long cached results stay valid.
func (c CacheConfig) CacheTTL() time.Duration {
	if c.ttl <= 0 {
		return constants.DefaultCacheTTLSeconds * time.Second
	}
	return c.ttl
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	size, err := ParseSize(c.MaxBodySize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = size

	return c.Cache.normalize()
}

func (c *CacheConfig) normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = CacheMemory
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("cache backend %q requires redisAddress", CacheRedis)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("cache maxEntries must not be negative, got %d", c.MaxEntries)
	}

	if strings.TrimSpace(c.TTL) == "" {
		c.ttl = constants.DefaultCacheTTLSeconds * time.Second
		return nil
	}
	ttl, err := time.ParseDuration(strings.TrimSpace(c.TTL))
	if err != nil {
		return fmt.Errorf("invalid cache ttl %q: %w", c.TTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.TTL)
	}
	c.ttl = ttl
	return nil
}

// NewCache builds the configured cache backend.
func (c CacheConfig) NewCache(logger *zap.Logger) (cache.Cache, error) {
	switch c.Backend {
	case CacheRedis:
		return cache.NewRedisCache(c.RedisAddress, logger), nil
	case CacheNone:
		return cache.Nop{}, nil
	case "", CacheMemory:
		return cache.NewMemoryCacheSize(c.MaxEntries), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(upper[:idx]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unit := strings.TrimSpace(upper[idx:]); unit {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unit)
	}

	if n > 0 && n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
