package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Leaderboard backends
const (
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Opponent modes
const (
	OpponentOffline = "offline"
	OpponentOnline  = "online"
)

type Config struct {
	Server struct {
		Port         int      `yaml:"port"`
		AllowOrigins []string `yaml:"allowOrigins"`
	} `yaml:"server"`

	Gemini struct {
		ApiKey         string `yaml:"apiKey"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"gemini"`

	Database struct {
		URI        string `yaml:"uri"`
		Collection string `yaml:"collection"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Leaderboard struct {
		Backend      string `yaml:"backend"`
		DefaultLimit int    `yaml:"defaultLimit"`
	} `yaml:"leaderboard"`

	Sessions struct {
		Backend    string `yaml:"backend"` // memory or redis
		TTLMinutes int    `yaml:"ttlMinutes"`
	} `yaml:"sessions"`

	Opponent struct {
		Mode string `yaml:"mode"`
		Band int    `yaml:"band"`
	} `yaml:"opponent"`
}

// LoadConfig reads the configuration file, loads a .env file if one sits in
// the working directory, and applies ROAST_* environment overrides on top.
// An empty path skips the file and builds the config from defaults and env.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	// zero is a meaningful band, so it is defaulted before the file is read
	cfg.Opponent.Band = 2
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 1313
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:5173"}
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = 15
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "players"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Leaderboard.Backend == "" {
		c.Leaderboard.Backend = BackendMongo
	}
	if c.Leaderboard.DefaultLimit <= 0 {
		c.Leaderboard.DefaultLimit = 10
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = BackendMemory
	}
	if c.Sessions.TTLMinutes <= 0 {
		c.Sessions.TTLMinutes = 120
	}
	if c.Opponent.Mode == "" {
		c.Opponent.Mode = OpponentOffline
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("ROAST_DATABASE_URI", &c.Database.URI)
	str("ROAST_GEMINI_API_KEY", &c.Gemini.ApiKey)
	str("ROAST_GEMINI_MODEL", &c.Gemini.Model)
	str("ROAST_REDIS_ADDR", &c.Redis.Addr)
	str("ROAST_REDIS_PASSWORD", &c.Redis.Password)
	str("ROAST_LEADERBOARD_BACKEND", &c.Leaderboard.Backend)
	str("ROAST_SESSION_BACKEND", &c.Sessions.Backend)
	str("ROAST_OPPONENT_MODE", &c.Opponent.Mode)
	if v, ok := lookup("ROAST_ALLOW_ORIGINS"); ok && v != "" {
		c.Server.AllowOrigins = strings.Split(v, ",")
	}

	for key, dst := range map[string]*int{
		"ROAST_SERVER_PORT":     &c.Server.Port,
		"ROAST_GEMINI_TIMEOUT":  &c.Gemini.TimeoutSeconds,
		"ROAST_REDIS_DB":        &c.Redis.DB,
		"ROAST_OPPONENT_BAND":   &c.Opponent.Band,
		"ROAST_SESSION_TTL_MIN": &c.Sessions.TTLMinutes,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Leaderboard.Backend {
	case BackendMongo:
		if c.Database.URI == "" {
			return errors.New("database.uri is required for the mongo leaderboard")
		}
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown leaderboard backend %q", c.Leaderboard.Backend)
	}

	switch c.Sessions.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}

	switch c.Opponent.Mode {
	case OpponentOffline:
	case OpponentOnline:
		if c.Gemini.ApiKey == "" {
			return errors.New("gemini.apiKey is required for the online opponent")
		}
	default:
		return fmt.Errorf("unknown opponent mode %q", c.Opponent.Mode)
	}
	if c.Opponent.Band < 0 {
		return fmt.Errorf("opponent.band must not be negative, got %d", c.Opponent.Band)
	}
	return nil
}

// GeminiTimeout is the per-call deadline for the online opponent.
func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// SessionTTL is how long an idle session is kept in redis.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Sessions.TTLMinutes) * time.Minute
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Leaderboard.Backend == BackendRedis || c.Sessions.Backend == BackendRedis
}
