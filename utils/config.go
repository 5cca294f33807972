package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

// Config is the storefront's runtime configuration
type Config struct {
	Port string `yaml:"port"`

	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver"`
	StateFile     string `yaml:"state_file"`
	RedisURL      string `yaml:"redis_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Port: "8000",
		API: APIConfig{
			BaseURL: "https://agrilink-1-zqcq.onrender.com/api/v1",
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Driver:        StorageFile,
			StateFile:     "./data/storefront.json",
			RedisURL:      "redis://localhost:6379/0",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "storefront",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads .env (if present), then the optional YAML file named by
// STOREFRONT_CONFIG, then the environment. Later sources win.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Info("No .env file found. Proceeding with environment variables.")
	}

	cfg := DefaultConfig()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "decode config file")
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.API.BaseURL = getEnv("API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout = time.Duration(getEnvInt("API_TIMEOUT_SEC", int(cfg.API.Timeout/time.Second))) * time.Second
	cfg.Storage.Driver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.Storage.Driver))
	cfg.Storage.StateFile = getEnv("STATE_FILE", cfg.Storage.StateFile)
	cfg.Storage.RedisURL = getEnv("REDIS_URL", cfg.Storage.RedisURL)
	cfg.Storage.MongoURI = getEnv("MONGO_URI", cfg.Storage.MongoURI)
	cfg.Storage.MongoDatabase = getEnv("MONGO_DATABASE", cfg.Storage.MongoDatabase)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting the selected driver needs is present
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL must not be empty")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT_SEC must be > 0")
	}
	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.StateFile == "" {
			return errors.New("STATE_FILE must not be empty")
		}
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL must not be empty")
		}
	case StorageMongo:
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE must not be empty")
		}
	default:
		return errors.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
