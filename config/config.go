package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API       APIConfig
	Database  DatabaseConfig
	Archive   ArchiveConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
	DBPath    string
	LogLevel  string
}

type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	AuthToken string `yaml:"auth_token"`
	Timeout   time.Duration
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type ArchiveConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

func (a *ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

type SchedulerConfig struct {
	Cron     string `yaml:"cron"`
	Interval time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:   getEnv("HOUSEFINDER_API_URL", "http://localhost:8000"),
			AuthToken: os.Getenv("HOUSEFINDER_AUTH_TOKEN"),
			Timeout:   30 * time.Second,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("ARCHIVE_BUCKET"),
			Region:          getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("REFRESH_CRON"),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("CACHE_TTL", 24*time.Hour),
		},
		DBPath:   getEnv("DB_PATH", "housefinder.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadFile("config.yaml"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays an optional yaml config on top of the env-derived one.
// Absence of the file is not an error.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file struct {
		API       APIConfig       `yaml:"api"`
		Database  DatabaseConfig  `yaml:"database"`
		Archive   ArchiveConfig   `yaml:"archive"`
		Scheduler SchedulerConfig `yaml:"scheduler"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	if file.API.BaseURL != "" {
		c.API.BaseURL = file.API.BaseURL
	}
	if file.API.AuthToken != "" {
		c.API.AuthToken = file.API.AuthToken
	}
	if file.Database.URL != "" {
		c.Database.URL = file.Database.URL
	}
	if file.Archive.Bucket != "" {
		c.Archive = file.Archive
	}
	if file.Scheduler.Cron != "" {
		c.Scheduler.Cron = file.Scheduler.Cron
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}


func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
