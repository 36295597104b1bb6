// Package config loads the unified application configuration from a JSON
// config file with SIMS_-prefixed environment overrides. A .env file in
// the working directory is honored before viper reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the monitor.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	NER       NERConfig       `mapstructure:"ner"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Listen       string `mapstructure:"listen"`
	Debug        bool   `mapstructure:"debug"`
	TopicKeyword string `mapstructure:"topic_keyword"`
}

// DatabasesConfig groups backing-store settings.
type DatabasesConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig configures the article store. URL wins over the
// discrete fields when set.
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the Postgres connection string.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (databases.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// RedisConfig configures the scheduler lock store.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// DiscoveryConfig configures the external content-discovery API and the
// ingestion schedule.
type DiscoveryConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	Query      string        `mapstructure:"query"`
	NumResults int           `mapstructure:"num_results"`
	Interval   time.Duration `mapstructure:"interval"`
	Cron       string        `mapstructure:"cron"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// NERConfig configures the external entity-extraction service. An empty
// endpoint disables extraction.
type NERConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoadConfig reads config.json from the usual locations (or the explicit
// path) and applies SIMS_* environment overrides.
func LoadConfig(path string) *Config {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.listen", ":10002")
	viper.SetDefault("general.topic_keyword", "bangladesh")
	viper.SetDefault("discovery.endpoint", "https://api.exa.ai/search")
	viper.SetDefault("discovery.query", "Bangladesh-related news coverage by Indian news media")
	viper.SetDefault("discovery.num_results", 100)
	viper.SetDefault("discovery.interval", 10*time.Minute)
	viper.SetDefault("discovery.timeout", time.Minute)
	viper.SetDefault("ner.timeout", 10*time.Second)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("SIMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Env-only deployments are fine; a broken file is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
