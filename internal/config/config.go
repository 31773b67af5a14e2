// Package config loads runtime settings from an optional YAML file, a .env
// file and environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	AI       AIConfig       `yaml:"ai"`
	Redis    RedisConfig    `yaml:"redis"`
	Chat     ChatConfig     `yaml:"chat"`
	Plans    PlansConfig    `yaml:"plans"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
	SecureCookies      bool          `yaml:"secure_cookies"`
	GitHubClientID     string        `yaml:"github_client_id"`
	GitHubClientSecret string        `yaml:"github_client_secret"`
	GitHubCallbackURL  string        `yaml:"github_callback_url"`
}

// GitHubEnabled reports whether GitHub sign-in routes should be mounted.
func (a AuthConfig) GitHubEnabled() bool {
	return a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

type AIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	SummaryModel string        `yaml:"summary_model"`
	Timeout      time.Duration `yaml:"timeout"`
}

// RedisConfig is optional. An empty Addr keeps chat sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ChatConfig struct {
	MaxHistory int           `yaml:"max_history"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type PlansConfig struct {
	DietLookbackDays    int `yaml:"diet_lookback_days"`
	WorkoutLookbackDays int `yaml:"workout_lookback_days"`
	RecentLimit         int `yaml:"recent_limit"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second, // AI calls can be slow
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Path: "data/fittrack.db"},
		Log:      LogConfig{Level: "info", Format: "text", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		AI: AIConfig{
			BaseURL:      "https://api.groq.com/openai/v1",
			Model:        "llama3-8b-8192",
			SummaryModel: "llama3-70b-8192",
			Timeout:      30 * time.Second,
		},
		Chat:  ChatConfig{MaxHistory: 20, SessionTTL: 24 * time.Hour},
		Plans: PlansConfig{DietLookbackDays: 3, WorkoutLookbackDays: 7, RecentLimit: 10},
	}
}

// Load builds the configuration. configFile may be empty, in which case
// only defaults and the environment are used. A missing .env is not an error.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	c := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, c); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", configFile, err)
		}
	}

	c.applyEnv()

	if c.Auth.GitHubCallbackURL == "" {
		c.Auth.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", c.Server.Port)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	envOverrideInt(&c.Server.Port, "PORT")
	envOverride(&c.Database.Path, "DB_PATH")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&c.Auth.GitHubClientID, "GITHUB_CLIENT_ID")
	envOverride(&c.Auth.GitHubClientSecret, "GITHUB_CLIENT_SECRET")
	envOverride(&c.Auth.GitHubCallbackURL, "GITHUB_CALLBACK_URL")
	envOverride(&c.AI.APIKey, "GROQ_API_KEY")
	envOverride(&c.AI.BaseURL, "AI_BASE_URL")
	envOverride(&c.AI.Model, "AI_MODEL")
	envOverride(&c.Redis.Addr, "REDIS_ADDR")
	envOverride(&c.Redis.Password, "REDIS_PASSWORD")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("config: database.path is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("config: auth.jwt_secret (JWT_SECRET) must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	// The dashboard waits on one round of parallel AI calls.
	if c.Server.WriteTimeout > 0 && c.AI.Timeout > 0 && c.Server.WriteTimeout <= c.AI.Timeout {
		return fmt.Errorf("config: server.write_timeout (%s) must exceed ai.timeout (%s)", c.Server.WriteTimeout, c.AI.Timeout)
	}
	if c.Chat.MaxHistory <= 0 {
		return errors.New("config: chat.max_history must be positive")
	}
	if c.Plans.RecentLimit <= 0 || c.Plans.DietLookbackDays <= 0 || c.Plans.WorkoutLookbackDays <= 0 {
		return errors.New("config: plans lookback and limit must be positive")
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
