package config

import (
	"time"
)

type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Log      LogConfig            `yaml:"log"`
	Web      WebConfig            `yaml:"web"`
	Fetch    FetchConfig          `yaml:"fetch"`
	Database DatabaseConfig       `yaml:"database"`
	Progress ProgressConfig       `yaml:"progress"`
	Selected SelectedConfig       `yaml:"selected_module"`
	ASR      map[string]ASRConfig `yaml:"ASR"`
	LLM      map[string]LLMConfig `yaml:"LLM"`
	Prompts  PromptsConfig        `yaml:"prompts"`
}

type ServerConfig struct {
	IP   string     `yaml:"ip"`
	Port int        `yaml:"port"`
	Auth AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StaticDir string `yaml:"static_dir"`
}

// FetchConfig parameterises the retrying media fetcher.
type FetchConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	TempDir     string        `yaml:"temp_dir"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ProgressConfig selects the backing store for job progress polling.
type ProgressConfig struct {
	Store string              `yaml:"store"`
	Redis ProgressRedisConfig `yaml:"redis,omitempty"`
}

type ProgressRedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type SelectedConfig struct {
	ASR string `yaml:"ASR"`
	LLM string `yaml:"LLM"`
}

type ASRConfig struct {
	Type       string `yaml:"type"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"url"`
	ModelName  string `yaml:"model_name"`
	Language   string `yaml:"language"`
	SampleRate int    `yaml:"sample_rate"`
	ChunkMS    int    `yaml:"chunk_ms"`
}

type LLMConfig struct {
	Type        string  `yaml:"type"`
	ModelName   string  `yaml:"model_name"`
	BaseURL     string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// PromptsConfig carries the system instructions for each LLM-backed stage.
type PromptsConfig struct {
	Summary   string `yaml:"summary"`
	Chat      string `yaml:"chat"`
	Translate string `yaml:"translate"`
}
