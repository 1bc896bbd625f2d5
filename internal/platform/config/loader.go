package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Candidate config file names, tried in order from the working directory.
var configFiles = []string{".config.yaml", "config.yaml"}

// Loader reads configuration from a yaml file layered over DefaultConfig,
// with secrets injected from the environment.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, falling back to process environment")
		}
	}

	cfg := DefaultConfig()
	path := l.path
	if path == "" {
		for _, candidate := range configFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else {
		path = "defaults"
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

// applyEnvOverrides fills secrets from the environment when the file left
// them empty. File values win so a checked-in config can pin test keys.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for name, llm := range cfg.LLM {
			if llm.APIKey == "" {
				llm.APIKey = key
				cfg.LLM[name] = llm
			}
		}
		for name, asr := range cfg.ASR {
			if asr.Type == "whisper" && asr.APIKey == "" {
				asr.APIKey = key
				cfg.ASR[name] = asr
			}
		}
	}
	if key := os.Getenv("SM_KEY"); key != "" {
		for name, asr := range cfg.ASR {
			if asr.Type == "speechmatics" && asr.APIKey == "" {
				asr.APIKey = key
				cfg.ASR[name] = asr
			}
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" && cfg.Server.Auth.JWTSecret == "" {
		cfg.Server.Auth.JWTSecret = secret
	}
	if port := os.Getenv("PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	if cfg.Fetch.MaxAttempts <= 0 {
		return fmt.Errorf("fetch max_attempts must be positive")
	}
	if cfg.Fetch.RetryDelay < 0 {
		return fmt.Errorf("fetch retry_delay must not be negative")
	}
	if cfg.Selected.ASR != "" {
		if _, ok := cfg.ASR[cfg.Selected.ASR]; !ok {
			return fmt.Errorf("selected ASR %q has no configuration block", cfg.Selected.ASR)
		}
	}
	if cfg.Selected.LLM != "" {
		if _, ok := cfg.LLM[cfg.Selected.LLM]; !ok {
			return fmt.Errorf("selected LLM %q has no configuration block", cfg.Selected.LLM)
		}
	}
	switch strings.ToLower(cfg.Progress.Store) {
	case "", "memory":
	case "redis":
		if cfg.Progress.Redis.Addr == "" {
			return fmt.Errorf("progress store redis requires an addr")
		}
	default:
		return fmt.Errorf("unsupported progress store %q", cfg.Progress.Store)
	}
	return nil
}
