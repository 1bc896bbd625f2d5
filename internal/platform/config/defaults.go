package config

import "time"

// DefaultConfig returns the baseline configuration; file and environment
// values are layered on top of it by the Loader.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 3001,
			Auth: AuthConfig{
				TokenTTL: time.Hour,
			},
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Fetch: FetchConfig{
			MaxAttempts: 6,
			RetryDelay:  20 * time.Second,
			TempDir:     "data/tmp",
		},
		Database: DatabaseConfig{
			DSN: "data/podlyze.db",
		},
		Progress: ProgressConfig{
			Store: "memory",
		},
		Selected: SelectedConfig{
			ASR: "SpeechmaticsASR",
			LLM: "ChatGLLM",
		},
		ASR: map[string]ASRConfig{
			"SpeechmaticsASR": {
				Type:       "speechmatics",
				BaseURL:    "wss://eu2.rt.speechmatics.com/v2",
				Language:   "en",
				SampleRate: 16000,
				ChunkMS:    200,
			},
			"WhisperASR": {
				Type:      "whisper",
				ModelName: "whisper-1",
			},
		},
		LLM: map[string]LLMConfig{
			"ChatGLLM": {
				Type:        "openai",
				ModelName:   "gpt-4o-mini",
				Temperature: 0.5,
				MaxTokens:   2048,
			},
		},
		Prompts: PromptsConfig{
			Summary:   "You are a video summarizer. Given the following transcript of a video, provide a long form summary of the text.",
			Chat:      "You are a helpful assistant that can answer questions about a podcast summary. Here's the summary:",
			Translate: "You are a professional translator. Translate the following text to %s. Maintain the original meaning and tone as closely as possible.",
		},
	}
}
