package config

import "time"

// Config represents the complete slackbridge configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Server  ServerConfig  `yaml:"server"`
	Slack   SlackConfig   `yaml:"slack"`
	LLM     LLMConfig     `yaml:"llm"`
	State   StateConfig   `yaml:"state"`
	Tasks   TasksConfig   `yaml:"tasks"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level" env:"SLACKBRIDGE_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"SLACKBRIDGE_LOG_FORMAT"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Listen      string `yaml:"listen" env:"SLACKBRIDGE_LISTEN"`
	MaxBodySize int64  `yaml:"max_body_size,omitempty"`
}

// SlackConfig holds the credentials for the messaging platform.
// Secrets are normally injected through the environment rather than the
// config file.
type SlackConfig struct {
	SigningSecret string `yaml:"signing_secret" env:"SLACKBRIDGE_SIGNING_SECRET"`
	BotToken      string `yaml:"bot_token" env:"SLACKBRIDGE_BOT_TOKEN"`
}

// LLMConfig defines the text-generation collaborator.
type LLMConfig struct {
	Token       string        `yaml:"token" env:"SLACKBRIDGE_LLM_TOKEN"`
	Model       string        `yaml:"model" env:"SLACKBRIDGE_LLM_MODEL"`
	BaseURL     string        `yaml:"base_url" env:"SLACKBRIDGE_LLM_BASE_URL"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	TopP        float64       `yaml:"top_p"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StateConfig defines the question-bank / trainee database location.
type StateConfig struct {
	Path string `yaml:"path" env:"SLACKBRIDGE_STATE_PATH"`
}

// TasksConfig defines the background reply runner.
type TasksConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "slackbridge",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server: ServerConfig{
			Listen:      "127.0.0.1:8000",
			MaxBodySize: 1 << 20, // 1 MB
		},
		LLM: LLMConfig{
			Model:       "google/gemma-2-2b-it",
			BaseURL:     "https://router.huggingface.co/v1",
			MaxTokens:   512,
			Temperature: 0.7,
			TopP:        0.9,
			Timeout:     30 * time.Second,
		},
		State: StateConfig{
			Path: "./data/slackbridge.db",
		},
		Tasks: TasksConfig{
			Workers: 4,
			Timeout: 30 * time.Second,
		},
	}
}
