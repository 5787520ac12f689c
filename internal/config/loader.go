package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a YAML file. Values start from
// Defaults, ${VAR} references in the file are expanded from the environment,
// then SLACKBRIDGE_* environment variables override the result. Secrets can
// therefore live entirely outside the file.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	expanded := expandEnvRefs(data)
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a configuration without a file, from defaults plus the
// environment. Used when no config file is supplied.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// expandEnvRefs replaces ${VAR} occurrences with values from the environment.
// Unset variables expand to the empty string.
func expandEnvRefs(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func validate(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.MaxBodySize <= 0 {
		return fmt.Errorf("server.max_body_size must be positive")
	}
	if cfg.Slack.SigningSecret == "" {
		return fmt.Errorf("slack.signing_secret is required (or SLACKBRIDGE_SIGNING_SECRET)")
	}
	if cfg.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required (or SLACKBRIDGE_BOT_TOKEN)")
	}
	if cfg.LLM.Token == "" {
		return fmt.Errorf("llm.token is required (or SLACKBRIDGE_LLM_TOKEN)")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if cfg.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2]")
	}
	if cfg.LLM.TopP <= 0 || cfg.LLM.TopP > 1 {
		return fmt.Errorf("llm.top_p must be in (0, 1]")
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}
	if cfg.Tasks.Workers <= 0 {
		return fmt.Errorf("tasks.workers must be positive")
	}
	if cfg.Tasks.Timeout <= 0 {
		return fmt.Errorf("tasks.timeout must be positive")
	}
	return nil
}
