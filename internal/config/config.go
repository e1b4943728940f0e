// Package config loads the askdesk configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultConfigPath is used when Load is called with an empty path.
const defaultConfigPath = "~/.askdesk/config.yaml"

// Config is the full askdesk configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	ToolHost ToolHostConfig `yaml:"tool_host"`
	Agent    AgentConfig    `yaml:"agent"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LLMConfig names the available models and which one is active.
type LLMConfig struct {
	Current   string                 `yaml:"current"`
	Available map[string]ModelConfig `yaml:"available"`
}

// ModelConfig identifies one provider/model pair.
type ModelConfig struct {
	Provider string `yaml:"provider"` // "claude" or "gemini"
	Model    string `yaml:"model"`
}

// ToolHostConfig describes how to launch the tool host child process.
type ToolHostConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// AgentConfig tunes the query loop.
type AgentConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float32 `yaml:"temperature"`
}

// ServerConfig configures the askdeskd HTTP daemon.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
	File  string `yaml:"file"`  // JSON log sink; empty discards
}

// CurrentModel returns the active model entry.
func (c LLMConfig) CurrentModel() (ModelConfig, error) {
	mc, ok := c.Available[c.Current]
	if !ok {
		return ModelConfig{}, fmt.Errorf("current model %q not found in available models", c.Current)
	}
	return mc, nil
}

// ModelNames returns the available model keys, sorted.
func (c LLMConfig) ModelNames() []string {
	names := make([]string, 0, len(c.Available))
	for name := range c.Available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Current: "claude-sonnet",
			Available: map[string]ModelConfig{
				"claude-sonnet": {Provider: "claude", Model: "claude-sonnet-4-20250514"},
				"gemini-flash":  {Provider: "gemini", Model: "gemini-2.0-flash"},
			},
		},
		ToolHost: ToolHostConfig{
			Command: "kbhost",
		},
		Agent: AgentConfig{
			MaxIterations: 10,
			MaxTokens:     4096,
			Temperature:   0.1,
		},
		Server: ServerConfig{
			Address: "localhost:7777",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path (default ~/.askdesk/config.yaml when
// empty), falling back to defaults when the file does not exist, then applies
// environment overrides (ASKDESK_LLM_PROVIDER, ASKDESK_LLM_MODEL,
// ASKDESK_TOOLHOST).
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}
	path = expandPath(path)

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Missing file is fine; defaults apply.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the config as YAML, creating the parent directory if needed.
func Save(cfg *Config, path string) error {
	path = expandPath(path)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides layers environment variables over the loaded config.
// Provider/model overrides are installed as a synthetic "env" entry so the
// rest of the system keeps using CurrentModel().
func applyEnvOverrides(cfg *Config) {
	provider := os.Getenv("ASKDESK_LLM_PROVIDER")
	model := os.Getenv("ASKDESK_LLM_MODEL")
	if provider != "" || model != "" {
		mc, _ := cfg.LLM.CurrentModel()
		if provider != "" {
			mc.Provider = provider
		}
		if model != "" {
			mc.Model = model
		}
		if cfg.LLM.Available == nil {
			cfg.LLM.Available = make(map[string]ModelConfig)
		}
		cfg.LLM.Available["env"] = mc
		cfg.LLM.Current = "env"
	}

	if host := os.Getenv("ASKDESK_TOOLHOST"); host != "" {
		fields := strings.Fields(host)
		cfg.ToolHost.Command = fields[0]
		cfg.ToolHost.Args = fields[1:]
	}
}

// expandPath resolves a leading ~ against the user's home directory.
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
