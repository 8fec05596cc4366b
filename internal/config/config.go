// Package config loads hook configuration from the environment and optional
// .env files into a single Config value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	EnvFileName   = ".env"
	LockFileName  = ".audio_lock"
	LogDirName    = "logs"
	SoundsDirName = "sounds"
	EventsDBName  = "events.db"

	DefaultProvider        = "anthropic"
	DefaultAnthropicModel  = "claude-3-5-haiku-20241022"
	DefaultOpenRouterModel = "meta-llama/llama-3.2-3b-instruct"
	DefaultRetentionHours  = 6
)

// Config is populated once at process start and passed down to every command.
type Config struct {
	ProjectDir string
	LogDir     string
	SoundsDir  string
	LockFile   string
	EventsDB   string
	LogFile    string

	// ActiveProvider is the preferred summarization provider, lower-cased.
	ActiveProvider string
	Anthropic      ProviderConfig
	OpenRouter     ProviderConfig

	EngineerName string
	LogRetention time.Duration

	SlackWebhookURL string
	TTS             TTSConfig
}

// ProviderConfig holds credentials for one hosted LLM API.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// TTSConfig configures spoken announcements.
type TTSConfig struct {
	Provider      string // openai, polly, gcp
	OpenAIAPIKey  string
	OpenAIVoice   string
	PollyRegion   string
	PollyVoice    string
	GCPProjectID  string
	GCPVoice      string
	GCPCredential string
}

// Load builds a Config for projectDir. Values from projectDir/.env take
// precedence over the process environment; a missing .env file is not an error.
// An empty projectDir falls back to CLAUDE_PROJECT_DIR and then the working
// directory.
func Load(projectDir string) (*Config, error) {
	if projectDir == "" {
		projectDir = os.Getenv("CLAUDE_PROJECT_DIR")
	}
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		projectDir = wd
	}

	env := newEnv(filepath.Join(projectDir, EnvFileName))
	return fromEnv(projectDir, env), nil
}

func fromEnv(projectDir string, env *envSource) *Config {
	logDir := env.get("CCHOOKS_LOG_DIR", filepath.Join(projectDir, LogDirName))

	cfg := &Config{
		ProjectDir: projectDir,
		LogDir:     logDir,
		SoundsDir:  env.get("CCHOOKS_SOUNDS_DIR", filepath.Join(projectDir, SoundsDirName)),
		LockFile:   filepath.Join(projectDir, LockFileName),
		EventsDB:   env.get("CCHOOKS_EVENTS_DB", filepath.Join(logDir, EventsDBName)),
		LogFile:    env.get("CCHOOKS_LOG_FILE", ""),

		ActiveProvider: strings.ToLower(strings.TrimSpace(env.get("ACTIVE_SUMMARIZATION_PROVIDER", DefaultProvider))),
		Anthropic: ProviderConfig{
			APIKey:  strings.TrimSpace(env.first("ANTHROPIC_API_KEY", "ANTHROPIC_KEY")),
			Model:   env.get("ANTHROPIC_MODEL", DefaultAnthropicModel),
			BaseURL: env.get("ANTHROPIC_BASE_URL", ""),
		},
		OpenRouter: ProviderConfig{
			APIKey:  strings.TrimSpace(env.first("OPENROUTER_API_KEY", "OPENROUTER_KEY")),
			Model:   env.get("OPENROUTER_MODEL", DefaultOpenRouterModel),
			BaseURL: env.get("OPENROUTER_BASE_URL", ""),
		},

		EngineerName: strings.TrimSpace(env.get("ENGINEER_NAME", "")),
		LogRetention: time.Duration(env.getInt("LOG_RETENTION_HOURS", DefaultRetentionHours)) * time.Hour,

		SlackWebhookURL: env.get("SLACK_WEBHOOK_URL", ""),
		TTS: TTSConfig{
			Provider:      strings.ToLower(env.get("TTS_PROVIDER", "")),
			OpenAIAPIKey:  env.get("OPENAI_API_KEY", ""),
			OpenAIVoice:   env.get("OPENAI_TTS_VOICE", "nova"),
			PollyRegion:   env.get("AWS_REGION", "us-east-1"),
			PollyVoice:    env.get("AWS_POLLY_VOICE", "Joanna"),
			GCPProjectID:  env.get("GOOGLE_CLOUD_PROJECT", ""),
			GCPVoice:      env.get("GCP_TTS_VOICE", "en-US-Neural2-F"),
			GCPCredential: env.get("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
	}

	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = DefaultProvider
	}

	return cfg
}

// Provider returns the credentials for a named LLM provider.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	switch strings.ToLower(name) {
	case "anthropic":
		return c.Anthropic, true
	case "openrouter":
		return c.OpenRouter, true
	default:
		return ProviderConfig{}, false
	}
}

// Masked returns a copy safe for display. Keys are replaced with a marker that
// only reveals whether they are set.
func (c *Config) Masked() *Config {
	masked := *c
	masked.Anthropic.APIKey = maskSecret(c.Anthropic.APIKey)
	masked.OpenRouter.APIKey = maskSecret(c.OpenRouter.APIKey)
	masked.TTS.OpenAIAPIKey = maskSecret(c.TTS.OpenAIAPIKey)
	masked.SlackWebhookURL = maskSecret(c.SlackWebhookURL)
	return &masked
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return fmt.Sprintf("[set, %d chars]", len(s))
}

// envSource layers values read from a .env file over the process environment.
type envSource struct {
	file map[string]string
}

func newEnv(path string) *envSource {
	values, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", path).Msg("Failed to read env file")
		}
		values = map[string]string{}
	}
	return &envSource{file: values}
}

func (e *envSource) lookup(key string) (string, bool) {
	if v, ok := e.file[key]; ok && v != "" {
		return v, true
	}
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	return "", false
}

func (e *envSource) get(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

// first returns the value of the first key that is set.
func (e *envSource) first(keys ...string) string {
	for _, k := range keys {
		if v, ok := e.lookup(k); ok {
			return v
		}
	}
	return ""
}

func (e *envSource) getInt(key string, def int) int {
	if v, ok := e.lookup(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && i > 0 {
			return i
		}
	}
	return def
}
