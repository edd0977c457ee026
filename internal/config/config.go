package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort              = 8000
	defaultEnv               = "development"
	defaultSessionTTLSeconds = 3600

	defaultCacheMaxAgeHours        = 24
	defaultJobMaxAgeHours          = 72
	defaultSweepIntervalMinutes    = 30
	defaultCollaboratorTimeoutSecs = 120

	defaultTTSModel           = "gpt-4o-mini-tts"
	defaultTTSVoice           = "alloy"
	defaultTranscriptionModel = "whisper-1"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port              int                `yaml:"port"`
	Env               string             `yaml:"env"` // "development" | "production"
	AllowedOrigins    []string           `yaml:"allowed_origins"`
	SessionTTLSeconds int                `yaml:"session_ttl_seconds"`
	Paths             RuntimePathsConfig `yaml:"paths"`
	Cache             CacheConfig        `yaml:"cache"`
	Collaborator      CollaboratorConfig `yaml:"collaborator"`
	AI                AIConfig           `yaml:"ai"`
}

type RuntimePathsConfig struct {
	Artifacts string `yaml:"artifacts"`
}

// CacheConfig controls the age-based sweeps over the artifact cache and the
// job store.
type CacheConfig struct {
	MaxAgeHours          int `yaml:"max_age_hours"`
	JobMaxAgeHours       int `yaml:"job_max_age_hours"`
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

// CollaboratorConfig bounds calls to the external AI service.
type CollaboratorConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// AIConfig lists the configured AI providers and the audio model settings.
type AIConfig struct {
	Providers          []AIProvider `yaml:"providers"`
	TTSModel           string       `yaml:"tts_model"`
	TTSVoice           string       `yaml:"tts_voice"`
	TranscriptionModel string       `yaml:"transcription_model"`
}

type AIProvider struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Type         string `yaml:"type" json:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key" json:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model" json:"default_model"`
	Enabled      bool   `yaml:"enabled" json:"enabled"`
}

// Load reads the YAML config at configPath. A missing file is not an error:
// every key has a default, matching how the server is run in development.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := AppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.SessionTTLSeconds < 1 {
		return nil, fmt.Errorf("invalid session_ttl_seconds %d in %q, expected >= 1", cfg.SessionTTLSeconds, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:              defaultPort,
		Env:               defaultEnv,
		SessionTTLSeconds: defaultSessionTTLSeconds,
		Cache: CacheConfig{
			MaxAgeHours:          defaultCacheMaxAgeHours,
			JobMaxAgeHours:       defaultJobMaxAgeHours,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Collaborator: CollaboratorConfig{
			TimeoutSeconds: defaultCollaboratorTimeoutSecs,
		},
		AI: AIConfig{
			Providers:          []AIProvider{},
			TTSModel:           defaultTTSModel,
			TTSVoice:           defaultTTSVoice,
			TranscriptionModel: defaultTranscriptionModel,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw AppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = strings.ToLower(v)
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if raw.SessionTTLSeconds != 0 {
		cfg.SessionTTLSeconds = raw.SessionTTLSeconds
	}
	if v := strings.TrimSpace(raw.Paths.Artifacts); v != "" {
		cfg.Paths.Artifacts = v
	}
	if raw.Cache.MaxAgeHours != 0 {
		cfg.Cache.MaxAgeHours = raw.Cache.MaxAgeHours
	}
	if raw.Cache.JobMaxAgeHours != 0 {
		cfg.Cache.JobMaxAgeHours = raw.Cache.JobMaxAgeHours
	}
	if raw.Cache.SweepIntervalMinutes != 0 {
		cfg.Cache.SweepIntervalMinutes = raw.Cache.SweepIntervalMinutes
	}
	if raw.Collaborator.TimeoutSeconds != 0 {
		cfg.Collaborator.TimeoutSeconds = raw.Collaborator.TimeoutSeconds
	}
	if raw.AI.Providers != nil {
		cfg.AI.Providers = raw.AI.Providers
	}
	if v := strings.TrimSpace(raw.AI.TTSModel); v != "" {
		cfg.AI.TTSModel = v
	}
	if v := strings.TrimSpace(raw.AI.TTSVoice); v != "" {
		cfg.AI.TTSVoice = v
	}
	if v := strings.TrimSpace(raw.AI.TranscriptionModel); v != "" {
		cfg.AI.TranscriptionModel = v
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// SessionTTL returns the configured session lifetime.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// ArtifactDir resolves the directory where synthesized audio blobs live.
func (c *AppConfig) ArtifactDir() string {
	if c == nil {
		return ResolveRuntimePath("", "artifacts")
	}
	return ResolveRuntimePath(c.Paths.Artifacts, "artifacts")
}

// CacheMaxAge returns the maximum age of an artifact cache entry.
func (c *AppConfig) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeHours) * time.Hour
}

// JobMaxAge returns the maximum age of a job store entry.
func (c *AppConfig) JobMaxAge() time.Duration {
	return time.Duration(c.Cache.JobMaxAgeHours) * time.Hour
}

// SweepInterval returns how often the store sweeps run.
func (c *AppConfig) SweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepIntervalMinutes) * time.Minute
}

// CollaboratorTimeout bounds each external AI call.
func (c *AppConfig) CollaboratorTimeout() time.Duration {
	return time.Duration(c.Collaborator.TimeoutSeconds) * time.Second
}
