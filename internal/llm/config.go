package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskFeatureDraft TaskType = "feature_draft"
	TaskTaskDraft    TaskType = "task_draft"
	TaskSectionDraft TaskType = "section_draft"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem. The toml tags
// let the config file set the scalar fields; per-task settings come from
// defaults and environment only.
type LLMConfig struct {
	Enabled            bool     `toml:"enabled"`
	LogCalls           bool     `toml:"log_calls"`
	Provider           Provider `toml:"provider"`
	Endpoint           string   `toml:"endpoint"`
	Model              string   `toml:"model"`
	AnthropicAPIKey    string   `toml:"-"`
	AnthropicModel     string   `toml:"anthropic_model"`
	TimeoutMs          int      `toml:"timeout_ms"`
	MaxRetries         int      `toml:"max_retries"`
	MaxConcurrentCalls int      `toml:"max_concurrent_calls"`
	RequestsPerMinute  int      `toml:"requests_per_minute"`

	Tasks map[TaskType]TaskConfig `toml:"-"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:            false,
		LogCalls:           false,
		Provider:           ProviderOllama,
		Endpoint:           "http://localhost:11434",
		Model:              "llama3.2",
		AnthropicModel:     "claude-sonnet-4-5",
		TimeoutMs:          20000,
		MaxRetries:         1,
		MaxConcurrentCalls: 2,
		RequestsPerMinute:  30,
		Tasks: map[TaskType]TaskConfig{
			TaskFeatureDraft: {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 30000},
			TaskTaskDraft:    {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 30000},
			TaskSectionDraft: {Temperature: 0.5, MaxTokens: 1024, TimeoutMs: 20000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overrides cfg with any DRAFTBOARD_LLM_* variables that are set.
// Invalid numbers are ignored.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("DRAFTBOARD_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DRAFTBOARD_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DRAFTBOARD_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("DRAFTBOARD_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DRAFTBOARD_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DRAFTBOARD_LLM_ANTHROPIC_MODEL"); v != "" {
		cfg.AnthropicModel = v
	}
	if v := firstEnv("DRAFTBOARD_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if n, ok := positiveIntEnv("DRAFTBOARD_LLM_TIMEOUT_MS"); ok {
		cfg.TimeoutMs = n
	}
	if v := os.Getenv("DRAFTBOARD_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if n, ok := positiveIntEnv("DRAFTBOARD_LLM_MAX_CONCURRENT_CALLS"); ok {
		cfg.MaxConcurrentCalls = n
	}
	if n, ok := positiveIntEnv("DRAFTBOARD_LLM_REQUESTS_PER_MINUTE"); ok {
		cfg.RequestsPerMinute = n
	}

	applyTaskTimeoutEnv(cfg, TaskFeatureDraft, "DRAFTBOARD_LLM_FEATURE_DRAFT_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskTaskDraft, "DRAFTBOARD_LLM_TASK_DRAFT_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskSectionDraft, "DRAFTBOARD_LLM_SECTION_DRAFT_TIMEOUT_MS")
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// ModelName returns the model used by the configured provider.
func (c LLMConfig) ModelName() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicModel
	}
	return c.Model
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	n, ok := positiveIntEnv(envName)
	if !ok {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = make(map[TaskType]TaskConfig)
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}

func positiveIntEnv(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
