// Package config loads tasksync settings from flags, environment, .env files
// and an optional YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/llm"
	"github.com/alexanderramin/tasksync/internal/logging"
	"github.com/alexanderramin/tasksync/internal/retry"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKSYNC"

// DefaultGeminiModel is used when the gemini provider is selected without a model.
const DefaultGeminiModel = "gemini-2.0-flash"

// Store backends.
const (
	StoreNotion = "notion"
	StoreLocal  = "local"
)

// Routing sources.
const (
	RoutingNotion = "notion"
	RoutingFile   = "file"
)

// Config is the resolved application configuration.
type Config struct {
	ConfigFile string

	DBPath  string
	CSVPath string

	// Store selects where records are reconciled: notion or local.
	Store string

	Routing RoutingConfig
	Notion  NotionConfig
	LLM     llm.LLMConfig
	Retry   RetryConfig
	Log     LogConfig
}

type RoutingConfig struct {
	Source   string
	File     string
	CacheTTL time.Duration
}

type NotionConfig struct {
	APIKey           string
	ConfigDatabaseID string
	BaseURL          string
}

type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
}

type LogConfig struct {
	Level   string
	Format  string
	NoColor bool
}

// Policy converts the retry settings into a retry.Policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  r.Attempts,
		InitialDelay: r.InitialDelay,
		Multiplier:   r.Multiplier,
	}
}

// Logging converts the log settings into a logging.Config.
func (l LogConfig) Logging() logging.Config {
	return logging.Config{Level: l.Level, Format: l.Format, NoColor: l.NoColor}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile overrides the ~/.tasksync.yaml search.
	ConfigFile string

	// EnvFiles are loaded before reading the environment. Nil loads
	// .env and .env.local from the working directory.
	EnvFiles []string
}

// Load resolves configuration in order of precedence:
// 1. Environment variables (TASKSYNC_*, plus NOTION_API_KEY, GEMINI_API_KEY, LOG_LEVEL)
// 2. .env files
// 3. Config file (~/.tasksync.yaml or ./.tasksync.yaml)
// 4. Defaults
func Load(opts LoadOptions) (*Config, error) {
	loadEnvFiles(opts.EnvFiles)

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := bindEnvAliases(v); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &domain.ConfigError{Field: "config", Message: fmt.Sprintf("reading %s: %v", opts.ConfigFile, err)}
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tasksync")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, &domain.ConfigError{Field: "config", Message: err.Error()}
			}
		}
	}

	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = llm.Provider(strings.ToLower(v.GetString("llm.provider")))
	llmCfg.Endpoint = v.GetString("llm.endpoint")
	llmCfg.Model = v.GetString("llm.model")
	llmCfg.APIKey = v.GetString("llm.api_key")
	llmCfg.TimeoutMs = v.GetInt("llm.timeout_ms")
	llmCfg.MaxRetries = v.GetInt("llm.max_retries")
	llmCfg.RetryDelay = v.GetDuration("llm.retry_delay")
	llmCfg.LogCalls = v.GetBool("llm.log_calls")
	llmCfg = llmCfg.WithTaskTimeout(llm.TaskClassify, v.GetInt("llm.classify_timeout_ms"))
	applyProviderDefaults(&llmCfg)

	cfg := &Config{
		ConfigFile: v.ConfigFileUsed(),
		DBPath:     expandHome(v.GetString("db_path")),
		CSVPath:    expandHome(v.GetString("csv_path")),
		Store:      strings.ToLower(v.GetString("store")),
		Routing: RoutingConfig{
			Source:   strings.ToLower(v.GetString("routing.source")),
			File:     expandHome(v.GetString("routing.file")),
			CacheTTL: v.GetDuration("routing.cache_ttl"),
		},
		Notion: NotionConfig{
			APIKey:           v.GetString("notion.api_key"),
			ConfigDatabaseID: v.GetString("notion.config_database_id"),
			BaseURL:          v.GetString("notion.base_url"),
		},
		LLM: llmCfg,
		Retry: RetryConfig{
			Attempts:     v.GetInt("retry.attempts"),
			InitialDelay: v.GetDuration("retry.initial_delay"),
			Multiplier:   v.GetFloat64("retry.multiplier"),
		},
		Log: LogConfig{
			Level:   v.GetString("log.level"),
			Format:  v.GetString("log.format"),
			NoColor: v.GetBool("no_color"),
		},
	}
	return cfg, nil
}

// applyProviderDefaults fills endpoint and model when the provider's own
// defaults apply.
func applyProviderDefaults(c *llm.LLMConfig) {
	def := llm.DefaultConfig()
	switch c.Provider {
	case llm.ProviderGemini:
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	default:
		if c.Endpoint == "" {
			c.Endpoint = def.Endpoint
		}
		if c.Model == "" {
			c.Model = def.Model
		}
	}
}

func setDefaults(v *viper.Viper) {
	def := llm.DefaultConfig()

	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("csv_path", "")
	v.SetDefault("store", StoreNotion)
	v.SetDefault("routing.source", RoutingNotion)
	v.SetDefault("routing.file", "")
	v.SetDefault("routing.cache_ttl", 6*time.Hour)
	v.SetDefault("notion.base_url", "https://api.notion.com")
	v.SetDefault("llm.provider", string(def.Provider))
	v.SetDefault("llm.timeout_ms", def.TimeoutMs)
	v.SetDefault("llm.classify_timeout_ms", def.TaskTimeout(llm.TaskClassify))
	v.SetDefault("llm.max_retries", def.MaxRetries)
	v.SetDefault("llm.retry_delay", def.RetryDelay)
	v.SetDefault("llm.log_calls", false)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.initial_delay", time.Second)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("no_color", false)
}

// bindEnvAliases maps conventional variable names onto config keys.
func bindEnvAliases(v *viper.Viper) error {
	aliases := map[string][]string{
		"notion.api_key":            {EnvPrefix + "_NOTION_API_KEY", "NOTION_API_KEY"},
		"notion.config_database_id": {EnvPrefix + "_NOTION_CONFIG_DATABASE_ID", "NOTION_CONFIG_DATABASE_ID"},
		"llm.api_key":               {EnvPrefix + "_LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"log.level":                 {EnvPrefix + "_LOG_LEVEL", "LOG_LEVEL"},
		"log.format":                {EnvPrefix + "_LOG_FORMAT", "LOG_FORMAT"},
		"no_color":                  {EnvPrefix + "_NO_COLOR", "NO_COLOR"},
	}
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

func loadEnvFiles(files []string) {
	if files == nil {
		// .env.local is loaded first so it wins; godotenv never overrides.
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tasksync.db"
	}
	return filepath.Join(home, ".tasksync", "tasksync.db")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Validate checks the settings a sync run depends on. It reports the first
// problem as a *domain.ConfigError.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreNotion, StoreLocal:
	default:
		return &domain.ConfigError{Field: "store", Message: fmt.Sprintf("unknown store %q (want notion or local)", c.Store)}
	}

	switch c.Routing.Source {
	case RoutingNotion:
		if c.Notion.ConfigDatabaseID == "" {
			return &domain.ConfigError{Field: "notion.config_database_id", Message: "required when routing.source is notion"}
		}
	case RoutingFile:
		if c.Routing.File == "" {
			return &domain.ConfigError{Field: "routing.file", Message: "required when routing.source is file"}
		}
	default:
		return &domain.ConfigError{Field: "routing.source", Message: fmt.Sprintf("unknown routing source %q (want notion or file)", c.Routing.Source)}
	}

	if c.NeedsNotion() && c.Notion.APIKey == "" {
		return &domain.ConfigError{Field: "notion.api_key", Message: "notion api key is required"}
	}

	switch c.LLM.Provider {
	case llm.ProviderOllama:
	case llm.ProviderGemini:
		if c.LLM.APIKey == "" {
			return &domain.ConfigError{Field: "llm.api_key", Message: "required for the gemini provider"}
		}
	default:
		return &domain.ConfigError{Field: "llm.provider", Message: fmt.Sprintf("unknown provider %q", c.LLM.Provider)}
	}

	if c.Retry.Attempts < 1 {
		return &domain.ConfigError{Field: "retry.attempts", Message: "must be at least 1"}
	}
	if c.Retry.Multiplier < 1 {
		return &domain.ConfigError{Field: "retry.multiplier", Message: "must be at least 1"}
	}
	return nil
}

// NeedsNotion reports whether any configured component talks to Notion.
func (c *Config) NeedsNotion() bool {
	return c.Store == StoreNotion || c.Routing.Source == RoutingNotion
}
