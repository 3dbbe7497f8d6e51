package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "COMPANY_TRACKER_CONFIG"
	databasePathEnv = "DATABASE_PATH"
	newsAPIKeyEnv   = "NEWSAPI_KEY"
	openAIKeyEnv    = "OPENAI_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	NewsAPI   NewsAPIConfig   `yaml:"newsapi"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Export    ExportConfig    `yaml:"export"`
	Server    ServerConfig    `yaml:"server"`
	Feeds     []FeedConfig    `yaml:"feeds"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NewsAPIConfig wires the article search provider.
type NewsAPIConfig struct {
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseUrl"`
	Language string `yaml:"language"`
}

// OpenAIConfig defines how to contact the sentiment classification API.
type OpenAIConfig struct {
	APIKey          string `yaml:"apiKey"`
	Endpoint        string `yaml:"endpoint"`
	Model           string `yaml:"model"`
	MaxContentChars int    `yaml:"maxContentChars"`
}

// ExtractorConfig tunes the article content fetcher.
type ExtractorConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MinDelayMillis int    `yaml:"minDelayMillis"`
	MaxDelayMillis int    `yaml:"maxDelayMillis"`
	UserAgent      string `yaml:"userAgent"`
}

// PipelineConfig bounds a single ingestion run.
type PipelineConfig struct {
	LookbackDays  int    `yaml:"lookbackDays"`
	ArticleLimit  int    `yaml:"articleLimit"`
	ClassifyChars int    `yaml:"classifyChars"`
	ReportPath    string `yaml:"reportPath"`
}

// ExportConfig locates the static JSON output directory.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig binds the read-only dashboard API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FeedConfig describes one optional RSS feed scanned for mentions.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFile reads the given YAML file over defaults plus env overrides.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if raw, err := os.ReadFile(path); err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
	} else {
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.NewsAPI.APIKey = v
	}

	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.NewsAPI.APIKey != "" {
		base.NewsAPI.APIKey = override.NewsAPI.APIKey
	}
	if override.NewsAPI.BaseURL != "" {
		base.NewsAPI.BaseURL = override.NewsAPI.BaseURL
	}
	if override.NewsAPI.Language != "" {
		base.NewsAPI.Language = override.NewsAPI.Language
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.MaxContentChars > 0 {
		base.OpenAI.MaxContentChars = override.OpenAI.MaxContentChars
	}

	if override.Extractor.TimeoutSeconds > 0 {
		base.Extractor.TimeoutSeconds = override.Extractor.TimeoutSeconds
	}
	if override.Extractor.MinDelayMillis > 0 {
		base.Extractor.MinDelayMillis = override.Extractor.MinDelayMillis
	}
	if override.Extractor.MaxDelayMillis > 0 {
		base.Extractor.MaxDelayMillis = override.Extractor.MaxDelayMillis
	}
	if override.Extractor.UserAgent != "" {
		base.Extractor.UserAgent = override.Extractor.UserAgent
	}

	if override.Pipeline.LookbackDays > 0 {
		base.Pipeline.LookbackDays = override.Pipeline.LookbackDays
	}
	if override.Pipeline.ArticleLimit > 0 {
		base.Pipeline.ArticleLimit = override.Pipeline.ArticleLimit
	}
	if override.Pipeline.ClassifyChars > 0 {
		base.Pipeline.ClassifyChars = override.Pipeline.ClassifyChars
	}
	if override.Pipeline.ReportPath != "" {
		base.Pipeline.ReportPath = override.Pipeline.ReportPath
	}

	if override.Export.Dir != "" {
		base.Export = override.Export
	}

	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "company_tracker.db"},
		Logging:  LoggingConfig{Level: "info"},
		NewsAPI: NewsAPIConfig{
			BaseURL:  "https://newsapi.org/v2/everything",
			Language: "en",
		},
		OpenAI: OpenAIConfig{
			Endpoint:        "https://api.openai.com/v1/chat/completions",
			Model:           "gpt-4o-mini",
			MaxContentChars: 3000,
		},
		Extractor: ExtractorConfig{
			TimeoutSeconds: 10,
			MinDelayMillis: 500,
			MaxDelayMillis: 1500,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Pipeline: PipelineConfig{
			LookbackDays:  7,
			ArticleLimit:  10,
			ClassifyChars: 1000,
			ReportPath:    "pipeline_run_report.json",
		},
		Export: ExportConfig{Dir: "assets/data"},
		Server: ServerConfig{Addr: ":8080"},
	}
}
