package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Users    []User         `yaml:"users"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Store    StoreConfig    `yaml:"store"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
	CookieName       string `yaml:"cookie_name"`
	CookieExpireDays int    `yaml:"cookie_expire_days"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// AnalysisConfig selects the prompt template and classification
// strategy for the single configurable pipeline, and points at the
// hosted inference endpoint.
type AnalysisConfig struct {
	APIURL         string `yaml:"api_url"`
	APIKey         string `yaml:"api_key"` // falls back to env GEMINI_API_KEY
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Template       string `yaml:"template"` // summary, structured
	Strategy       string `yaml:"strategy"` // keyword, structured
	ValidateSchema bool   `yaml:"validate_schema"`
}

// Prompt template kinds
const (
	TemplateSummary    = "summary"
	TemplateStructured = "structured"
)

// Timeout returns the request timeout for the analysis service.
func (c *AnalysisConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Classification strategy kinds
const (
	StrategyKeyword    = "keyword"
	StrategyStructured = "structured"
)

type StoreConfig struct {
	Backend   string `yaml:"backend"` // memory, sheet
	SheetPath string `yaml:"sheet_path"`
}

// Store backend kinds
const (
	StoreMemory = "memory"
	StoreSheet  = "sheet"
)

type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AlertsConfig struct {
	CronSpec string `yaml:"cron_spec"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "rightsdesk_session"
	}
	if cfg.Auth.CookieExpireDays == 0 {
		cfg.Auth.CookieExpireDays = 30
	}
	if cfg.Analysis.APIURL == "" {
		cfg.Analysis.APIURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Analysis.APIKey == "" {
		cfg.Analysis.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gemini-pro"
	}
	if cfg.Analysis.TimeoutSeconds == 0 {
		cfg.Analysis.TimeoutSeconds = 60
	}
	if cfg.Analysis.Template == "" {
		cfg.Analysis.Template = TemplateSummary
	}
	if cfg.Analysis.Strategy == "" {
		cfg.Analysis.Strategy = StrategyKeyword
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreMemory
	}
	if cfg.Store.SheetPath == "" {
		cfg.Store.SheetPath = "contract_log.xlsx"
	}
	if cfg.Alerts.CronSpec == "" {
		cfg.Alerts.CronSpec = "0 2 * * *"
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
