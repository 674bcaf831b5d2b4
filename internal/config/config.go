package config

import (
	"errors"
	"fmt"
	"os"

	"casamira/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Audit      AuditConfig      `yaml:"audit"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Notify     NotifyConfig     `yaml:"notify"`
	Exports    ExportConfig     `yaml:"exports"`
	Users      []models.User    `yaml:"users"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port           int                  `yaml:"port"`
	LoginRateLimit LoginRateLimitConfig `yaml:"login_rate_limit"`
}

type LoginRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DataConfig struct {
	Dir      string `yaml:"dir"`
	SeedPath string `yaml:"seed_path"`
}

type SessionsConfig struct {
	Redis      RedisConfig `yaml:"redis"`
	TTLSeconds int         `yaml:"ttl_seconds"`
	CookieName string      `yaml:"cookie_name"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	StaffChatID   int64  `yaml:"staff_chat_id"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; variables already in the environment still expand.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables inside the YAML before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return errors.New("data dir is required")
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		return errors.New("audit.path is required when audit is enabled")
	}

	return ValidateUsers(c.Users)
}

// ValidateUsers rejects seed accounts with duplicate ids or usernames and
// roles outside the two known ones.
func ValidateUsers(users []models.User) error {
	ids := make(map[int64]bool)
	names := make(map[string]bool)
	for _, u := range users {
		if u.ID == 0 {
			return fmt.Errorf("user '%s' has invalid ID 0", u.Username)
		}
		if ids[u.ID] {
			return fmt.Errorf("duplicate user ID found: %d", u.ID)
		}
		if u.Username == "" {
			return fmt.Errorf("user %d has empty username", u.ID)
		}
		if names[u.Username] {
			return fmt.Errorf("duplicate username found: %s", u.Username)
		}
		if u.Role != models.RoleAdmin && u.Role != models.RoleFrontOffice {
			return fmt.Errorf("user '%s' has unknown role '%s'", u.Username, u.Role)
		}
		ids[u.ID] = true
		names[u.Username] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LoginRateLimit.RPS == 0 {
		c.Server.LoginRateLimit.RPS = 1
	}
	if c.Server.LoginRateLimit.Burst == 0 {
		c.Server.LoginRateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Sessions.TTLSeconds == 0 {
		c.Sessions.TTLSeconds = models.DefaultSessionTTL
	}
	if c.Sessions.CookieName == "" {
		c.Sessions.CookieName = "casamira_session"
	}
	if c.Data.SeedPath == "" {
		c.Data.SeedPath = "configs/seed.yaml"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
