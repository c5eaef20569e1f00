package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
	Email    EmailConfig    `yaml:"email"`
	Throttle ThrottleConfig `yaml:"throttle"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	AccessTokenSecret  string        `yaml:"access_token_secret"`
	RefreshTokenSecret string        `yaml:"refresh_token_secret"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `yaml:"refresh_token_ttl"`
	CodeTTL            time.Duration `yaml:"code_ttl"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
}

// AdminConfig holds the operator Basic-auth pair guarding administrative
// endpoints.
type AdminConfig struct {
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
}

type EmailConfig struct {
	SMTP SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type ThrottleConfig struct {
	Window  time.Duration `yaml:"window"`
	Ceiling int           `yaml:"ceiling"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BLOGHUB_ACCESS_TOKEN_SECRET"); v != "" {
		c.Auth.AccessTokenSecret = v
	}
	if v := os.Getenv("BLOGHUB_REFRESH_TOKEN_SECRET"); v != "" {
		c.Auth.RefreshTokenSecret = v
	}
	if v := os.Getenv("BLOGHUB_ADMIN_LOGIN"); v != "" {
		c.Admin.Login = v
	}
	if v := os.Getenv("BLOGHUB_ADMIN_PASSWORD"); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv("BLOGHUB_SMTP_PASSWORD"); v != "" {
		c.Email.SMTP.Password = v
	}
}

func (c *Config) validate() error {
	if c.Auth.AccessTokenSecret == "" {
		return fmt.Errorf("auth.access_token_secret is required")
	}
	if len(c.Auth.AccessTokenSecret) < 32 {
		return fmt.Errorf("auth.access_token_secret must be at least 32 characters")
	}
	if c.Auth.RefreshTokenSecret == "" {
		return fmt.Errorf("auth.refresh_token_secret is required")
	}
	if len(c.Auth.RefreshTokenSecret) < 32 {
		return fmt.Errorf("auth.refresh_token_secret must be at least 32 characters")
	}
	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}
	if c.Admin.Login == "" || c.Admin.Password == "" {
		return fmt.Errorf("admin.login and admin.password are required")
	}
	if c.Email.SMTP.Host == "" {
		return fmt.Errorf("email.smtp.host is required")
	}
	if c.Email.SMTP.Port == 0 {
		return fmt.Errorf("email.smtp.port is required")
	}
	if c.Email.SMTP.From == "" {
		return fmt.Errorf("email.smtp.from is required")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/bloghub.db"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 240 * time.Hour
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 480 * time.Hour
	}
	if c.Auth.CodeTTL == 0 {
		c.Auth.CodeTTL = 90 * time.Minute
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Throttle.Window == 0 {
		c.Throttle.Window = 10 * time.Second
	}
	if c.Throttle.Ceiling == 0 {
		c.Throttle.Ceiling = 5
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
