package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Timezone string `yaml:"timezone"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Name     string `yaml:"name"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Transit struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"transit"`

	Geocode struct {
		BaseURL string `yaml:"base_url"`
		Contact string `yaml:"contact"`
	} `yaml:"geocode"`

	Mail struct {
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		SenderEmail string  `yaml:"sender_email"`
		SenderName  string  `yaml:"sender_name"`
		RatePerSec  float64 `yaml:"rate_per_sec"`
		Burst       int     `yaml:"burst"`
	} `yaml:"mail"`

	Notify struct {
		CampusLocation        string `yaml:"campus_location"`
		DailyHour             int    `yaml:"daily_hour"`
		DailyMinute           int    `yaml:"daily_minute"`
		ReturnIntervalMinutes int    `yaml:"return_interval_minutes"`
	} `yaml:"notify"`

	Monitoring struct {
		OpsPort           int  `yaml:"ops_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Berlin"
	}
	if cfg.Transit.BaseURL == "" {
		cfg.Transit.BaseURL = "https://v6.bvg.transport.rest"
	}
	if cfg.Geocode.BaseURL == "" {
		cfg.Geocode.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Mail.BaseURL == "" {
		cfg.Mail.BaseURL = "https://api.brevo.com"
	}
	if cfg.Mail.SenderName == "" {
		cfg.Mail.SenderName = "CampusPulse"
	}
	if cfg.Notify.CampusLocation == "" {
		cfg.Notify.CampusLocation = "Campus Jungfernsee"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	return &cfg, nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.Name, c.Database.SSLMode)
}

func (c *Config) DailyHour() int {
	if c.Notify.DailyHour < 0 || c.Notify.DailyHour > 23 {
		return 7
	}
	if c.Notify.DailyHour == 0 && c.Notify.DailyMinute == 0 {
		return 7
	}
	return c.Notify.DailyHour
}

func (c *Config) DailyMinute() int {
	if c.Notify.DailyMinute < 0 || c.Notify.DailyMinute > 59 {
		return 0
	}
	return c.Notify.DailyMinute
}

func (c *Config) ReturnInterval() time.Duration {
	if c.Notify.ReturnIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Notify.ReturnIntervalMinutes) * time.Minute
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) MailRate() float64 {
	if c.Mail.RatePerSec <= 0 {
		return 5.0
	}
	return c.Mail.RatePerSec
}

func (c *Config) MailBurst() int {
	if c.Mail.Burst <= 0 {
		return 10
	}
	return c.Mail.Burst
}

func (c *Config) OpsPort() int {
	if c.Monitoring.OpsPort == 0 {
		return 8090
	}
	return c.Monitoring.OpsPort
}

func (c *Config) PrometheusPort() int {
	if c.Monitoring.PrometheusPort == 0 {
		return 9090
	}
	return c.Monitoring.PrometheusPort
}
