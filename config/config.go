package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Attendance   AttendanceConfig   `yaml:"attendance"`
	Notification NotificationConfig `yaml:"notification"`
	Mail         MailConfig         `yaml:"mail"`
	Push         PushConfig         `yaml:"push"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AttendanceConfig holds the scan state machine settings. The UTC offset
// pins the "calendar day" of the fleet's home timezone so day boundaries do
// not depend on where the service happens to be deployed.
type AttendanceConfig struct {
	UTCOffsetHours int `yaml:"utc_offset_hours"`
}

// NotificationConfig holds the emergency dispatch settings.
type NotificationConfig struct {
	CooldownMinutes int           `yaml:"cooldown_minutes"`
	Cooldown        time.Duration `yaml:"-"` // Derived from CooldownMinutes
}

// MailConfig holds the SMTP settings for the email push channel.
type MailConfig struct {
	Addr     string `yaml:"addr"` // host:port
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}

	if cfg.Attendance.UTCOffsetHours == 0 {
		// The fleet's home timezone (AST, UTC+3).
		cfg.Attendance.UTCOffsetHours = 3
	}

	if cfg.Notification.CooldownMinutes <= 0 {
		log.Printf("notification.cooldown_minutes is not set or invalid; defaulting to 10")
		cfg.Notification.CooldownMinutes = 10
	}
	cfg.Notification.Cooldown = time.Duration(cfg.Notification.CooldownMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	return &cfg, nil
}
