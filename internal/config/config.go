package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type DatabaseConfig struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`

	// PostgreSQL specific
	SSLMode string `mapstructure:"ssl_mode"`
}

// Addr returns host:port for error reporting and DSN construction.
func (d *DatabaseConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

type BackupConfig struct {
	BaseDir  string `mapstructure:"base_dir"`
	Compress bool   `mapstructure:"compress"`
}

// ScheduleConfig holds the single trigger definition. Either weekday+at or a
// raw cron expression, never both.
type ScheduleConfig struct {
	Weekday      string        `mapstructure:"weekday"`
	At           string        `mapstructure:"at"`
	Cron         string        `mapstructure:"cron"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type NotifyConfig struct {
	Email    EmailConfig    `mapstructure:"email"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type MetricsConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	ListenPort int  `mapstructure:"listen_port"`
}

var validWeekdays = map[string]struct{}{
	"sunday": {}, "monday": {}, "tuesday": {}, "wednesday": {},
	"thursday": {}, "friday": {}, "saturday": {},
}

var supportedDatabaseTypes = map[string]struct{}{
	"sqlserver": {}, "mysql": {}, "postgresql": {},
}

var defaultPorts = map[string]int{
	"sqlserver":  1433,
	"mysql":      3306,
	"postgresql": 5432,
}

// Load reads configuration from the given YAML file. Every field can be
// overridden through the environment (CUSTOS_DATABASE_PASSWORD and friends),
// so credentials never need to live in the file itself.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "custos")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("schedule.weekday", "friday")
	v.SetDefault("schedule.at", "08:00")
	v.SetDefault("schedule.poll_interval", time.Minute)
	v.SetDefault("notify.email.smtp_port", 587)
	v.SetDefault("metrics.listen_port", 9090)

	v.SetEnvPrefix("custos")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credential keys are bound explicitly so the environment can supply
	// them even when the config file omits them entirely.
	for _, key := range []string{
		"database.username", "database.password",
		"notify.email.username", "notify.email.password",
		"notify.telegram.bot_token",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	db := &c.Database
	if db.Type == "" {
		return fmt.Errorf("database.type is required")
	}
	if _, ok := supportedDatabaseTypes[db.Type]; !ok {
		return fmt.Errorf("database.type %q is not supported", db.Type)
	}
	if db.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if db.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if db.Name == "" {
		db.Name = db.Database
	}
	if db.Port == 0 {
		db.Port = defaultPorts[db.Type]
	}

	if c.Backup.BaseDir == "" {
		return fmt.Errorf("backup.base_dir is required")
	}

	if err := c.Schedule.validate(); err != nil {
		return err
	}

	if c.Notify.Email.Enabled {
		e := c.Notify.Email
		if e.SMTPHost == "" || e.From == "" || e.To == "" {
			return fmt.Errorf("notify.email requires smtp_host, from and to when enabled")
		}
	}
	if c.Notify.Telegram.Enabled {
		t := c.Notify.Telegram
		if t.BotToken == "" || t.ChatID == "" {
			return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
		}
	}

	return nil
}

func (s *ScheduleConfig) validate() error {
	if s.PollInterval <= 0 {
		return fmt.Errorf("schedule.poll_interval must be positive")
	}

	// A cron expression takes precedence over the weekly form; its syntax is
	// validated by the scheduler when the trigger is built.
	if s.Cron != "" {
		return nil
	}

	if _, ok := validWeekdays[strings.ToLower(s.Weekday)]; !ok {
		return fmt.Errorf("schedule.weekday %q is not a valid weekday", s.Weekday)
	}
	if _, err := time.Parse("15:04", s.At); err != nil {
		return fmt.Errorf("schedule.at %q must be HH:MM: %w", s.At, err)
	}
	return nil
}
