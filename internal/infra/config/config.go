package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	History  HistoryConfig  `mapstructure:"history"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	App      AppConfig      `mapstructure:"app"`
}

// HistoryConfig - balance history endpoint
type HistoryConfig struct {
	URL             string  `mapstructure:"url"`
	RequestTimeout  int     `mapstructure:"request_timeout"` // seconds
	MaxRetries      int     `mapstructure:"max_retries"`
	MaxResponseSize int64   `mapstructure:"max_response_size"`
	RateLimit       float64 `mapstructure:"rate_limit"` // requests per second
}

type ChartConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	FontPath  string `mapstructure:"font_path"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	SendTime string `mapstructure:"send_time"` // "HH:MM", local time
}

type AppConfig struct {
	DataDir string `mapstructure:"data_dir"`
	LogsDir string `mapstructure:"logs_dir"`
}

// Timeout returns the per-request timeout as a duration.
func (h HistoryConfig) Timeout() time.Duration {
	return time.Duration(h.RequestTimeout) * time.Second
}

// LoadConfig merges, lowest priority first:
// 1. defaults
// 2. config.yaml in the working directory
// 3. .env file
// 4. environment
// 5. flags that were set on the command line
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnv(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("history.url", "")
	v.SetDefault("history.request_timeout", 10)
	v.SetDefault("history.max_retries", 2)
	v.SetDefault("history.max_response_size", 10*1024*1024) // 10MB
	v.SetDefault("history.rate_limit", 5.0)

	v.SetDefault("chart.output_dir", "etc/charts")
	v.SetDefault("chart.width", 1600)
	v.SetDefault("chart.height", 900)
	v.SetDefault("chart.font_path", "")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.send_time", "10:00")

	v.SetDefault("app.data_dir", "data_out")
	v.SetDefault("app.logs_dir", "logs")
}

func bindEnv(v *viper.Viper) {
	// History
	v.BindEnv("history.url", "ACCOUNT_CHART_HISTORY_URL", "HISTORY_URL")
	v.BindEnv("history.request_timeout", "ACCOUNT_CHART_REQUEST_TIMEOUT")
	v.BindEnv("history.max_retries", "ACCOUNT_CHART_MAX_RETRIES")
	v.BindEnv("history.max_response_size", "ACCOUNT_CHART_MAX_RESPONSE_SIZE")
	v.BindEnv("history.rate_limit", "ACCOUNT_CHART_RATE_LIMIT")

	// Chart
	v.BindEnv("chart.output_dir", "ACCOUNT_CHART_OUTPUT_DIR")
	v.BindEnv("chart.width", "ACCOUNT_CHART_WIDTH")
	v.BindEnv("chart.height", "ACCOUNT_CHART_HEIGHT")
	v.BindEnv("chart.font_path", "ACCOUNT_CHART_FONT_PATH")

	// Telegram
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	v.BindEnv("telegram.send_time", "TELEGRAM_SEND_TIME")

	// App
	v.BindEnv("app.data_dir", "ACCOUNT_CHART_DATA_DIR")
	v.BindEnv("app.logs_dir", "ACCOUNT_CHART_LOGS_DIR")
}

// flagKeys maps command line flag names onto config keys.
var flagKeys = map[string]string{
	"url":       "history.url",
	"retries":   "history.max_retries",
	"timeout":   "history.request_timeout",
	"out":       "chart.output_dir",
	"width":     "chart.width",
	"height":    "chart.height",
	"font":      "chart.font_path",
	"data-dir":  "app.data_dir",
	"logs-dir":  "app.logs_dir",
	"chat-id":   "telegram.chat_id",
	"send-time": "telegram.send_time",
}

// bindFlags binds only flags the user actually set, so flag defaults never
// shadow values from config.yaml or the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

// ValidateHistory checks the settings needed to fetch the balance history.
func (c *Config) ValidateHistory() error {
	if c.History.URL == "" {
		return fmt.Errorf("history url is required: set history.url, HISTORY_URL or --url")
	}
	u, err := url.Parse(c.History.URL)
	if err != nil {
		return fmt.Errorf("invalid history url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("history url must be http or https, got %q", u.Scheme)
	}
	if c.History.RequestTimeout <= 0 {
		return fmt.Errorf("history.request_timeout must be positive")
	}
	return nil
}

// ValidateTelegram checks the settings needed by the bot command.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (env: TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required (env: TELEGRAM_CHAT_ID)")
	}
	if _, _, err := ParseSendTime(c.Telegram.SendTime); err != nil {
		return err
	}
	return nil
}

// ParseSendTime parses "HH:MM".
func ParseSendTime(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid send time %q: expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid send time %q: hour must be 0-23", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid send time %q: minute must be 0-59", s)
	}
	return hour, minute, nil
}
