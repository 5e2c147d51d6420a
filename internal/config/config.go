package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Log           LogConfig           `mapstructure:"log"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Pushover      PushoverConfig      `mapstructure:"pushover"`
	Shoutrrr      ShoutrrrConfig      `mapstructure:"shoutrrr"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

type StorageConfig struct {
	FilePath string `mapstructure:"file_path"`
	AppGroup string `mapstructure:"app_group"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

type NotificationsConfig struct {
	// Authorization is the answer given to the permission prompt:
	// authorized, provisional, ephemeral or denied.
	Authorization string        `mapstructure:"authorization"`
	MaxPending    int           `mapstructure:"max_pending"`
	DeliveredTTL  time.Duration `mapstructure:"delivered_ttl"`
	SendTimeout   time.Duration `mapstructure:"send_timeout"`
	Feedback      time.Duration `mapstructure:"feedback"`
}

type PushoverConfig struct {
	Token string `mapstructure:"token"`
	User  string `mapstructure:"user"`
}

type ShoutrrrConfig struct {
	URLs    []string      `mapstructure:"urls"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("storage.file_path", "data/state.json")
	v.SetDefault("storage.app_group", "group.timer-reminder")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("notifications.authorization", "authorized")
	v.SetDefault("notifications.max_pending", 64)
	v.SetDefault("notifications.delivered_ttl", "24h")
	v.SetDefault("notifications.send_timeout", "10s")
	v.SetDefault("notifications.feedback", "2s")
	v.SetDefault("pushover.token", "")
	v.SetDefault("pushover.user", "")
	v.SetDefault("shoutrrr.urls", []string{})
	v.SetDefault("shoutrrr.timeout", "10s")
}

// LoadConfig reads path if it exists and applies REMINDER_* environment
// overrides, e.g. REMINDER_PUSHOVER_TOKEN.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REMINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.FilePath == "" {
		return errors.New("storage.file_path is required")
	}
	if _, err := c.AuthorizationDecision(); err != nil {
		return err
	}
	if (c.Pushover.Token == "") != (c.Pushover.User == "") {
		return errors.New("pushover.token and pushover.user must be set together")
	}
	return nil
}

// AuthorizationDecision parses notifications.authorization.
func (c *Config) AuthorizationDecision() (model.AuthorizationStatus, error) {
	status, err := model.ParseAuthorizationStatus(c.Notifications.Authorization)
	if err != nil {
		return model.StatusDenied, fmt.Errorf("notifications.authorization: %w", err)
	}
	if status == model.StatusNotDetermined {
		return model.StatusDenied, errors.New("notifications.authorization cannot be notDetermined")
	}
	return status, nil
}
