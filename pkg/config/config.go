package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Breakers   BreakersConfig   `mapstructure:"breakers"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	SecretKey   string `mapstructure:"secret_key"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ModerationConfig is the whole policy surface. Thresholds and toggles are
// loaded once here and never mutated at runtime.
type ModerationConfig struct {
	Thresholds    moderation.Thresholds    `mapstructure:"thresholds"`
	CompoundRules moderation.CompoundRules `mapstructure:"compound_rules"`
	Bonuses       moderation.Bonuses       `mapstructure:"bonuses"`
	Timeouts      TimeoutsConfig           `mapstructure:"timeouts"`
}

type TimeoutsConfig struct {
	ImageMs         int `mapstructure:"image_ms"`
	VideoPerFrameMs int `mapstructure:"video_per_frame_ms"`
}

type ClassifierConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	OutputType string `mapstructure:"output_type"`
}

type BreakersConfig struct {
	Classifier BreakerConfig `mapstructure:"classifier"`
	Storage    BreakerConfig `mapstructure:"storage"`
}

type BreakerConfig struct {
	TimeoutMs                int     `mapstructure:"timeout_ms"`
	ErrorThresholdPercentage float64 `mapstructure:"error_threshold_percentage"`
	MinRequests              uint32  `mapstructure:"min_requests"`
	ResetTimeoutMs           int     `mapstructure:"reset_timeout_ms"`
	IntervalMs               int     `mapstructure:"interval_ms"`
}

func (b BreakerConfig) Timeout() time.Duration      { return time.Duration(b.TimeoutMs) * time.Millisecond }
func (b BreakerConfig) ResetTimeout() time.Duration { return time.Duration(b.ResetTimeoutMs) * time.Millisecond }
func (b BreakerConfig) Interval() time.Duration     { return time.Duration(b.IntervalMs) * time.Millisecond }

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StorageConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues()

	return globalConfig.Validate()
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(out, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Moderation.Bonuses.Violence == 0 {
		globalConfig.Moderation.Bonuses.Violence = moderation.DefaultSeverityBonus
	}
	if globalConfig.Moderation.Bonuses.Weapon == 0 {
		globalConfig.Moderation.Bonuses.Weapon = moderation.DefaultSeverityBonus
	}
	if globalConfig.Moderation.Timeouts.ImageMs == 0 {
		globalConfig.Moderation.Timeouts.ImageMs = 5000
	}
	if globalConfig.Moderation.Timeouts.VideoPerFrameMs == 0 {
		globalConfig.Moderation.Timeouts.VideoPerFrameMs = 10000
	}
}

// Validate enforces the startup contract: every decision-relevant value must
// be present. A missing threshold or breaker block is a fatal configuration
// error, never a silent runtime fallback.
func (c *Config) Validate() error {
	t := c.Moderation.Thresholds
	for name, value := range map[string]float64{
		"moderation.thresholds.child":     t.Child,
		"moderation.thresholds.violence":  t.Violence,
		"moderation.thresholds.weapons":   t.Weapons,
		"moderation.thresholds.hate":      t.Hate,
		"moderation.thresholds.self_harm": t.SelfHarm,
		"moderation.thresholds.sexual":    t.Sexual,
	} {
		if value < 1 {
			return fmt.Errorf("%s must be set and >= 1", name)
		}
	}

	if c.Classifier.Endpoint == "" {
		return errors.New("classifier.endpoint must be set")
	}
	if c.Classifier.APIKey == "" {
		return errors.New("classifier.api_key must be set")
	}

	for name, b := range map[string]BreakerConfig{
		"breakers.classifier": c.Breakers.Classifier,
		"breakers.storage":    c.Breakers.Storage,
	} {
		if b.TimeoutMs <= 0 {
			return fmt.Errorf("%s.timeout_ms must be set", name)
		}
		if b.ErrorThresholdPercentage <= 0 || b.ErrorThresholdPercentage > 100 {
			return fmt.Errorf("%s.error_threshold_percentage must be in (0, 100]", name)
		}
		if b.ResetTimeoutMs <= 0 {
			return fmt.Errorf("%s.reset_timeout_ms must be set", name)
		}
	}

	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
