// Package config loads application settings from the environment, with an
// optional insights.yaml alongside the binary.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI   = "openai"
	ProviderGrok     = "grok"
	ProviderGemini   = "gemini"
	ProviderKimi     = "kimi"
	ProviderMoonshot = "moonshot"
)

// Providers in auto-detection order.
var Providers = []string{ProviderOpenAI, ProviderGrok, ProviderGemini, ProviderKimi, ProviderMoonshot}

type Config struct {
	Port  string `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`

	Inference InferenceConfig `mapstructure:"inference"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Grok      ProviderConfig  `mapstructure:"grok"`
	Gemini    ProviderConfig  `mapstructure:"gemini"`
	Kimi      ProviderConfig  `mapstructure:"kimi"`
	Moonshot  ProviderConfig  `mapstructure:"moonshot"`

	Product  ProductConfig  `mapstructure:"product"`
	Progress ProgressConfig `mapstructure:"progress"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Cache    CacheConfig    `mapstructure:"cache"`
	History  FileConfig     `mapstructure:"history"`
	Failures FileConfig     `mapstructure:"failures"`
}

type InferenceConfig struct {
	// Provider is one of Providers; empty picks the first with an API key.
	Provider          string `mapstructure:"provider"`
	StructuredOutputs bool   `mapstructure:"structured_outputs"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type ProductConfig struct {
	Image string `mapstructure:"image"`
	// ImageFromAnalysis shows the image URL the model names instead of Image.
	ImageFromAnalysis bool `mapstructure:"image_from_analysis"`
}

type ProgressConfig struct {
	Steps int           `mapstructure:"steps"`
	Delay time.Duration `mapstructure:"delay"`
}

type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	Size    int `mapstructure:"size"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type FileConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from the environment. Keys map to variables by
// upper-casing and replacing dots, so queue.workers is QUEUE_WORKERS.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("insights")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Inference.Provider = strings.ToLower(strings.TrimSpace(config.Inference.Provider))
	if config.Inference.Provider == "" {
		config.Inference.Provider = config.detectProvider()
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults registers every key, which AutomaticEnv needs for Unmarshal to see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("debug", false)

	v.SetDefault("inference.provider", "")
	v.SetDefault("inference.structured_outputs", true)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	for _, p := range []string{ProviderGrok, ProviderGemini, ProviderKimi, ProviderMoonshot} {
		v.SetDefault(p+".api_key", "")
		v.SetDefault(p+".model", "")
	}

	v.SetDefault("product.image", "image.jpg")
	v.SetDefault("product.image_from_analysis", false)
	v.SetDefault("progress.steps", 100)
	v.SetDefault("progress.delay", "20ms")
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.size", 32)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("history.path", "Insights.json")
	v.SetDefault("failures.path", "Failures.json")
}

func (c *Config) detectProvider() string {
	for _, p := range Providers {
		if c.Provider(p).APIKey != "" {
			return p
		}
	}
	return ProviderOpenAI
}

// Provider returns the settings for the named provider.
func (c *Config) Provider(name string) ProviderConfig {
	switch name {
	case ProviderGrok:
		return c.Grok
	case ProviderGemini:
		return c.Gemini
	case ProviderKimi:
		return c.Kimi
	case ProviderMoonshot:
		return c.Moonshot
	default:
		return c.OpenAI
	}
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func validate(config *Config) error {
	if !slices.Contains(Providers, config.Inference.Provider) {
		return fmt.Errorf("inference provider must be one of %s, got: %s", strings.Join(Providers, ", "), config.Inference.Provider)
	}
	// OpenAI without a key talks to a local OpenAI-compatible server instead.
	if p := config.Inference.Provider; p != ProviderOpenAI && config.Provider(p).APIKey == "" {
		return fmt.Errorf("%s API key is required (set %s_API_KEY)", p, strings.ToUpper(p))
	}

	if port, err := strconv.Atoi(config.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535, got: %s", config.Port)
	}
	if config.Progress.Steps < 1 {
		return fmt.Errorf("progress steps must be positive, got: %d", config.Progress.Steps)
	}
	if config.Progress.Delay < 0 {
		return fmt.Errorf("progress delay must not be negative, got: %s", config.Progress.Delay)
	}
	if config.Queue.Workers < 1 || config.Queue.Size < 1 {
		return fmt.Errorf("queue workers and size must be positive, got: %d workers, size %d", config.Queue.Workers, config.Queue.Size)
	}
	if config.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got: %s", config.Cache.TTL)
	}
	return nil
}
