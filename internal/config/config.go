package config

import (
	"fmt"

	"github.com/spf13/viper"

	"listforge/pkg/matcher"
	"listforge/pkg/scorer"
)

type Config struct {
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Storage struct {
		Bucket string `mapstructure:"bucket"`
		// Prefix is the folder under which product photo folders live,
		// e.g. "incoming/".
		Prefix string `mapstructure:"prefix"`
		// MarkerPrefix is where processed markers are written.
		MarkerPrefix string `mapstructure:"marker_prefix"`
	} `mapstructure:"storage"`

	Shopify struct {
		Store       string `mapstructure:"store"` // myshop.myshopify.com
		AccessToken string `mapstructure:"access_token"`
		APIVersion  string `mapstructure:"api_version"`
	} `mapstructure:"shopify"`

	AI struct {
		OpenAIAPIKey string `mapstructure:"openai_api_key"`
		GoogleAPIKey string `mapstructure:"google_api_key"`
		VisionModel  string `mapstructure:"vision_model"`
		// Provider selects the copy generator: "openai" or "gemini".
		Provider        string `mapstructure:"provider"`
		GenerationModel string `mapstructure:"generation_model"`
		TrendModel      string `mapstructure:"trend_model"`
		TrendsEnabled   bool   `mapstructure:"trends_enabled"`
	} `mapstructure:"ai"`

	Scoring struct {
		Thresholds scorer.Thresholds `mapstructure:"thresholds"`
		// RecentWindow caps how many recently published descriptions feed
		// the uniqueness check.
		RecentWindow int `mapstructure:"recent_window"`
	} `mapstructure:"scoring"`

	Catalog struct {
		Collections []matcher.Collection `mapstructure:"collections"`
	} `mapstructure:"catalog"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Schedule struct {
		// Cron is a robfig/cron spec for the periodic folder scan.
		Cron string `mapstructure:"cron"`
	} `mapstructure:"schedule"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.BindEnv("ai.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("ai.google_api_key", "GOOGLE_API_KEY")
	viper.BindEnv("shopify.access_token", "SHOPIFY_ACCESS_TOKEN")

	viper.SetDefault("shopify.api_version", "2024-07")
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.vision_model", "gpt-4o-mini")
	viper.SetDefault("ai.generation_model", "gpt-4o-mini")
	viper.SetDefault("ai.trend_model", "gpt-4o-mini")
	viper.SetDefault("scoring.thresholds.auto_publish", scorer.DefaultThresholds.AutoPublish)
	viper.SetDefault("scoring.thresholds.quarantine", scorer.DefaultThresholds.Quarantine)
	viper.SetDefault("scoring.thresholds.reject", scorer.DefaultThresholds.Reject)
	viper.SetDefault("scoring.recent_window", 20)
	viper.SetDefault("worker.concurrency", 4)
	viper.SetDefault("schedule.cron", "@hourly")

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, env vars and defaults may be enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the parts of the config the pipeline cannot limp along
// without: a usable catalog and sanely ordered thresholds.
func (c *Config) Validate() error {
	if len(c.Catalog.Collections) == 0 {
		return fmt.Errorf("catalog.collections is empty; at least one collection is required")
	}
	for i, coll := range c.Catalog.Collections {
		if coll.ID == "" || coll.Name == "" {
			return fmt.Errorf("catalog.collections[%d]: id and name are required", i)
		}
		if len(coll.Keywords) == 0 {
			return fmt.Errorf("catalog.collections[%d] (%s): at least one keyword is required", i, coll.ID)
		}
	}

	th := c.Scoring.Thresholds
	if th.AutoPublish < th.Quarantine || th.Quarantine < th.Reject {
		return fmt.Errorf("scoring thresholds must satisfy auto_publish >= quarantine >= reject, got %d/%d/%d",
			th.AutoPublish, th.Quarantine, th.Reject)
	}
	return nil
}
