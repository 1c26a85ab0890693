package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"

	"github.com/joao-fontenele/pickup-orderbot/internal/pickup"
)

const (
	StorePostgres = "postgres"
	StorePebble   = "pebble"
)

// Config is read once at process start and never mutated afterwards.
type Config struct {
	Port         string   `envconfig:"PORT" default:"8081"`
	OrderStore   string   `envconfig:"ORDER_STORE" default:"postgres"`
	PostgresURL  string   `envconfig:"POSTGRES_URL"`
	PebbleDir    string   `envconfig:"PEBBLE_DIR" default:"data/orders"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	ChannelURL   string   `envconfig:"CHANNEL_API_URL" required:"true"`

	Timezone      string `envconfig:"SHOP_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
	OpenHour      int    `envconfig:"BUSINESS_OPEN_HOUR" default:"8"`
	OpenMinute    int    `envconfig:"BUSINESS_OPEN_MINUTE" default:"0"`
	CloseHour     int    `envconfig:"BUSINESS_CLOSE_HOUR" default:"18"`
	CloseMinute   int    `envconfig:"BUSINESS_CLOSE_MINUTE" default:"0"`
	PrepMinutes   int    `envconfig:"PREPARATION_MINUTES" default:"120"`
	WindowMinutes int    `envconfig:"PICKUP_WINDOW_MINUTES" default:"120"`

	ServiceNumber string `envconfig:"SERVICE_NUMBER"`
	ServiceEmail  string `envconfig:"SERVICE_EMAIL"`
	ShopName      string `envconfig:"SHOP_NAME" default:"Mercamio Carnes"`
	BotName       string `envconfig:"BOT_NAME" default:"Mercamio Bot"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ChannelURL == "" {
		return fmt.Errorf("CHANNEL_API_URL is required")
	}

	switch c.OrderStore {
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when ORDER_STORE=%s", StorePostgres)
		}
	case StorePebble:
		if c.PebbleDir == "" {
			return fmt.Errorf("PEBBLE_DIR is required when ORDER_STORE=%s", StorePebble)
		}
	default:
		return fmt.Errorf("unknown ORDER_STORE %q", c.OrderStore)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("load SHOP_TIMEZONE %q: %w", c.Timezone, err)
	}

	hours := c.businessHours(time.UTC)
	return hours.Validate()
}

// BusinessHours resolves the shop timezone; Validate has already checked it.
func (c Config) BusinessHours() (pickup.BusinessHours, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return pickup.BusinessHours{}, fmt.Errorf("load SHOP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return c.businessHours(loc), nil
}

func (c Config) businessHours(loc *time.Location) pickup.BusinessHours {
	return pickup.BusinessHours{
		OpenHour:      c.OpenHour,
		OpenMinute:    c.OpenMinute,
		CloseHour:     c.CloseHour,
		CloseMinute:   c.CloseMinute,
		PrepMinutes:   c.PrepMinutes,
		WindowMinutes: c.WindowMinutes,
		Location:      loc,
	}
}
