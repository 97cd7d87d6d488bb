package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

const (
	DefaultRequestTTL        = 48 * time.Hour
	DefaultTimestampWindow   = 48 * time.Hour
	DefaultExtractionTimeout = 30 * time.Second
	DefaultMaxUploadBytes    = 5 << 20
	DefaultTimezone          = "America/Guyana"
)

// MMGConfig holds the mobile-money workflow settings.
type MMGConfig struct {
	PayeeIdentifier   string             `yaml:"payee_identifier"`
	Currency          string             `yaml:"currency"`
	Pricing           map[string]float64 `yaml:"pricing"`
	RequestTTL        time.Duration      `yaml:"request_ttl"`
	AmountTolerance   float64            `yaml:"amount_tolerance"`
	TimestampWindow   time.Duration      `yaml:"timestamp_window"`
	MaxUploadBytes    int64              `yaml:"max_upload_bytes"`
	ExtractionTimeout time.Duration      `yaml:"extraction_timeout"`
	AdminEmails       []string           `yaml:"admin_emails"`
	// Timezone for receipt times shown without an offset
	Timezone string `yaml:"timezone"`
}

func DefaultMMGConfig() MMGConfig {
	return MMGConfig{
		Currency:          "GYD",
		Pricing:           map[string]float64{},
		RequestTTL:        DefaultRequestTTL,
		AmountTolerance:   1,
		TimestampWindow:   DefaultTimestampWindow,
		MaxUploadBytes:    DefaultMaxUploadBytes,
		ExtractionTimeout: DefaultExtractionTimeout,
		Timezone:          DefaultTimezone,
	}
}

// Price returns the configured price for a plan.
func (c MMGConfig) Price(plan string) (decimal.Decimal, bool) {
	v, ok := c.Pricing[plan]
	if !ok || v <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v).Round(2), true
}

// Tolerance returns the absolute amount tolerance as a decimal.
func (c MMGConfig) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.AmountTolerance)
}

// Location resolves Timezone, defaulting to UTC when unset.
func (c MMGConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid mmg.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c MMGConfig) Validate() error {
	if c.PayeeIdentifier == "" {
		return fmt.Errorf("mmg.payee_identifier is required")
	}
	if c.RequestTTL <= 0 || c.TimestampWindow <= 0 {
		return fmt.Errorf("mmg.request_ttl and mmg.timestamp_window must be positive")
	}
	if c.AmountTolerance < 0 {
		return fmt.Errorf("mmg.amount_tolerance must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
