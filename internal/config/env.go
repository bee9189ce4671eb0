package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/models"
	"storefront/internal/pricing"
	"storefront/internal/utils"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
	PageSize int
	Promos   []models.Promo

	PersistenceDriver string
	DatabaseDSN       string

	CORSOrigins   []string
	ToastDuration time.Duration

	// ConfigPath is the YAML file the values were read from, if any.
	ConfigPath string
}

// fileConfig is the YAML layout of the optional config file.
type fileConfig struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		Mode        string   `yaml:"mode"`
		LogLevel    string   `yaml:"log_level"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Upstream struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`
	Pricing struct {
		TaxRate  *float64      `yaml:"tax_rate"`
		Shipping *float64      `yaml:"shipping"`
		Promos   []promoConfig `yaml:"promos"`
	} `yaml:"pricing"`
	Catalog struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"catalog"`
	Persistence struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"persistence"`
	Notifications struct {
		Duration string `yaml:"duration"`
	} `yaml:"notifications"`
}

type promoConfig struct {
	Code  string  `yaml:"code"`
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
	Label string  `yaml:"label"`
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

func defaultEnv() Env {
	return Env{
		AppAddr:           ":8080",
		LogLevel:          "info",
		UpstreamBaseURL:   "https://fakestoreapi.com",
		UpstreamTimeout:   10 * time.Second,
		TaxRate:           decimal.RequireFromString("0.10"),
		Shipping:          decimal.Zero,
		PageSize:          10,
		Promos:            pricing.DefaultPromos(),
		PersistenceDriver: DriverMemory,
		CORSOrigins:       append([]string(nil), defaultCORSOrigins...),
		ToastDuration:     5 * time.Second,
	}
}

// LoadEnv resolves defaults, then the YAML file at path (when non-empty), then
// environment variables.
func LoadEnv(path string) (Env, error) {
	env := defaultEnv()

	if path = strings.TrimSpace(path); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return env, err
		}
		if err := fc.apply(&env); err != nil {
			return env, fmt.Errorf("config %s: %w", path, err)
		}
		env.ConfigPath = path
	}

	if err := applyEnvOverrides(&env); err != nil {
		return env, err
	}
	return env, nil
}

// LoadPromos reads only the promo table from the YAML file at path. A file
// without a promos section yields the defaults.
func LoadPromos(path string) ([]models.Promo, error) {
	fc, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if len(fc.Pricing.Promos) == 0 {
		return pricing.DefaultPromos(), nil
	}
	return convertPromos(fc.Pricing.Promos)
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(env *Env) error {
	setString(&env.AppAddr, fc.Server.Addr)
	setString(&env.GinMode, fc.Server.Mode)
	setString(&env.LogLevel, fc.Server.LogLevel)
	if len(fc.Server.CORSOrigins) > 0 {
		env.CORSOrigins = fc.Server.CORSOrigins
	}

	setString(&env.UpstreamBaseURL, fc.Upstream.BaseURL)
	if fc.Upstream.Timeout != "" {
		d, err := time.ParseDuration(fc.Upstream.Timeout)
		if err != nil {
			return fmt.Errorf("upstream.timeout: %w", err)
		}
		env.UpstreamTimeout = d
	}

	if fc.Pricing.TaxRate != nil {
		env.TaxRate = decimal.NewFromFloat(*fc.Pricing.TaxRate)
	}
	if fc.Pricing.Shipping != nil {
		env.Shipping = decimal.NewFromFloat(*fc.Pricing.Shipping)
	}
	if len(fc.Pricing.Promos) > 0 {
		promos, err := convertPromos(fc.Pricing.Promos)
		if err != nil {
			return err
		}
		env.Promos = promos
	}

	if fc.Catalog.PageSize > 0 {
		env.PageSize = fc.Catalog.PageSize
	}

	setString(&env.PersistenceDriver, fc.Persistence.Driver)
	setString(&env.DatabaseDSN, fc.Persistence.DSN)

	if fc.Notifications.Duration != "" {
		d, err := time.ParseDuration(fc.Notifications.Duration)
		if err != nil {
			return fmt.Errorf("notifications.duration: %w", err)
		}
		env.ToastDuration = d
	}
	return nil
}

func convertPromos(in []promoConfig) ([]models.Promo, error) {
	out := make([]models.Promo, 0, len(in))
	for i, p := range in {
		kind := models.PromoKind(strings.ToLower(strings.TrimSpace(p.Kind)))
		if kind != models.PromoPercentage && kind != models.PromoFixed {
			return nil, fmt.Errorf("pricing.promos[%d]: unknown kind %q", i, p.Kind)
		}
		if strings.TrimSpace(p.Code) == "" {
			return nil, fmt.Errorf("pricing.promos[%d]: code is required", i)
		}
		if p.Value < 0 {
			return nil, fmt.Errorf("pricing.promos[%d]: value must not be negative", i)
		}
		out = append(out, models.Promo{
			Code:  strings.ToUpper(strings.TrimSpace(p.Code)),
			Kind:  kind,
			Value: decimal.NewFromFloat(p.Value),
			Label: p.Label,
		})
	}
	return out, nil
}

func applyEnvOverrides(env *Env) error {
	setString(&env.AppAddr, os.Getenv("APP_ADDR"))
	setString(&env.GinMode, os.Getenv("GIN_MODE"))
	setString(&env.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&env.UpstreamBaseURL, os.Getenv("UPSTREAM_BASE_URL"))
	setString(&env.PersistenceDriver, os.Getenv("PERSISTENCE_DRIVER"))
	setString(&env.DatabaseDSN, os.Getenv("DATABASE_DSN"))

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSOrigins = utils.SplitList(v)
	}

	if v := strings.TrimSpace(os.Getenv("UPSTREAM_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		env.UpstreamTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("TOAST_DURATION")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOAST_DURATION: %w", err)
		}
		env.ToastDuration = d
	}
	if v := strings.TrimSpace(os.Getenv("TAX_RATE")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("TAX_RATE: %w", err)
		}
		env.TaxRate = d
	}
	if v := strings.TrimSpace(os.Getenv("SHIPPING_FEE")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("SHIPPING_FEE: %w", err)
		}
		env.Shipping = d
	}
	if v := strings.TrimSpace(os.Getenv("PAGE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("PAGE_SIZE: invalid value %q", v)
		}
		env.PageSize = n
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
