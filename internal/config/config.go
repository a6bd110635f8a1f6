package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/fiscal/internal/model"
)

// FileName is the config file at the project root.
const FileName = "fiscal.yaml"

// EnvPrefix prefixes environment overrides, e.g. FISCAL_TAX_REGISTERED.
const EnvPrefix = "FISCAL"

// Config represents the top-level fiscal.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business" mapstructure:"business"`
	Tax      TaxConfig      `yaml:"tax" mapstructure:"tax"`
	Ledger   LedgerConfig   `yaml:"ledger" mapstructure:"ledger"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Git      GitConfig      `yaml:"git" mapstructure:"git"`
}

// BusinessConfig identifies the company.
type BusinessConfig struct {
	Name       string `yaml:"name" mapstructure:"name" validate:"required"`
	EntityType string `yaml:"entity_type" mapstructure:"entity_type"`
}

// TaxConfig holds the company's current tax settings. Summaries always use
// these values, whatever was in effect when a transaction was recorded.
type TaxConfig struct {
	Jurisdiction      string          `yaml:"jurisdiction" mapstructure:"jurisdiction"`
	SalesTaxRate      decimal.Decimal `yaml:"sales_tax_rate" mapstructure:"sales_tax_rate" validate:"gte=0,lte=1"`
	SmallBusinessRate decimal.Decimal `yaml:"small_business_rate" mapstructure:"small_business_rate" validate:"gte=0,lte=1"`
	Registered        bool            `yaml:"registered" mapstructure:"registered"`
}

// LedgerConfig selects the depreciation ledger backend.
type LedgerConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver" validate:"oneof=csv sqlite"`
	SQLitePath string `yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=console json"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" mapstructure:"auto_commit"`
	AuthorName  string `yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email" validate:"omitempty,email"`
}

// Load reads fiscal.yaml, applies FISCAL_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Tax: TaxConfig{
			Jurisdiction:      "ON",
			SalesTaxRate:      decimal.New(13, -2),
			SmallBusinessRate: decimal.New(9, -2),
			Registered:        true,
		},
		Ledger: LedgerConfig{
			Driver: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Cleared Fiscal",
			AuthorEmail: "fiscal@cleared.dev",
		},
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Company returns the tax settings the engine computes with.
func (c *Config) Company() model.Company {
	return model.Company{
		Name:              c.Business.Name,
		Jurisdiction:      c.Tax.Jurisdiction,
		SalesTaxRate:      c.Tax.SalesTaxRate,
		SmallBusinessRate: c.Tax.SmallBusinessRate,
		TaxRegistered:     c.Tax.Registered,
	}
}

// SQLitePath resolves the sqlite ledger path against the project root.
func (c *Config) SQLitePath(root string) string {
	if filepath.IsAbs(c.Ledger.SQLitePath) {
		return c.Ledger.SQLitePath
	}
	return filepath.Join(root, c.Ledger.SQLitePath)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Rates are range-checked as floats; the stored values stay decimal.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return data, nil
}
