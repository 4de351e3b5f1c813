package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"Restore/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type ServerConfig struct {
	Addr          string   `yaml:"addr"`
	Environment   string   `yaml:"environment"`
	ClientOrigins []string `yaml:"client_origins"`
	StaticDir     string   `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"`
	Seed     bool   `yaml:"seed"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	Database int           `yaml:"database"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	PrivateKeyPath string        `yaml:"private_key_path"`
	PublicKeyPath  string        `yaml:"public_key_path"`
	CookieName     string        `yaml:"cookie_name"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	Currency      string `yaml:"currency"`
	BaseURL       string `yaml:"base_url"`
}

type S3Config struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// ShippingConfig holds amounts in major units, e.g. "100.00".
type ShippingConfig struct {
	FreeDeliveryThreshold string `yaml:"free_delivery_threshold"`
	DeliveryFee           string `yaml:"delivery_fee"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Stripe   StripeConfig   `yaml:"stripe"`
	S3       S3Config       `yaml:"s3"`
	Shipping ShippingConfig `yaml:"shipping"`
}

func (c Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// DeliveryRule converts the shipping amounts into cents.
func (c Config) DeliveryRule() (models.DeliveryRule, error) {
	threshold, err := models.ParseCents(c.Shipping.FreeDeliveryThreshold)
	if err != nil {
		return models.DeliveryRule{}, fmt.Errorf("shipping.free_delivery_threshold: %w", err)
	}
	fee, err := models.ParseCents(c.Shipping.DeliveryFee)
	if err != nil {
		return models.DeliveryRule{}, fmt.Errorf("shipping.delivery_fee: %w", err)
	}
	return models.DeliveryRule{FreeThreshold: threshold, Fee: fee}, nil
}

func LoadConfig(filename string) (Config, error) {
	var config Config
	file, err := os.Open(filename)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}

// Load reads .env (if present), the yaml file and environment overrides,
// then applies defaults and validates the result.
func Load(filename string) (Config, error) {
	_ = godotenv.Load()

	config, err := LoadConfig(filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load %s: %w", filename, err)
	}

	applyEnv(&config)
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnv(c *Config) {
	setString(&c.Server.Environment, "APP_ENV")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&c.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&c.S3.Bucket, "S3_BUCKET")
	if v, ok := os.LookupEnv("REDIS_ENABLED"); ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Redis.Enabled = enabled
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = EnvDevelopment
	}
	if len(c.Server.ClientOrigins) == 0 {
		c.Server.ClientOrigins = []string{"https://localhost:3000"}
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./wwwroot"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "store.db"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 10 * time.Minute
	}
	if c.Auth.PrivateKeyPath == "" {
		c.Auth.PrivateKeyPath = "jwt/private_key.pem"
	}
	if c.Auth.PublicKeyPath == "" {
		c.Auth.PublicKeyPath = "jwt/public_key.pem"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "restore.identity"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Stripe.Currency == "" {
		c.Stripe.Currency = "usd"
	}
	if c.Stripe.BaseURL == "" {
		c.Stripe.BaseURL = "https://api.stripe.com"
	}
	if c.Shipping.FreeDeliveryThreshold == "" {
		c.Shipping.FreeDeliveryThreshold = "100.00"
	}
	if c.Shipping.DeliveryFee == "" {
		c.Shipping.DeliveryFee = "5.00"
	}
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("server.environment: unsupported value %q", c.Server.Environment)
	}

	rule, err := c.DeliveryRule()
	if err != nil {
		return err
	}
	if rule.FreeThreshold < 0 || rule.Fee < 0 {
		return errors.New("shipping: amounts must not be negative")
	}
	return nil
}
