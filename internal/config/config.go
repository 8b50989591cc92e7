package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Contentful ContentfulConfig `yaml:"contentful"`
	Stripe     StripeConfig     `yaml:"stripe"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Redis      RedisConfig      `yaml:"redis"`
	Site       SiteConfig       `yaml:"site"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// ContentfulConfig holds content-repository credentials. The management
// token covers every write path (form submissions, registrations); the
// delivery token covers the public read surface.
type ContentfulConfig struct {
	SpaceID         string `yaml:"space_id"`
	Environment     string `yaml:"environment"`
	ManagementToken string `yaml:"management_token"`
	DeliveryToken   string `yaml:"delivery_token"`
	ManagementURL   string `yaml:"management_url"`
	DeliveryURL     string `yaml:"delivery_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ContentfulConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports missing credentials. Callers must treat an error as
// fatal at startup rather than degrade at request time.
func (c ContentfulConfig) Validate() error {
	if c.SpaceID == "" {
		return fmt.Errorf("contentful: space_id is required")
	}
	if c.ManagementToken == "" {
		return fmt.Errorf("contentful: management_token is required")
	}
	if c.DeliveryToken == "" {
		return fmt.Errorf("contentful: delivery_token is required")
	}
	return nil
}

// StripeConfig holds payment-gateway credentials
type StripeConfig struct {
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	PublishableKey string `yaml:"publishable_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c StripeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports missing credentials for an enabled gateway.
func (c StripeConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret_key is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe: webhook_secret is required")
	}
	return nil
}

// SMTPConfig holds mail transport configuration
type SMTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	FromAddress    string `yaml:"from_address"`
	FromName       string `yaml:"from_name"`
	AdminAddress   string `yaml:"admin_address"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports missing transport settings.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp: host is required")
	}
	if c.FromAddress == "" {
		return fmt.Errorf("smtp: from_address is required")
	}
	if c.AdminAddress == "" {
		return fmt.Errorf("smtp: admin_address is required")
	}
	return nil
}

// NewsletterConfig holds the optional external email-marketing service
// the newsletter flow mirrors subscribers into. Registration failures
// there never block a subscription.
type NewsletterConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	ListID         int64  `yaml:"list_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c NewsletterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the connection for the form-submission rate limiter.
// Leave Addr empty to disable rate limiting entirely.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	MaxPerMinute int    `yaml:"max_per_minute"`
}

// SiteConfig holds site-wide settings used in links and emails
type SiteConfig struct {
	BaseURL         string   `yaml:"base_url"`
	ThankYouPath    string   `yaml:"thank_you_path"`
	CompanyCacheTTL int      `yaml:"company_cache_ttl_seconds"`
	SliderCacheTTL  int      `yaml:"slider_cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// CompanyTTL returns the company-details cache TTL as a duration
func (c SiteConfig) CompanyTTL() time.Duration {
	return time.Duration(c.CompanyCacheTTL) * time.Second
}

// SliderTTL returns the slider cache TTL as a duration
func (c SiteConfig) SliderTTL() time.Duration {
	return time.Duration(c.SliderCacheTTL) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Contentful.Environment == "" {
		cfg.Contentful.Environment = "master"
	}
	if cfg.Contentful.ManagementURL == "" {
		cfg.Contentful.ManagementURL = "https://api.contentful.com"
	}
	if cfg.Contentful.DeliveryURL == "" {
		cfg.Contentful.DeliveryURL = "https://cdn.contentful.com"
	}
	if cfg.Contentful.TimeoutSeconds == 0 {
		cfg.Contentful.TimeoutSeconds = 30
	}
	if cfg.Stripe.BaseURL == "" {
		cfg.Stripe.BaseURL = "https://api.stripe.com"
	}
	if cfg.Stripe.TimeoutSeconds == 0 {
		cfg.Stripe.TimeoutSeconds = 30
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.TimeoutSeconds == 0 {
		cfg.SMTP.TimeoutSeconds = 15
	}
	if cfg.SMTP.FromName == "" {
		cfg.SMTP.FromName = "BrightPath Coaching"
	}
	if cfg.Newsletter.BaseURL == "" {
		cfg.Newsletter.BaseURL = "https://api.brevo.com/v3"
	}
	if cfg.Newsletter.TimeoutSeconds == 0 {
		cfg.Newsletter.TimeoutSeconds = 15
	}
	if cfg.Redis.MaxPerMinute == 0 {
		cfg.Redis.MaxPerMinute = 10
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "http://localhost:8080"
	}
	if cfg.Site.ThankYouPath == "" {
		cfg.Site.ThankYouPath = "/newsletter/thank-you"
	}
	if cfg.Site.CompanyCacheTTL == 0 {
		cfg.Site.CompanyCacheTTL = 3600
	}
	if cfg.Site.SliderCacheTTL == 0 {
		cfg.Site.SliderCacheTTL = 300
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CONTENTFUL_SPACE_ID"); v != "" {
		cfg.Contentful.SpaceID = v
	}
	if v := os.Getenv("CONTENTFUL_ENVIRONMENT"); v != "" {
		cfg.Contentful.Environment = v
	}
	if v := os.Getenv("CONTENTFUL_MANAGEMENT_TOKEN"); v != "" {
		cfg.Contentful.ManagementToken = v
	}
	if v := os.Getenv("CONTENTFUL_ACCESS_TOKEN"); v != "" {
		cfg.Contentful.DeliveryToken = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Stripe.SecretKey = v
		cfg.Stripe.Enabled = true
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Stripe.WebhookSecret = v
	}
	if v := os.Getenv("STRIPE_PUBLISHABLE_KEY"); v != "" {
		cfg.Stripe.PublishableKey = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTP.FromAddress = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.SMTP.AdminAddress = v
	}
	if v := os.Getenv("NEWSLETTER_API_KEY"); v != "" {
		cfg.Newsletter.APIKey = v
		cfg.Newsletter.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}

	return cfg, nil
}
