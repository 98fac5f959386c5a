package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix = "LISTINGSHIELD"

	defaultHTTPAddress        = "0.0.0.0:8080"
	defaultLogLevel           = "info"
	defaultEnvironment        = "development"
	defaultCurrency           = "pln"
	defaultSessionCookieName  = "session_id"
	defaultAdminCookieName    = "admin_session"
	defaultPlacesBaseURL      = "https://maps.googleapis.com/maps/api/place"
	defaultCheckoutSuccessURL = "http://localhost:3000/payment/success"
	defaultCheckoutCancelURL  = "http://localhost:3000/payment/cancel"
	defaultSMTPPort           = 587
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress string
	Environment string
	LogLevel    string

	DatabaseDSN string

	PlacesAPIKey  string
	PlacesBaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	AdminEmail        string
	AdminPassword     string
	AdminCookieName   string
	SessionCookieName string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ContactInbox string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("environment", defaultEnvironment)
	configViper.SetDefault("places.base_url", defaultPlacesBaseURL)
	configViper.SetDefault("stripe.currency", defaultCurrency)
	configViper.SetDefault("checkout.success_url", defaultCheckoutSuccessURL)
	configViper.SetDefault("checkout.cancel_url", defaultCheckoutCancelURL)
	configViper.SetDefault("admin.cookie_name", defaultAdminCookieName)
	configViper.SetDefault("session.cookie_name", defaultSessionCookieName)
	configViper.SetDefault("smtp.port", defaultSMTPPort)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:         configViper.GetString("http.address"),
		Environment:         configViper.GetString("environment"),
		LogLevel:            configViper.GetString("log.level"),
		DatabaseDSN:         configViper.GetString("database.dsn"),
		PlacesAPIKey:        configViper.GetString("places.api_key"),
		PlacesBaseURL:       configViper.GetString("places.base_url"),
		StripeSecretKey:     configViper.GetString("stripe.secret_key"),
		StripeWebhookSecret: configViper.GetString("stripe.webhook_secret"),
		Currency:            configViper.GetString("stripe.currency"),
		CheckoutSuccessURL:  configViper.GetString("checkout.success_url"),
		CheckoutCancelURL:   configViper.GetString("checkout.cancel_url"),
		AdminEmail:          configViper.GetString("admin.email"),
		AdminPassword:       configViper.GetString("admin.password"),
		AdminCookieName:     configViper.GetString("admin.cookie_name"),
		SessionCookieName:   configViper.GetString("session.cookie_name"),
		SMTPHost:            configViper.GetString("smtp.host"),
		SMTPPort:            configViper.GetInt("smtp.port"),
		SMTPUser:            configViper.GetString("smtp.user"),
		SMTPPassword:        configViper.GetString("smtp.password"),
		ContactInbox:        configViper.GetString("contact.inbox"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies, release-mode router).
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func (c AppConfig) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"database.dsn", c.DatabaseDSN},
		{"places.api_key", c.PlacesAPIKey},
		{"stripe.secret_key", c.StripeSecretKey},
		{"stripe.webhook_secret", c.StripeWebhookSecret},
		{"admin.email", c.AdminEmail},
		{"admin.password", c.AdminPassword},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.key)
		}
	}
	return nil
}
