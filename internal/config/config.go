package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int
}

// AuthConfig holds the bearer-token signing secret. There is deliberately no
// fallback constant: a missing secret fails startup.
type AuthConfig struct {
	JWTSecret string
}

// TablesConfig names one DynamoDB table per ledger collection.
type TablesConfig struct {
	Orders     string
	PromoCodes string
	Reviews    string
	Products   string
	Users      string
}

// QueueConfig holds the order-events queue. Empty URL disables publishing.
type QueueConfig struct {
	OrderEventsURL string
}

// MetricsConfig holds the CloudWatch namespace. Empty disables metrics.
type MetricsConfig struct {
	Namespace string
}

// VNPayConfig holds the VNPay merchant credentials and endpoints.
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	GatewayURL string
	ReturnURL  string
}

// Configured reports whether any VNPay option is set at all.
func (c VNPayConfig) Configured() bool {
	return c.TmnCode != "" || c.HashSecret != "" || c.GatewayURL != ""
}

func (c VNPayConfig) missing() []string {
	var m []string
	if c.TmnCode == "" {
		m = append(m, "VNP_TMNCODE")
	}
	if c.HashSecret == "" {
		m = append(m, "VNP_HASHSECRET")
	}
	if c.GatewayURL == "" {
		m = append(m, "VNP_URL")
	}
	return m
}

// MoMoConfig holds the MoMo partner credentials and endpoints.
type MoMoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
}

func (c MoMoConfig) Configured() bool {
	return c.PartnerCode != "" || c.AccessKey != "" || c.SecretKey != ""
}

func (c MoMoConfig) missing() []string {
	var m []string
	if c.PartnerCode == "" {
		m = append(m, "MOMO_PARTNER_CODE")
	}
	if c.AccessKey == "" {
		m = append(m, "MOMO_ACCESS_KEY")
	}
	if c.SecretKey == "" {
		m = append(m, "MOMO_SECRET_KEY")
	}
	if c.Endpoint == "" {
		m = append(m, "MOMO_ENDPOINT")
	}
	return m
}

// PayPalConfig holds the PayPal app credentials and environment switch.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Environment  string // "sandbox" or "live"
}

func (c PayPalConfig) Configured() bool {
	return c.ClientID != "" || c.ClientSecret != ""
}

func (c PayPalConfig) missing() []string {
	var m []string
	if c.ClientID == "" {
		m = append(m, "PAYPAL_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		m = append(m, "PAYPAL_CLIENT_SECRET")
	}
	return m
}

// Config is the application configuration, resolved once at startup and
// passed down to the components that need it.
type Config struct {
	Env           string // "development" or "production"
	Server        ServerConfig
	Auth          AuthConfig
	FrontendURL   string // base URL the payment callbacks redirect users to
	PublicBaseURL string // base URL providers call back on (return/IPN)
	USDToVNDRate  float64
	Tables        TablesConfig
	Queue         QueueConfig
	Metrics       MetricsConfig
	VNPay         VNPayConfig
	MoMo          MoMoConfig
	PayPal        PayPalConfig
}

// IsDevelopment gates error detail in HTTP responses.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// VNPayReturnURL is the absolute URL VNPay redirects the browser back to.
func (c *Config) VNPayReturnURL() string {
	if c.VNPay.ReturnURL != "" {
		return c.VNPay.ReturnURL
	}
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/payment/vnpay_return"
}

// MoMoReturnURL is the browser redirect target for MoMo.
func (c *Config) MoMoReturnURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/payment/momo_return"
}

// MoMoNotifyURL is the server-to-server IPN target for MoMo.
func (c *Config) MoMoNotifyURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/payment/momo_notify"
}

// PayPalReturnURL is the browser redirect target after PayPal approval.
func (c *Config) PayPalReturnURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/payment/paypal_return"
}

// PayPalCancelURL is the browser redirect target when the user aborts.
func (c *Config) PayPalCancelURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/api/payment/paypal_cancel"
}

// Load reads configuration from the environment. A gateway left entirely
// unconfigured is allowed (its endpoints answer with a remediation hint);
// a gateway configured only partially is a startup error.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("USD_TO_VND_RATE", 25000.0)
	v.SetDefault("ORDERS_TABLE", "orders")
	v.SetDefault("PROMO_CODES_TABLE", "promo_codes")
	v.SetDefault("REVIEWS_TABLE", "reviews")
	v.SetDefault("PRODUCTS_TABLE", "products")
	v.SetDefault("USERS_TABLE", "users")
	v.SetDefault("PAYPAL_ENVIRONMENT", "sandbox")

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Port: v.GetInt("PORT"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		FrontendURL:   strings.TrimRight(v.GetString("FRONTEND_BASE_URL"), "/"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		USDToVNDRate:  v.GetFloat64("USD_TO_VND_RATE"),
		Tables: TablesConfig{
			Orders:     v.GetString("ORDERS_TABLE"),
			PromoCodes: v.GetString("PROMO_CODES_TABLE"),
			Reviews:    v.GetString("REVIEWS_TABLE"),
			Products:   v.GetString("PRODUCTS_TABLE"),
			Users:      v.GetString("USERS_TABLE"),
		},
		Queue: QueueConfig{
			OrderEventsURL: v.GetString("ORDER_EVENTS_QUEUE_URL"),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
		VNPay: VNPayConfig{
			TmnCode:    v.GetString("VNP_TMNCODE"),
			HashSecret: v.GetString("VNP_HASHSECRET"),
			GatewayURL: v.GetString("VNP_URL"),
			ReturnURL:  v.GetString("VNP_RETURN_URL"),
		},
		MoMo: MoMoConfig{
			PartnerCode: v.GetString("MOMO_PARTNER_CODE"),
			AccessKey:   v.GetString("MOMO_ACCESS_KEY"),
			SecretKey:   v.GetString("MOMO_SECRET_KEY"),
			Endpoint:    v.GetString("MOMO_ENDPOINT"),
		},
		PayPal: PayPalConfig{
			ClientID:     v.GetString("PAYPAL_CLIENT_ID"),
			ClientSecret: v.GetString("PAYPAL_CLIENT_SECRET"),
			Environment:  strings.ToLower(v.GetString("PAYPAL_ENVIRONMENT")),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.USDToVNDRate <= 0 {
		return nil, fmt.Errorf("USD_TO_VND_RATE must be positive, got %v", cfg.USDToVNDRate)
	}
	if cfg.PayPal.Environment != "sandbox" && cfg.PayPal.Environment != "live" {
		return nil, fmt.Errorf("PAYPAL_ENVIRONMENT must be sandbox or live, got %q", cfg.PayPal.Environment)
	}
	if cfg.VNPay.Configured() {
		if m := cfg.VNPay.missing(); len(m) > 0 {
			return nil, fmt.Errorf("VNPay partially configured, missing: %s", strings.Join(m, ", "))
		}
	}
	if cfg.MoMo.Configured() {
		if m := cfg.MoMo.missing(); len(m) > 0 {
			return nil, fmt.Errorf("MoMo partially configured, missing: %s", strings.Join(m, ", "))
		}
	}
	if cfg.PayPal.Configured() {
		if m := cfg.PayPal.missing(); len(m) > 0 {
			return nil, fmt.Errorf("PayPal partially configured, missing: %s", strings.Join(m, ", "))
		}
	}

	return cfg, nil
}
