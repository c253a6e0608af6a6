package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Email policies for the wallet callback side effect.
const (
	EmailOnSuccess = "on_success"
	EmailAlways    = "always"
	EmailNever     = "never"
)

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogMySQL    = "mysql"
)

// AppConfig is the full service configuration.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Session    SessionConfig    `yaml:"session"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Database   DatabaseConfig   `yaml:"database"`
	Wallet     WalletConfig     `yaml:"wallet"`
	Validation ValidationConfig `yaml:"validation"`
	Email      EmailConfig      `yaml:"email"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	BaseURL     string   `yaml:"base_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`
	Secure     bool          `yaml:"secure"`
}

type CatalogConfig struct {
	Source string `yaml:"source"`
}

type DatabaseConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// WalletConfig describes the payment intent sent through wallet_sendCalls.
type WalletConfig struct {
	RPCURL        string        `yaml:"rpc_url"`
	ConnectorName string        `yaml:"connector_name"`
	Version       string        `yaml:"version"`
	ChainID       int64         `yaml:"chain_id"`
	TokenAddress  string        `yaml:"token_address"`
	TokenDecimals int           `yaml:"token_decimals"`
	Recipient     string        `yaml:"recipient"`
	FixedAmount   string        `yaml:"fixed_amount"`
	CallbackURL   string        `yaml:"callback_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

type ValidationConfig struct {
	BlockedEmailDomains []string `yaml:"blocked_email_domains"`
	BlockedCountryCodes []string `yaml:"blocked_country_codes"`
	MinPostalCodeLength int      `yaml:"min_postal_code_length"`
}

type EmailConfig struct {
	Policy       string        `yaml:"policy"`
	ResendAPIKey string        `yaml:"resend_api_key"`
	From         string        `yaml:"from"`
	Subject      string        `yaml:"subject"`
	SMTPHost     string        `yaml:"smtp_host"`
	SMTPPort     int           `yaml:"smtp_port"`
	SMTPUsername string        `yaml:"smtp_username"`
	SMTPPassword string        `yaml:"smtp_password"`
	Timeout      time.Duration `yaml:"timeout"`
}

var (
	globalConfig *AppConfig
	configMutex  sync.RWMutex
)

// DefaultConfig returns the demo defaults: Base Sepolia USDC, example.com and XY blocked.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			CORSOrigins: []string{"*"},
		},
		Session: SessionConfig{
			Secret:     "eventful-dev-session-secret",
			TTL:        2 * time.Hour,
			CookieName: "eventful_session",
		},
		Catalog: CatalogConfig{Source: CatalogEmbedded},
		Database: DatabaseConfig{
			Server: "127.0.0.1",
			Port:   3306,
			Name:   "eventful",
			User:   "root",
		},
		Wallet: WalletConfig{
			ConnectorName: "Coinbase Wallet",
			Version:       "1.0",
			ChainID:       84532,
			TokenAddress:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
			TokenDecimals: 6,
			Recipient:     "0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
			FixedAmount:   "0.01",
			Timeout:       60 * time.Second,
		},
		Validation: ValidationConfig{
			BlockedEmailDomains: []string{"example.com"},
			BlockedCountryCodes: []string{"XY"},
			MinPostalCodeLength: 5,
		},
		Email: EmailConfig{
			Policy:   EmailOnSuccess,
			From:     "Eventful <no-reply@thecyberverse.xyz>",
			Subject:  "Your {{event}} Ticket",
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
			Timeout:  10 * time.Second,
		},
	}
}

// Load reads .env, then the optional YAML file at path, then environment overrides.
// The result is cached; later calls return the first configuration.
func Load(path string) (*AppConfig, error) {
	configMutex.RLock()
	if globalConfig != nil {
		configMutex.RUnlock()
		return globalConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	// Missing .env is fine; real environment always wins over it.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

// LoadFile merges a YAML file into c.
func (c *AppConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *AppConfig) ApplyEnv() {
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.BaseURL = getEnv("BASE_URL", c.Server.BaseURL)
	c.Server.CORSOrigins = getEnvList("CORS_ORIGINS", c.Server.CORSOrigins)

	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Session.TTL = getEnvDuration("SESSION_TTL", c.Session.TTL)
	c.Session.Secure = getEnvBool("SESSION_SECURE", c.Session.Secure)

	c.Catalog.Source = getEnv("CATALOG_SOURCE", c.Catalog.Source)

	c.Database.Server = getEnv("DB_SERVER", c.Database.Server)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)

	c.Wallet.RPCURL = getEnv("WALLET_RPC_URL", c.Wallet.RPCURL)
	c.Wallet.ConnectorName = getEnv("WALLET_CONNECTOR", c.Wallet.ConnectorName)
	c.Wallet.ChainID = int64(getEnvInt("WALLET_CHAIN_ID", int(c.Wallet.ChainID)))
	c.Wallet.TokenAddress = getEnv("WALLET_TOKEN_ADDRESS", c.Wallet.TokenAddress)
	c.Wallet.TokenDecimals = getEnvInt("WALLET_TOKEN_DECIMALS", c.Wallet.TokenDecimals)
	c.Wallet.Recipient = getEnv("WALLET_RECIPIENT", c.Wallet.Recipient)
	if v, ok := os.LookupEnv("WALLET_FIXED_AMOUNT"); ok {
		c.Wallet.FixedAmount = v
	}
	c.Wallet.CallbackURL = getEnv("WALLET_CALLBACK_URL", c.Wallet.CallbackURL)
	c.Wallet.Timeout = getEnvDuration("WALLET_TIMEOUT", c.Wallet.Timeout)

	c.Validation.BlockedEmailDomains = getEnvList("BLOCKED_EMAIL_DOMAINS", c.Validation.BlockedEmailDomains)
	c.Validation.BlockedCountryCodes = getEnvList("BLOCKED_COUNTRY_CODES", c.Validation.BlockedCountryCodes)
	c.Validation.MinPostalCodeLength = getEnvInt("MIN_POSTAL_CODE_LENGTH", c.Validation.MinPostalCodeLength)

	c.Email.Policy = getEnv("EMAIL_POLICY", c.Email.Policy)
	c.Email.ResendAPIKey = getEnv("RESEND_API_KEY", c.Email.ResendAPIKey)
	c.Email.From = getEnv("EMAIL_FROM", c.Email.From)
	c.Email.SMTPHost = getEnv("SMTP_HOST", c.Email.SMTPHost)
	c.Email.SMTPPort = getEnvInt("SMTP_PORT", c.Email.SMTPPort)
	c.Email.SMTPUsername = getEnv("SMTP_USERNAME", c.Email.SMTPUsername)
	c.Email.SMTPPassword = getEnv("SMTP_PASSWORD", c.Email.SMTPPassword)
	c.Email.Timeout = getEnvDuration("EMAIL_TIMEOUT", c.Email.Timeout)
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Email.Policy {
	case EmailOnSuccess, EmailAlways, EmailNever:
	default:
		return fmt.Errorf("invalid email policy %q", c.Email.Policy)
	}
	switch c.Catalog.Source {
	case CatalogEmbedded, CatalogMySQL:
	default:
		return fmt.Errorf("invalid catalog source %q", c.Catalog.Source)
	}
	if c.Validation.MinPostalCodeLength < 0 {
		return fmt.Errorf("min postal code length must not be negative")
	}
	if c.Wallet.TokenDecimals < 0 || c.Wallet.TokenDecimals > 36 {
		return fmt.Errorf("token decimals out of range: %d", c.Wallet.TokenDecimals)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	return nil
}

// CallbackURL is the configured callback URL, or BaseURL + /api/data-validation.
func (c *AppConfig) CallbackURL() string {
	if c.Wallet.CallbackURL != "" {
		return c.Wallet.CallbackURL
	}
	return strings.TrimRight(c.Server.BaseURL, "/") + "/api/data-validation"
}

// ChainIDHex renders the chain id the way wallet_sendCalls expects it.
func (w WalletConfig) ChainIDHex() string {
	return fmt.Sprintf("0x%X", w.ChainID)
}

// Reset drops the cached configuration. Tests use it between cases.
func Reset() {
	configMutex.Lock()
	globalConfig = nil
	configMutex.Unlock()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
