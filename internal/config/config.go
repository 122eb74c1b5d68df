package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds application configuration values.
type Config struct {
	Secret         string
	DatabaseDriver string
	DatabaseDSN    string
	HTTPPort       string
	FrontendURL    string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string
	ExchangeRate        decimal.Decimal
	WebAgentID          int64
	WebBranchID         int64

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	EmailKey  string
	EmailFrom string

	StockPolicy string
	AMQPURL     string
	SalesQueue  string
	CatalogCSV  string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := firstNonEmpty(os.Getenv("JWT_SECRET"), os.Getenv("SECRET"), "dev_secret")

	port := firstNonEmpty(os.Getenv("HTTP_PORT"), os.Getenv("PORT"), "8082")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8082", port)
		port = "8082"
	}

	driver := strings.ToLower(firstNonEmpty(os.Getenv("DB_DRIVER"), "sqlite"))
	if driver != "sqlite" && driver != "pgx" {
		log.Printf("unknown DB_DRIVER %q, defaulting to sqlite", driver)
		driver = "sqlite"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		if driver == "sqlite" {
			dsn = "file:farmacia.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		} else {
			host := firstNonEmpty(os.Getenv("DB_HOST"), "localhost")
			user := firstNonEmpty(os.Getenv("DB_USER"), "postgres")
			dbPort := firstNonEmpty(os.Getenv("DB_PORT"), "5432")
			name := firstNonEmpty(os.Getenv("DB_NAME"), "farmacia")
			password := os.Getenv("DB_PASSWORD")
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, dbPort, name)
		}
	}

	rate, err := decimal.NewFromString(firstNonEmpty(os.Getenv("EXCHANGE_RATE"), "7.9"))
	if err != nil || !rate.IsPositive() {
		log.Printf("invalid EXCHANGE_RATE value %q, defaulting to 7.9", os.Getenv("EXCHANGE_RATE"))
		rate = decimal.RequireFromString("7.9")
	}

	policy := strings.ToLower(firstNonEmpty(os.Getenv("STOCK_POLICY"), "permissive"))
	if policy != "permissive" && policy != "strict" {
		log.Printf("invalid STOCK_POLICY value %q, defaulting to permissive", policy)
		policy = "permissive"
	}

	return Config{
		Secret:         secret,
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		HTTPPort:       port,
		FrontendURL:    strings.TrimRight(firstNonEmpty(os.Getenv("HOST_FRONTEND"), "http://localhost:5173"), "/"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeCurrency:      strings.ToLower(firstNonEmpty(os.Getenv("STRIPE_CURRENCY"), "usd")),
		ExchangeRate:        rate,
		WebAgentID:          intEnv("WEB_AGENT_ID", 0),
		WebBranchID:         intEnv("WEB_BRANCH_ID", 0),

		SMTPHost:  firstNonEmpty(os.Getenv("SMTP_HOST"), "smtp.gmail.com"),
		SMTPPort:  int(intEnv("SMTP_PORT", 587)),
		SMTPUser:  os.Getenv("SMTP_USER"),
		EmailKey:  os.Getenv("EMAIL_API_KEY"),
		EmailFrom: firstNonEmpty(os.Getenv("EMAIL_FROM"), "Farmacia <no-reply@farmacia.com>"),

		StockPolicy: policy,
		AMQPURL:     os.Getenv("AMQP_URL"),
		SalesQueue:  firstNonEmpty(os.Getenv("SALES_QUEUE"), "sales_committed"),
		CatalogCSV:  os.Getenv("CATALOG_CSV"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intEnv(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, def)
		return def
	}
	return v
}
