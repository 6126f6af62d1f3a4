package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Reconciliation settings.
	DataGlob        string // raw batch files to reconcile
	KeyStrategy     string // "url" or "image"
	Brand           string // brand stamped onto records that lack one
	DefaultCurrency string
	AuditDir        string // reconciled output (JSON + CSV) lands here

	// Sync settings.
	UploadBatchSize int

	// Scraper settings.
	ShopifyStores  []string // store domains with a public products.json feed
	CollectionURLs []string // collection pages that need a real browser
	MaxProducts    int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	ChromeBin      string

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "catalog"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "catalog123"),
		PostgresDB:       getEnv("POSTGRES_DB", "catalog_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DataGlob:        getEnv("DATA_GLOB", "data/*.json"),
		KeyStrategy:     getEnv("KEY_STRATEGY", "url"),
		Brand:           getEnv("BRAND", "Rhone"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),
		AuditDir:        getEnv("AUDIT_DIR", "./output"),

		UploadBatchSize: getEnvInt("UPLOAD_BATCH_SIZE", 100),

		ShopifyStores:  getEnvList("SHOPIFY_STORES"),
		CollectionURLs: getEnvList("COLLECTION_URLS"),
		MaxProducts:    getEnvInt("MAX_PRODUCTS", 0),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		Debug: getEnv("DEBUG", "") != "",
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
