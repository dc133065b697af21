package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	FetchMode        string
	ChromeBin        string
	RequestTimeout   time.Duration
	CloudflareBypass bool
	UserAgents       []string

	RateLimitMs int
	MaxRetries  int
	RetryBaseMs int
	RetryMaxMs  int

	FetchCacheTTL    time.Duration
	ResearchCacheTTL time.Duration
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	MaxConcurrency      int
	PipelineConcurrency int
	ComparableTarget    int

	TemplateID    string
	TemplatesFile string

	CSVOutputPath    string
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	LogLevel    string
	ListingURLs []string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		FetchMode:        strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin:        getEnv("CHROME_BIN", ""),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 30000)) * time.Millisecond,
		CloudflareBypass: getEnvBool("CLOUDFLARE_BYPASS", true),
		UserAgents:       getEnvList("USER_AGENTS", "|"),

		RateLimitMs: getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:  getEnvInt("MAX_RETRIES", 3),
		RetryBaseMs: getEnvInt("RETRY_BASE_MS", 1000),
		RetryMaxMs:  getEnvInt("RETRY_MAX_MS", 30000),

		FetchCacheTTL:    getEnvDuration("FETCH_CACHE_TTL", time.Hour),
		ResearchCacheTTL: getEnvDuration("RESEARCH_CACHE_TTL", 30*time.Minute),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),

		MaxConcurrency:      getEnvInt("MAX_CONCURRENCY", 3),
		PipelineConcurrency: getEnvInt("PIPELINE_CONCURRENCY", 2),
		ComparableTarget:    getEnvInt("COMPARABLE_TARGET", 20),

		TemplateID:    getEnv("TEMPLATE_ID", "default"),
		TemplatesFile: getEnv("TEMPLATES_FILE", ""),

		CSVOutputPath:    getEnv("CSV_OUTPUT_PATH", "./output/optimized_listings.csv"),
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "optimizer"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "optimizer123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", ""),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ListingURLs: getEnvList("LISTING_URLS", ","),
	}
}

// Validate checks that values are within usable ranges.
func (c *Config) Validate() error {
	if c.FetchMode != "http" && c.FetchMode != "browser" {
		return fmt.Errorf("FETCH_MODE must be http or browser, got %q", c.FetchMode)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1")
	}
	if c.RateLimitMs < 0 || c.RetryBaseMs < 0 || c.RetryMaxMs < 0 {
		return fmt.Errorf("rate limit and retry delays must not be negative")
	}
	if c.MaxConcurrency < 1 || c.PipelineConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY and PIPELINE_CONCURRENCY must be positive")
	}
	if c.ComparableTarget < 1 {
		return fmt.Errorf("COMPARABLE_TARGET must be positive")
	}
	return nil
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, sep string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
