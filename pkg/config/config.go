package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	GRPCPort int
	HTTPPort int

	// DatabaseURL selects the Postgres catalog; CatalogFile seeds the
	// in-memory one when it is empty.
	DatabaseURL string
	CatalogFile string

	KafkaBrokers string
	KafkaTopic   string

	ViaCEPBaseURL    string
	AddressLookupRPS float64
	AddressCacheSize int
	AddressCacheTTL  time.Duration

	MaxSessions        int
	// MaxInstallments caps the credit-card plan accepted at payment. Quotes
	// always offer 1 to 10 installments.
	MaxInstallments    int
	BuyNowIncludesCart bool
}

// Load reads the environment, after loading a .env file from the working
// directory if one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 8081),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		CatalogFile: getEnv("CATALOG_FILE", "configs/catalog.yaml"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "payment.simulated"),

		ViaCEPBaseURL:    getEnv("VIACEP_BASE_URL", "https://viacep.com.br"),
		AddressLookupRPS: getEnvFloat("ADDRESS_LOOKUP_RPS", 5),
		AddressCacheSize: getEnvInt("ADDRESS_CACHE_SIZE", 1024),
		AddressCacheTTL:  getEnvDuration("ADDRESS_CACHE_TTL", time.Hour),

		MaxSessions:        getEnvInt("MAX_SESSIONS", 10000),
		MaxInstallments:    getEnvInt("MAX_INSTALLMENTS", 10),
		BuyNowIncludesCart: getEnvBool("BUY_NOW_INCLUDES_CART", true),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvFloat(key string, def float64) float64 {
	n, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
