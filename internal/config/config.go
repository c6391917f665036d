package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// カートの保存先
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// 価格の参照先
const (
	CatalogHTTP     = "http"
	CatalogPostgres = "postgres"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	DatabaseURL      string // あれば POSTGRES_* より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string // JWT署名シークレット

	CartStore     string // postgres/redis/memory
	CatalogSource string // http/postgres
	CatalogURL    string // 商品サービスのURL

	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal

	PriceLookupTimeout     time.Duration
	PriceLookupConcurrency int
	CartMaxRetries         int
}

// Loadは環境変数（.envがあればそれも）から設定を読む
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	pgPort, err := intOr("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := intOr("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	taxRate, err := decimalOr("TAX_RATE", "0.03")
	if err != nil {
		return Config{}, err
	}
	discountRate, err := decimalOr("DISCOUNT_RATE", "0")
	if err != nil {
		return Config{}, err
	}
	timeout, err := durationOr("PRICE_LOOKUP_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	concurrency, err := intOr("PRICE_LOOKUP_CONCURRENCY", 10)
	if err != nil {
		return Config{}, err
	}
	retries, err := intOr("CART_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		JWTSecret: os.Getenv("JWT_SECRET"),

		CartStore:     getenv("CART_STORE", StorePostgres),
		CatalogSource: getenv("CATALOG_SOURCE", CatalogHTTP),
		CatalogURL:    getenv("CATALOG_URL", "http://product:7001"),

		TaxRate:      taxRate,
		DiscountRate: discountRate,

		PriceLookupTimeout:     timeout,
		PriceLookupConcurrency: concurrency,
		CartMaxRetries:         retries,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.CartStore {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("CART_STORE must be one of postgres, redis, memory: %q", c.CartStore)
	}
	switch c.CatalogSource {
	case CatalogHTTP:
		if c.CatalogURL == "" {
			return fmt.Errorf("CATALOG_URL is required")
		}
	case CatalogPostgres:
	default:
		return fmt.Errorf("CATALOG_SOURCE must be one of http, postgres: %q", c.CatalogSource)
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be between 0 and 1")
	}
	if c.DiscountRate.IsNegative() || c.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("DISCOUNT_RATE must be between 0 and 1")
	}
	if c.PriceLookupTimeout <= 0 {
		return fmt.Errorf("PRICE_LOOKUP_TIMEOUT must be positive")
	}
	if c.PriceLookupConcurrency <= 0 {
		return fmt.Errorf("PRICE_LOOKUP_CONCURRENCY must be positive")
	}
	if c.CartMaxRetries < 0 {
		return fmt.Errorf("CART_MAX_RETRIES must not be negative")
	}
	return nil
}

// ENV_FILE か ./.env を読む。無いのはエラーにしない。
func loadDotEnv() error {
	path := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func decimalOr(key string, def string) (decimal.Decimal, error) {
	v := getenv(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	return d, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
