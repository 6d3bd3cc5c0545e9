package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	HTTPPort    string
	MetricsPort string
	DatabaseURL string
	RedisURL    string

	Logger    LoggerConfig
	Source    SourceConfig
	Cache     CacheConfig
	Schedule  ScheduleConfig
	Scheduler bool
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// SourceConfig descreve o site externo e a política de acesso a ele.
type SourceConfig struct {
	BaseURL     string
	ProxyURL    string
	LogoAPIKey  string
	LogoBaseURL string

	MaxAttempts int
	Timeout     time.Duration
	FetchDelay  time.Duration
	RetryDelay  time.Duration
	PageDelay   time.Duration
	SpecDelay   time.Duration
	BrandDelay  time.Duration
	MaxPages    int
	SampleSize  int
}

// CacheConfig carries the per-resource TTLs. Routing by key prefix is fixed
// in the cache package; only the durations are tunable.
type CacheConfig struct {
	BrandsTTL   time.Duration
	ProductsTTL time.Duration
	SpecsTTL    time.Duration
	DefaultTTL  time.Duration
}

// ScheduleConfig holds cron expressions for the three background jobs.
type ScheduleConfig struct {
	Brands   string
	Products string
	Specs    string
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", "development")
	return &Config{
		AppEnv:      appEnv,
		HTTPPort:    getEnv("HTTP_PORT", "3000"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Logger: LoggerConfig{
			Level:             getEnv("LOG_LEVEL", "info"),
			Encoding:          getEnv("LOG_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOG_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOG_DISABLE_STACKTRACE", true),
		},
		Source: SourceConfig{
			BaseURL:     strings.TrimRight(getEnv("BASE_URL", "https://www.gsmarena.com"), "/"),
			ProxyURL:    os.Getenv("PROXY_URL"),
			LogoAPIKey:  os.Getenv("LOGO_API_KEY"),
			LogoBaseURL: strings.TrimRight(getEnv("LOGO_BASE_URL", "https://logo.clearbit.com"), "/"),
			MaxAttempts: getEnvInt("FETCH_RETRIES", 3),
			Timeout:     getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
			FetchDelay:  getEnvDuration("FETCH_DELAY", 2*time.Second),
			RetryDelay:  getEnvDuration("FETCH_RETRY_DELAY", 5*time.Second),
			PageDelay:   getEnvDuration("PAGE_DELAY", 3*time.Second),
			SpecDelay:   getEnvDuration("SPEC_DELAY", 2*time.Second),
			BrandDelay:  getEnvDuration("BRAND_DELAY", 5*time.Second),
			MaxPages:    getEnvInt("MAX_PAGES", 100),
			SampleSize:  getEnvInt("SPEC_SAMPLE_SIZE", 10),
		},
		// TTLs em segundos, como no .env legado
		Cache: CacheConfig{
			BrandsTTL:   getEnvSeconds("BRANDS_CACHE_TTL", 24*time.Hour),
			ProductsTTL: getEnvSeconds("PHONES_CACHE_TTL", 12*time.Hour),
			SpecsTTL:    getEnvSeconds("SPECS_CACHE_TTL", 6*time.Hour),
			DefaultTTL:  getEnvSeconds("DEFAULT_CACHE_TTL", time.Hour),
		},
		Schedule: ScheduleConfig{
			Brands:   getEnv("BRANDS_UPDATE_SCHEDULE", "0 0 * * *"),
			Products: getEnv("PHONES_UPDATE_SCHEDULE", "0 2 * * *"),
			Specs:    getEnv("RANDOM_PHONES_UPDATE", "0 */4 * * *"),
		},
		Scheduler: getEnvBool("ENABLE_SCHEDULER", appEnv == "production"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return d
}

func getEnvBool(k string, d bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil && v >= 0 {
		return v
	}
	return d
}

func getEnvSeconds(k string, d time.Duration) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return d
}
