package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string `validate:"required"`
	MetricsAddr string
	MySQLDSN    string `validate:"required"`
	RedisAddr   string
	RedisDB     int `validate:"min=0"`
	RedisPass   string
	CacheTTL    time.Duration

	EmailBase    string `validate:"required,url"`
	EmailKey     string
	EmailFrom    string
	EmailRPS     int `validate:"min=1"`
	EmailTimeout time.Duration

	GuideBaseURL  string `validate:"required,url"`
	GuideLanguage string `validate:"omitempty,oneof=es en fr"`

	Workers       int `validate:"min=1,max=256"`
	Batch         int `validate:"min=1,max=1000"`
	PollInterval  time.Duration
	MinConfidence int `validate:"min=1,max=100"`
	// DeliveryWindow suppresses repeat guidebook emails per property and guest.
	DeliveryWindow     time.Duration
	DedupeReservations bool
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, seeds variables that are not already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/stayhook?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    seconds("CACHE_TTL_SECONDS", 300),

		EmailBase:    env("EMAIL_BASE_URL", "https://api.resend.com"),
		EmailKey:     env("EMAIL_API_KEY", ""),
		EmailFrom:    env("EMAIL_FROM", "Itineramio <guias@itineramio.com>"),
		EmailRPS:     atoi("EMAIL_RPS", 2),
		EmailTimeout: seconds("EMAIL_TIMEOUT_SECONDS", 15),

		GuideBaseURL:  env("GUIDE_BASE_URL", "https://www.itineramio.com"),
		GuideLanguage: env("GUIDE_LANGUAGE", "es"),

		Workers:            atoi("PROCESSOR_WORKERS", 4),
		Batch:              atoi("PROCESSOR_BATCH", 50),
		PollInterval:       seconds("PROCESSOR_POLL_SECONDS", 5),
		MinConfidence:      atoi("MIN_MATCH_CONFIDENCE", 60),
		DeliveryWindow:     time.Duration(atoi("DELIVERY_WINDOW_HOURS", 168)) * time.Hour,
		DedupeReservations: boolean("DEDUPE_RESERVATIONS", false),
	}
	if c.EmailKey == "" {
		log.Warn().Msg("EMAIL_API_KEY is empty; guidebook emails are disabled")
	}
	return c
}

var validate = validator.New()

// Validate reports every out-of-range setting at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, ", "))
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func seconds(k string, def int) time.Duration {
	return time.Duration(atoi(k, def)) * time.Second
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
