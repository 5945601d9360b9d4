package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"billgen/internal/logger"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

var AppEnv Config

type Config struct {
	Port        string
	GinMode     string
	MongoURI    string
	DBName      string
	StoreDriver string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RequestTimeout       time.Duration
	Timezone             string
	EnforceBillOwnership bool
	ExposeInternalErrors bool

	AMQPURL      string
	AMQPExchange string

	LogLevel  string
	LogFormat string
	LogOutput string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment without
// touching .env files.
func FromEnv() Config {
	return Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", ""),
		MongoURI:    getEnvOrDefault("MONGO_URI", ""),
		DBName:      getEnvOrDefault("DB_NAME", "billgen"),
		StoreDriver: strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverMongo)),

		JWTSecret:  getEnvOrDefault("JWT_SECRET", ""),
		TokenTTL:   getDurationEnv("TOKEN_TTL_DAYS", 30, 24*time.Hour),
		BcryptCost: getIntEnv("BCRYPT_COST", 10),

		RequestTimeout:       getDurationEnv("REQUEST_TIMEOUT_SECONDS", 5, time.Second),
		Timezone:             getEnvOrDefault("TIMEZONE", ""),
		EnforceBillOwnership: getBoolEnv("ENFORCE_BILL_OWNERSHIP", false),
		ExposeInternalErrors: getBoolEnv("EXPOSE_INTERNAL_ERRORS", true),

		AMQPURL:      getEnvOrDefault("AMQP_URL", ""),
		AMQPExchange: getEnvOrDefault("AMQP_EXCHANGE", "billgen.events"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "console"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stdout"),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be mongo or memory"))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, errors.New("TIMEZONE is not a known location"))
		}
	}
	return errors.Join(errs...)
}

// Location resolves TIMEZONE, falling back to the host's local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) LoggerConfig() logger.LogConfig {
	cfg := logger.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	cfg.Output = c.LogOutput
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
