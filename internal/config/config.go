package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port     string
	DBDriver string // sqlite | pgx
	DBDSN    string
	LogFile  string
	LogLevel string

	JWTSecret     string
	JWTTTL        time.Duration
	PaymentSecret string

	AdminEmail    string
	AdminPassword string

	// GuestAdHocProducts lets guest checkout create catalog rows for items
	// the catalog does not know, priced from the request.
	GuestAdHocProducts bool

	CORSOrigins string
	RelayBuffer int

	KafkaBrokers string
	KafkaTopic   string

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	AMQPURL      string
	AMQPExchange string

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
	AdminNotifyEmail string

	// Warnings collects problems found while loading, logged once the
	// logger exists.
	Warnings []string
}

func Load() Config {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	var warnings []string
	getSecret := func(key, def string) string {
		v, err := readSecret(key, def)
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		return v
	}

	cfg := Config{
		Port:     getEnv("PORT", "5000"),
		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "glowcandles.db"),
		LogFile:  getEnv("LOG_FILE", "./glowcandles.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:     getSecret("JWT_SECRET", "dev-jwt-secret-change-me"),
		JWTTTL:        getDuration("JWT_TTL", 7*24*time.Hour),
		PaymentSecret: getSecret("RAZORPAY_KEY_SECRET", "dev-razorpay-secret"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@glowcandles.in"),
		AdminPassword: getSecret("ADMIN_PASSWORD", "Admin@123"),

		GuestAdHocProducts: getBool("GUEST_ADHOC_PRODUCTS", true),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		RelayBuffer: getInt("RELAY_BUFFER", 256),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "glowcandles.orders"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getSecret("REDIS_PASSWORD", ""),
		RedisChannel:  getEnv("REDIS_CHANNEL", "glowcandles:admin"),

		AMQPURL:      getSecret("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "glowcandles.admin"),

		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getInt("SMTP_PORT", 465),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getSecret("SMTP_PASSWORD", ""),
		SMTPFrom:         getEnv("SMTP_FROM", "orders@glowcandles.in"),
		AdminNotifyEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),
	}
	cfg.Warnings = warnings
	return cfg
}

// Fields describes the effective configuration without secrets.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("port", c.Port),
		zap.String("db_driver", c.DBDriver),
		zap.String("db_dsn", redactDSN(c.DBDSN)),
		zap.String("log_file", c.LogFile),
		zap.Bool("guest_adhoc_products", c.GuestAdHocProducts),
		zap.Bool("kafka", c.KafkaBrokers != ""),
		zap.Bool("redis", c.RedisAddr != ""),
		zap.Bool("amqp", c.AMQPURL != ""),
		zap.Bool("smtp", c.SMTPHost != "" && c.AdminNotifyEmail != ""),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// readSecret prefers the contents of KEY_FILE over KEY. An unreadable file
// falls back to KEY and reports why.
func readSecret(key, def string) (string, error) {
	if path := os.Getenv(key + "_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(b)), nil
		}
		return getEnv(key, def), fmt.Errorf("could not read %s_FILE: %w", key, err)
	}
	return getEnv(key, def), nil
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return d
}

func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		if scheme := strings.Index(dsn, "://"); scheme >= 0 && scheme < at {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}
