package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// EnvFile reports whether a .env file was loaded.
	EnvFile bool
	LogMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SettingsTTL   time.Duration

	KafkaBrokers       []string
	NotificationsTopic string
	NotificationsGroup string

	ESAddress  string
	ESUser     string
	ESPassword string
	ESIndex    string
	ESInsecure bool

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	SMTPHost     string
	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	OpsAddr string

	SeedAssetsDir    string
	SeedPassword     string
	BcryptCost       int
	SeedIndexCourses bool
}

// Load reads .env when present and falls back to process environment.
func Load() *Config {
	envFile := godotenv.Load() == nil

	return &Config{
		EnvFile: envFile,
		LogMode: getEnv("LOG_MODE", "dev"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "lms"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		SettingsTTL:   time.Duration(getInt("SETTINGS_CACHE_SECONDS", 300)) * time.Second,

		KafkaBrokers:       splitList(getEnv("KAFKA_ADDRESS", "")),
		NotificationsTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "notifications"),
		NotificationsGroup: getEnv("KAFKA_NOTIFICATIONS_GROUP", "notifications-email-group"),

		ESAddress:  getEnv("ES", ""),
		ESUser:     getEnv("ES_USER", "elastic"),
		ESPassword: getEnv("PASS_ES", ""),
		ESIndex:    getEnv("ES_COURSES_INDEX", "courses"),
		ESInsecure: getBool("ES_INSECURE", false),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "lms-media"),
		MinioSecure:    getBool("MINIO_SECURE", false),

		SMTPHost:     getEnv("SMTP", ""),
		SMTPAddr:     getEnv("SMTP_ADDR", ""),
		SMTPUser:     getEnv("EMAIL", ""),
		SMTPPassword: getEnv("EMAILPASS", ""),
		SMTPFrom:     getEnv("EMAIL_FROM", getEnv("EMAIL", "")),

		OpsAddr: getEnv("OPS_ADDR", ":8081"),

		SeedAssetsDir:    getEnv("SEED_ASSETS_DIR", ""),
		SeedPassword:     getEnv("SEED_PASSWORD", "Passw0rd!"),
		BcryptCost:       getInt("BCRYPT_COST", 10),
		SeedIndexCourses: getBool("SEED_INDEX_COURSES", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

func getBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
