package config // package config loads application configuration from environment variables

import (
	"encoding/base64"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The struct is built once in main and passed by
// injection into every component that needs it; nothing reads the
// environment after startup.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	CryptKey       []byte // AES key for field encryption (CRYPT_KEY, base64)
	UploadDir      string // root folder for uploaded files
	AMQPURL        string // RabbitMQ connection string (empty disables publishing)
	TelegramToken  string // Telegram bot token (empty disables the consumer)
	TelegramChatID string // destination channel for content announcements
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present. Required variables are enforced
// by must() and missing values cause the program to exit with a fatal log
// message.
func Load() Config {
	_ = godotenv.Load()

	key, err := base64.StdEncoding.DecodeString(must("CRYPT_KEY"))
	if err != nil {
		log.Fatalf("CRYPT_KEY is not valid base64: %v", err)
	}

	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 15),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		CryptKey:       key,
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
