package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	OpenRouterKey     string
	OpenRouterModel   string
	OpenRouterBaseURL string
	OpenRouterTimeout time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	TelegramBotToken string
	WhatsAppAPIURL   string
	WhatsAppToken    string

	// How many reminder sends may run at once.
	DispatchConcurrency int

	Debug bool
}

func Load() *Config {

	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		port = 5432 // fallback
	}

	model := os.Getenv("OPENROUTER_MODEL")
	if model == "" {
		model = "mistralai/mistral-7b-instruct"
	}

	baseURL := os.Getenv("OPENROUTER_URL")
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	timeout, err := strconv.Atoi(os.Getenv("OPENROUTER_TIMEOUT_SECONDS"))
	if err != nil || timeout <= 0 {
		timeout = 60
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	concurrency, err := strconv.Atoi(os.Getenv("DISPATCH_CONCURRENCY"))
	if err != nil || concurrency <= 0 {
		concurrency = 8
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     port,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   model,
		OpenRouterBaseURL: baseURL,
		OpenRouterTimeout: time.Duration(timeout) * time.Second,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WhatsAppAPIURL:   os.Getenv("WHATSAPP_API_URL"),
		WhatsAppToken:    os.Getenv("WHATSAPP_TOKEN"),

		DispatchConcurrency: concurrency,

		Debug: os.Getenv("DEBUG") == "true",
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
