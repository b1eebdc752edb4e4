package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	DiscordToken   string
	DiscordGuildID string
	AdminRoleID    string

	DatabaseURL       string
	PortalDatabaseURL string

	// Overtime resolution
	LookbackDays     int
	ThresholdMinutes int
	HolidaysFile     string

	// SMTP for the HR copy of approved requests
	EmailHost      string
	EmailPort      int
	EmailUser      string
	EmailPassword  string
	EmailRecipient string
	EmailSSL       bool

	// Operator alerts
	TelegramToken     string
	OpsTelegramChatID int64

	HTTPAddr string
	LogLevel string
}

var instance *BotConfig
var once sync.Once

func GetBotConfig() *BotConfig {
	once.Do(func() {
		LoadDotEnv()

		instance = Load()

		if instance.DiscordToken == "" {
			logrus.Fatal("could not get discord token")
		}

		if instance.DatabaseURL == "" {
			logrus.Fatal("could not get db url")
		}
	})

	return instance
}

// LoadDotEnv merges a local .env file into the process environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded, using process environment: %s", err.Error())
	}
}

// Load reads the configuration from the environment without validating it.
func Load() *BotConfig {
	cfg := &BotConfig{
		DiscordToken:   getEnv("DISCORD_TOKEN", ""),
		DiscordGuildID: getEnv("DISCORD_GUILD_ID", ""),
		AdminRoleID:    getEnv("ADMIN_ROLE_ID", ""),

		DatabaseURL:       getEnv("DATABASE_URL", "bot.db"),
		PortalDatabaseURL: getEnv("PORTAL_DATABASE_URL", ""),

		LookbackDays:     int(getEnvAsInt("OVERTIME_LOOKBACK_DAYS", 7)),
		ThresholdMinutes: int(getEnvAsInt("OVERTIME_DAILY_THRESHOLD_MINUTES", 480)),
		HolidaysFile:     getEnv("HOLIDAYS_FILE", ""),

		EmailHost:      getEnv("EMAIL_HOST", ""),
		EmailPort:      int(getEnvAsInt("EMAIL_PORT", 465)),
		EmailUser:      getEnv("EMAIL_USER", ""),
		EmailPassword:  getEnv("EMAIL_PASSWORD", ""),
		EmailRecipient: getEnv("EMAIL_RECIPIENT", ""),
		EmailSSL:       getEnvAsBool("EMAIL_SSL", true),

		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		OpsTelegramChatID: getEnvAsInt("OPS_TELEGRAM_CHAT_ID", 0),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// The corporate directory defaults to the bot database, which is handy for local runs.
	if cfg.PortalDatabaseURL == "" {
		cfg.PortalDatabaseURL = cfg.DatabaseURL
	}

	if cfg.LookbackDays <= 0 {
		logrus.Warnf("invalid OVERTIME_LOOKBACK_DAYS %d, falling back to 7", cfg.LookbackDays)
		cfg.LookbackDays = 7
	}

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
