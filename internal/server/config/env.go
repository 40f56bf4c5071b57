package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// local .env file first when present. Unset variables leave the current
// value alone; malformed numeric or duration values are ignored the same
// way so a bad environment cannot zero out a default.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setEnvString(&config.Addr, "ADDRESS")
	setEnvString(&config.StoreBackend, "STORE_BACKEND")
	setEnvString(&config.DatabaseDSN, "DATABASE_DSN")
	setEnvString(&config.SpreadsheetID, "SPREADSHEET_ID")
	setEnvString(&config.Worksheet, "SHEETS_WORKSHEET")
	setEnvString(&config.CredentialsFile, "SHEETS_CREDENTIALS_FILE")
	setEnvString(&config.SMTPHost, "SMTP_HOST")
	setEnvInt(&config.SMTPPort, "SMTP_PORT")
	setEnvString(&config.SMTPUser, "SMTP_USER")
	setEnvString(&config.SMTPPassword, "SMTP_PASSWORD")
	setEnvString(&config.SMTPSender, "SMTP_SENDER")
	setEnvString(&config.SecretKey, "SECRET_KEY")
	setEnvDuration(&config.SessionTokenValidity, "SESSION_TOKEN_VALIDITY")
	setEnvInt(&config.MaxUploadsPerDay, "MAX_UPLOADS_PER_DAY")
}

func setEnvString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setEnvInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setEnvDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
