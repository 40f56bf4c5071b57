package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/bkkdisplay/confeditor/internal/flagx"
	"github.com/bkkdisplay/confeditor/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	Addr                 string         `json:"addr"`
	StoreBackend         string         `json:"store_backend"`
	DatabaseDSN          string         `json:"database_dsn"`
	SpreadsheetID        string         `json:"spreadsheet_id"`
	Worksheet            string         `json:"worksheet"`
	CredentialsFile      string         `json:"credentials_file"`
	SMTPHost             string         `json:"smtp_host"`
	SMTPPort             int            `json:"smtp_port"`
	SMTPUser             string         `json:"smtp_user"`
	SMTPPassword         string         `json:"smtp_password"`
	SMTPSender           string         `json:"smtp_sender"`
	SecretKey            string         `json:"secret_key"`
	SessionTokenValidity timex.Duration `json:"session_token_validity"`
	MaxUploadsPerDay     int            `json:"max_uploads_per_day"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics: a config file that is present
// but broken should stop the server, not be silently skipped.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.StoreBackend = c.StoreBackend
	config.DatabaseDSN = c.DatabaseDSN
	config.SpreadsheetID = c.SpreadsheetID
	config.Worksheet = c.Worksheet
	config.CredentialsFile = c.CredentialsFile
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.SMTPSender = c.SMTPSender
	config.SecretKey = c.SecretKey
	config.SessionTokenValidity = time.Duration(c.SessionTokenValidity.Duration)
	config.MaxUploadsPerDay = c.MaxUploadsPerDay
}
