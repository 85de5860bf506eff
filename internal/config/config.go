package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrConfiguration indicates a required setting is missing.
var ErrConfiguration = errors.New("configuration error")

type (
	Config struct {
		HTTP
		Pocketbook
		Readwise
		Sync
		Audit
		Database
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Pocketbook struct {
		LoginProvider string
		LoginData     string // URL-encoded "key=value&key=value"
		APIURL        string
		Timeout       time.Duration // 0 disables the per-request timeout

		// Concurrency caps; 0 means unbounded.
		BookConcurrency int
		NoteConcurrency int
	}
	Readwise struct {
		Token  string
		APIURL string
	}
	Sync struct {
		Schedule   string // Cron format: "0 */6 * * *" = every 6 hours
		RunOnStart bool
	}
	Audit struct {
		Dir string // Empty disables batch snapshots
	}
	Database struct {
		Path string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("pocketbook_api_url", DefaultPocketbookAPIURL)
	v.SetDefault("pocketbook_timeout", "0s")
	v.SetDefault("pocketbook_book_concurrency", 0)
	v.SetDefault("pocketbook_note_concurrency", 0)

	v.SetDefault("readwise_api_url", DefaultReadwiseAPIURL)

	v.SetDefault("sync_schedule", "0 */6 * * *") // Every 6 hours
	v.SetDefault("sync_run_on_start", false)
	v.SetDefault("audit_dir", "")
	v.SetDefault("database_path", DefaultDatabasePath)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Pocketbook: Pocketbook{
			LoginProvider:   v.GetString("POCKETBOOK_LOGIN_PROVIDER"),
			LoginData:       v.GetString("POCKETBOOK_LOGIN_DATA"),
			APIURL:          v.GetString("POCKETBOOK_API_URL"),
			Timeout:         v.GetDuration("POCKETBOOK_TIMEOUT"),
			BookConcurrency: v.GetInt("POCKETBOOK_BOOK_CONCURRENCY"),
			NoteConcurrency: v.GetInt("POCKETBOOK_NOTE_CONCURRENCY"),
		},
		Readwise: Readwise{
			Token:  v.GetString("READWISE_TOKEN"),
			APIURL: v.GetString("READWISE_API_URL"),
		},
		Sync: Sync{
			Schedule:   v.GetString("SYNC_SCHEDULE"),
			RunOnStart: v.GetBool("SYNC_RUN_ON_START"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// Validate checks the settings every sync needs, before any network call.
func (c *Config) Validate() error {
	var missing []string
	if c.Pocketbook.LoginProvider == "" {
		missing = append(missing, "POCKETBOOK_LOGIN_PROVIDER")
	}
	if c.Pocketbook.LoginData == "" {
		missing = append(missing, "POCKETBOOK_LOGIN_DATA")
	}
	if c.Readwise.Token == "" {
		missing = append(missing, "READWISE_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrConfiguration, missing)
	}
	if c.Pocketbook.BookConcurrency < 0 || c.Pocketbook.NoteConcurrency < 0 {
		return fmt.Errorf("%w: concurrency limits must not be negative", ErrConfiguration)
	}
	return nil
}
