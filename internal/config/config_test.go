package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"POCKETBOOK_LOGIN_PROVIDER", "POCKETBOOK_LOGIN_DATA", "POCKETBOOK_API_URL",
		"POCKETBOOK_TIMEOUT", "POCKETBOOK_BOOK_CONCURRENCY", "READWISE_TOKEN",
		"SYNC_SCHEDULE", "AUDIT_DIR", "DATABASE_PATH", "PORT",
	} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()

	assert.Equal(t, DefaultPocketbookAPIURL, cfg.Pocketbook.APIURL)
	assert.Equal(t, DefaultReadwiseAPIURL, cfg.Readwise.APIURL)
	assert.Equal(t, time.Duration(0), cfg.Pocketbook.Timeout)
	assert.Equal(t, 0, cfg.Pocketbook.BookConcurrency)
	assert.Equal(t, "0 */6 * * *", cfg.Sync.Schedule)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Empty(t, cfg.Audit.Dir)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("POCKETBOOK_LOGIN_PROVIDER", "pocketbook")
	t.Setenv("POCKETBOOK_LOGIN_DATA", "username=me%40example.com&password=secret")
	t.Setenv("POCKETBOOK_TIMEOUT", "45s")
	t.Setenv("POCKETBOOK_NOTE_CONCURRENCY", "8")
	t.Setenv("READWISE_TOKEN", "rw-token")
	t.Setenv("SYNC_SCHEDULE", "*/30 * * * *")
	t.Setenv("AUDIT_DIR", "/tmp/audit")

	cfg := NewConfig()

	assert.Equal(t, "pocketbook", cfg.Pocketbook.LoginProvider)
	assert.Equal(t, "username=me%40example.com&password=secret", cfg.Pocketbook.LoginData)
	assert.Equal(t, 45*time.Second, cfg.Pocketbook.Timeout)
	assert.Equal(t, 8, cfg.Pocketbook.NoteConcurrency)
	assert.Equal(t, "rw-token", cfg.Readwise.Token)
	assert.Equal(t, "*/30 * * * *", cfg.Sync.Schedule)
	assert.Equal(t, "/tmp/audit", cfg.Audit.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Pocketbook: Pocketbook{LoginProvider: "pocketbook", LoginData: "a=b"},
			Readwise:   Readwise{Token: "token"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		missing string
	}{
		{"missing provider", func(c *Config) { c.Pocketbook.LoginProvider = "" }, "POCKETBOOK_LOGIN_PROVIDER"},
		{"missing login data", func(c *Config) { c.Pocketbook.LoginData = "" }, "POCKETBOOK_LOGIN_DATA"},
		{"missing readwise token", func(c *Config) { c.Readwise.Token = "" }, "READWISE_TOKEN"},
		{"negative concurrency", func(c *Config) { c.Pocketbook.BookConcurrency = -1 }, "concurrency"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}
