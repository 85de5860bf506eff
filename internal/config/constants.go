package config

const (
	// DefaultDatabasePath is where the serve command keeps its sync history
	DefaultDatabasePath = "./pocketbook-sync.db"

	DefaultPocketbookAPIURL = "https://cloud.pocketbook.digital/api/v1.0/"
	DefaultReadwiseAPIURL   = "https://readwise.io/api/v2/"
)
