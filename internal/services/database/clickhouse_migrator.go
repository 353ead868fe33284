package database

import (
	"gorm.io/gorm"
)

// runClickHouseMigrations creates the tables directly without GORM's
// AutoMigrate, which has issues with the ClickHouse driver.
func runClickHouseMigrations(db *gorm.DB) error {
	credentialsSQL := `
	CREATE TABLE IF NOT EXISTS credential_records (
		id UInt64,
		account_id String NOT NULL,
		channel_id String NOT NULL DEFAULT '',
		refresh_token String NOT NULL,
		access_token Nullable(String),
		token_expiry Nullable(DateTime),
		granted_scopes Nullable(String),
		created_at DateTime NOT NULL DEFAULT now(),
		updated_at DateTime NOT NULL DEFAULT now()
	) ENGINE = MergeTree()
	ORDER BY id
	SETTINGS index_granularity = 8192;
	`

	if err := db.Exec(credentialsSQL).Error; err != nil {
		return err
	}

	callLogSQL := `
	CREATE TABLE IF NOT EXISTS api_call_log (
		id UInt64,
		url String NOT NULL,
		host String NOT NULL DEFAULT '',
		path String NOT NULL DEFAULT '',
		status String NOT NULL DEFAULT '',
		estimated_units Int32 NOT NULL DEFAULT 0,
		created_at DateTime NOT NULL DEFAULT now()
	) ENGINE = MergeTree()
	ORDER BY id
	SETTINGS index_granularity = 8192;
	`

	if err := db.Exec(callLogSQL).Error; err != nil {
		return err
	}

	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_credential_records_account_id ON credential_records (account_id) TYPE minmax GRANULARITY 3`,
		`CREATE INDEX IF NOT EXISTS idx_api_call_log_host ON api_call_log (host) TYPE minmax GRANULARITY 3`,
		`CREATE INDEX IF NOT EXISTS idx_api_call_log_created_at ON api_call_log (created_at) TYPE minmax GRANULARITY 3`,
	}

	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			// Indexes might already exist, continue
			continue
		}
	}

	return nil
}
