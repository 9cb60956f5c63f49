package cvault

import (
	"database/sql"
	"log/slog"

	"gorm.io/gorm"
)

// storeImplementation is the embedded vault store: sealed entries and
// config rows in two parallel tables of one SQLite database.
type storeImplementation struct {
	entryTableName     string
	configTableName    string
	db                 *sql.DB
	gormDB             *gorm.DB
	titanKeys          *TitanKeyManager
	vaultPath          string
	kdfConfig          KdfConfig
	automigrateEnabled bool
	debugEnabled       bool
	logger             *slog.Logger
}

var _ StoreInterface = (*storeImplementation)(nil) // verify it extends the interface

// AutoMigrate creates the entry and config tables and switches the
// database to WAL mode
func (store *storeImplementation) AutoMigrate() error {
	statements := []string{
		store.sqlCreateEntryTable(),
		store.sqlCreateConfigTable(),
		"PRAGMA journal_mode=WAL;",
	}

	for _, statement := range statements {
		if store.debugEnabled {
			store.logger.Debug("automigrate", "sql", statement)
		}

		if _, err := store.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

// EnableDebug - enables the debug option
func (store *storeImplementation) EnableDebug(debug bool) {
	store.debugEnabled = debug
}

// GetEntryTableName returns the entry table name
func (store *storeImplementation) GetEntryTableName() string {
	return store.entryTableName
}

// GetConfigTableName returns the config table name
func (store *storeImplementation) GetConfigTableName() string {
	return store.configTableName
}

// TitanKeys returns the titan key manager bound to this store
func (store *storeImplementation) TitanKeys() *TitanKeyManager {
	return store.titanKeys
}

func (store *storeImplementation) sqlCreateEntryTable() string {
	return "CREATE TABLE IF NOT EXISTS " + store.entryTableName + " (" +
		COLUMN_UUID + " CHAR(36) PRIMARY KEY NOT NULL," +
		COLUMN_SERVICE_BLOB + " BLOB NOT NULL," +
		COLUMN_USERNAME_BLOB + " BLOB NOT NULL," +
		COLUMN_PASSWORD_BLOB + " BLOB NOT NULL," +
		COLUMN_NOTES_BLOB + " BLOB," +
		COLUMN_CREATED_AT + " INTEGER NOT NULL," +
		COLUMN_UPDATED_AT + " INTEGER NOT NULL" +
		");"
}

func (store *storeImplementation) sqlCreateConfigTable() string {
	return "CREATE TABLE IF NOT EXISTS " + store.configTableName + " (" +
		COLUMN_CONFIG_KEY + " VARCHAR(64) PRIMARY KEY NOT NULL," +
		COLUMN_CONFIG_VALUE + " BLOB NOT NULL" +
		");"
}
