package cvault

import (
	"database/sql"
	"log/slog"
)

// NewStoreOptions define the options for creating a new vault store
type NewStoreOptions struct {
	EntryTableName     string
	ConfigTableName    string
	DB                 *sql.DB
	TitanKeyPath       string
	VaultPath          string // path of the vault database file, recorded at setup
	KdfConfig          *KdfConfig // nil = production defaults
	AutomigrateEnabled bool
	DebugEnabled       bool
	Logger             *slog.Logger
}
