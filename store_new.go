package cvault

import (
	"errors"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewStore creates a new vault store over an existing *sql.DB
func NewStore(opts NewStoreOptions) (*storeImplementation, error) {
	if opts.EntryTableName == "" {
		return nil, errors.New("cvault store: entryTableName is required")
	}

	if opts.ConfigTableName == "" {
		return nil, errors.New("cvault store: configTableName is required")
	}

	if opts.DB == nil {
		return nil, errors.New("cvault store: DB is required")
	}

	if opts.TitanKeyPath == "" {
		return nil, errors.New("cvault store: titanKeyPath is required")
	}

	kdfConfig := DefaultKdfConfig()
	if opts.KdfConfig != nil {
		kdfConfig = *opts.KdfConfig
	}

	titanKeys, err := NewTitanKeyManager(opts.TitanKeyPath, kdfConfig)
	if err != nil {
		return nil, err
	}

	// Initialize GORM from the existing *sql.DB using glebarez/sqlite (pure Go)
	gormDB, err := gorm.Open(&sqlite.Dialector{
		Conn: opts.DB,
	}, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := &storeImplementation{
		entryTableName:     opts.EntryTableName,
		configTableName:    opts.ConfigTableName,
		automigrateEnabled: opts.AutomigrateEnabled,
		db:                 opts.DB,
		gormDB:             gormDB,
		titanKeys:          titanKeys,
		vaultPath:          opts.VaultPath,
		kdfConfig:          kdfConfig,
		debugEnabled:       opts.DebugEnabled,
		logger:             logger,
	}

	if store.automigrateEnabled {
		err := store.AutoMigrate()
		if err != nil {
			return nil, err
		}
	}

	return store, nil
}
