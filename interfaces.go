package cvault

import "context"

// StoreInterface defines the vault store contract: sealed entries,
// config-keyed parameters, and the setup/unlock lifecycle
type StoreInterface interface {
	AutoMigrate() error
	EnableDebug(debug bool)

	GetEntryTableName() string
	GetConfigTableName() string
	TitanKeys() *TitanKeyManager

	// Entries (sealed blobs only; sealing happens in the envelope layer)
	EntryCreate(ctx context.Context, entry *VaultEntry) error
	EntryFindByUUID(ctx context.Context, entryUUID string) (*VaultEntry, error)
	EntryList(ctx context.Context) ([]*VaultEntry, error)
	EntryCount(ctx context.Context) (int64, error)
	EntryUpdate(ctx context.Context, entryUUID string, entry *VaultEntry) error
	EntryDeleteByUUID(ctx context.Context, entryUUID string) error
	EntryDeleteAll(ctx context.Context) error

	// Config rows (verified writes)
	ConfigSet(ctx context.Context, key string, value []byte) error
	ConfigGet(ctx context.Context, key string) ([]byte, error)
	ConfigDelete(ctx context.Context, key string) error
	ConfigDeleteAll(ctx context.Context) error

	// Typed config helpers
	Salt(ctx context.Context) ([]byte, error)
	SetSalt(ctx context.Context, salt []byte) error
	VerificationTag(ctx context.Context) ([]byte, error)
	SetVerificationTag(ctx context.Context, tag []byte) error
	KdfConfigFromStore(ctx context.Context) (KdfConfig, error)
	SetKdfConfig(ctx context.Context, cfg KdfConfig) error
	SchemaVersion(ctx context.Context) (uint32, error)
	SetSchemaVersion(ctx context.Context, version uint32) error
	TitanKeyPath(ctx context.Context) (string, error)
	SetTitanKeyPath(ctx context.Context, path string) error
	VaultPath(ctx context.Context) (string, error)
	SetVaultPath(ctx context.Context, path string) error

	// Key lifecycle
	VaultSetup(ctx context.Context, passphrase []byte) error
	VaultUnlock(ctx context.Context, passphrase []byte) ([]byte, error)
	LockMasterKey(masterKey []byte) error
	VaultReset(ctx context.Context) error
}
