package cvault

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigSet writes a config value through the verified-write protocol:
// after the upsert the value is read back and compared in constant
// time; any mismatch or short read fails the update.
func (store *storeImplementation) ConfigSet(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if key == "" {
		return fmt.Errorf("%w: config key", ErrNilInput)
	}

	if len(value) == 0 {
		return fmt.Errorf("%w: config value", ErrNilInput)
	}

	row := &gormVaultConfig{Key: key, Value: value}

	err := store.gormDB.WithContext(ctx).
		Table(store.configTableName).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: COLUMN_CONFIG_KEY}},
			DoUpdates: clause.AssignmentColumns([]string{COLUMN_CONFIG_VALUE}),
		}).
		Create(row).Error

	if err != nil {
		return err
	}

	readBack, err := store.ConfigGet(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: read back: %v", ErrVerifyWrite, err)
	}

	if len(readBack) != len(value) || !ConstantTimeEqual(readBack, value) {
		return fmt.Errorf("%w: %s", ErrVerifyWrite, key)
	}

	return nil
}

// ConfigGet returns the value stored under key, or ErrNotFound
func (store *storeImplementation) ConfigGet(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if key == "" {
		return nil, fmt.Errorf("%w: config key", ErrNilInput)
	}

	var row gormVaultConfig

	err := store.gormDB.WithContext(ctx).
		Table(store.configTableName).
		Where(COLUMN_CONFIG_KEY+" = ?", key).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: config %s", ErrNotFound, key)
	}

	if err != nil {
		return nil, err
	}

	if len(row.Value) == 0 {
		return nil, fmt.Errorf("%w: config %s empty", ErrNotFound, key)
	}

	return row.Value, nil
}

// ConfigDelete removes a config row and verifies the key is absent
// afterwards. Deleting a missing key succeeds.
func (store *storeImplementation) ConfigDelete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if key == "" {
		return fmt.Errorf("%w: config key", ErrNilInput)
	}

	err := store.gormDB.WithContext(ctx).
		Table(store.configTableName).
		Where(COLUMN_CONFIG_KEY+" = ?", key).
		Delete(&gormVaultConfig{}).Error

	if err != nil {
		return err
	}

	_, err = store.ConfigGet(ctx, key)

	if errors.Is(err, ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %s still present", ErrVerifyWrite, key)
}

// ConfigDeleteAll removes every config row
func (store *storeImplementation) ConfigDeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return store.gormDB.WithContext(ctx).
		Table(store.configTableName).
		Where("1 = 1").
		Delete(&gormVaultConfig{}).Error
}

// == TYPED HELPERS ==========================================================

// Salt returns the per-vault 32-byte KDF salt
func (store *storeImplementation) Salt(ctx context.Context) ([]byte, error) {
	salt, err := store.ConfigGet(ctx, CONFIG_KEY_SALT)
	if err != nil {
		return nil, err
	}

	if len(salt) != SALT_LENGTH {
		return nil, fmt.Errorf("%w: stored salt length %d", ErrInvalidSize, len(salt))
	}

	return salt, nil
}

// SetSalt stores the per-vault salt. The salt is written once at setup
// and immutable thereafter; callers must not rotate it outside an
// explicit passphrase-change flow.
func (store *storeImplementation) SetSalt(ctx context.Context, salt []byte) error {
	if len(salt) != SALT_LENGTH {
		return fmt.Errorf("%w: salt length %d", ErrInvalidSize, len(salt))
	}

	return store.ConfigSet(ctx, CONFIG_KEY_SALT, salt)
}

// VerificationTag returns the stored 32-byte verification tag
func (store *storeImplementation) VerificationTag(ctx context.Context) ([]byte, error) {
	tag, err := store.ConfigGet(ctx, CONFIG_KEY_VERIFICATION_KEY)
	if err != nil {
		return nil, err
	}

	if len(tag) != VERIFICATION_TAG_LENGTH {
		return nil, fmt.Errorf("%w: stored tag length %d", ErrInvalidSize, len(tag))
	}

	return tag, nil
}

// SetVerificationTag stores the verification tag
func (store *storeImplementation) SetVerificationTag(ctx context.Context, tag []byte) error {
	if len(tag) != VERIFICATION_TAG_LENGTH {
		return fmt.Errorf("%w: tag length %d", ErrInvalidSize, len(tag))
	}

	return store.ConfigSet(ctx, CONFIG_KEY_VERIFICATION_KEY, tag)
}

// KdfConfigFromStore assembles the KDF cost parameters from config
// rows. Missing rows fall back to the production defaults.
func (store *storeImplementation) KdfConfigFromStore(ctx context.Context) (KdfConfig, error) {
	cfg := DefaultKdfConfig()

	iterations, err := store.configGetUint32(ctx, CONFIG_KEY_KDF_ITERATIONS)
	if err == nil {
		cfg.Iterations = iterations
	} else if !errors.Is(err, ErrNotFound) {
		return KdfConfig{}, err
	}

	memory, err := store.configGetUint32(ctx, CONFIG_KEY_KDF_MEMORY)
	if err == nil {
		cfg.Memory = memory
	} else if !errors.Is(err, ErrNotFound) {
		return KdfConfig{}, err
	}

	parallelism, err := store.configGetUint32(ctx, CONFIG_KEY_KDF_PARALLELISM)
	if err == nil {
		cfg.Parallelism = uint8(parallelism)
	} else if !errors.Is(err, ErrNotFound) {
		return KdfConfig{}, err
	}

	return cfg, nil
}

// SetKdfConfig stores the KDF cost parameters as LE u32 rows
func (store *storeImplementation) SetKdfConfig(ctx context.Context, cfg KdfConfig) error {
	if err := store.configSetUint32(ctx, CONFIG_KEY_KDF_ITERATIONS, cfg.Iterations); err != nil {
		return err
	}

	if err := store.configSetUint32(ctx, CONFIG_KEY_KDF_MEMORY, cfg.Memory); err != nil {
		return err
	}

	return store.configSetUint32(ctx, CONFIG_KEY_KDF_PARALLELISM, uint32(cfg.Parallelism))
}

// SchemaVersion returns the stored config schema version
func (store *storeImplementation) SchemaVersion(ctx context.Context) (uint32, error) {
	return store.configGetUint32(ctx, CONFIG_KEY_SCHEMA_VERSION)
}

// SetSchemaVersion stores the config schema version
func (store *storeImplementation) SetSchemaVersion(ctx context.Context, version uint32) error {
	return store.configSetUint32(ctx, CONFIG_KEY_SCHEMA_VERSION, version)
}

// TitanKeyPath returns the stored titan blob path
func (store *storeImplementation) TitanKeyPath(ctx context.Context) (string, error) {
	value, err := store.ConfigGet(ctx, CONFIG_KEY_TITAN_KEY_PATH)
	if err != nil {
		return "", err
	}

	return string(value), nil
}

// SetTitanKeyPath stores the titan blob path
func (store *storeImplementation) SetTitanKeyPath(ctx context.Context, path string) error {
	return store.ConfigSet(ctx, CONFIG_KEY_TITAN_KEY_PATH, []byte(path))
}

// VaultPath returns the stored vault database path
func (store *storeImplementation) VaultPath(ctx context.Context) (string, error) {
	value, err := store.ConfigGet(ctx, CONFIG_KEY_VAULT_PATH)
	if err != nil {
		return "", err
	}

	return string(value), nil
}

// SetVaultPath stores the vault database path
func (store *storeImplementation) SetVaultPath(ctx context.Context, path string) error {
	return store.ConfigSet(ctx, CONFIG_KEY_VAULT_PATH, []byte(path))
}

func (store *storeImplementation) configGetUint32(ctx context.Context, key string) (uint32, error) {
	value, err := store.ConfigGet(ctx, key)
	if err != nil {
		return 0, err
	}

	parsed, err := decodeUint32LE(value)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}

	return parsed, nil
}

func (store *storeImplementation) configSetUint32(ctx context.Context, key string, value uint32) error {
	return store.ConfigSet(ctx, key, encodeUint32LE(value))
}
