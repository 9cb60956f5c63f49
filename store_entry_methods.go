package cvault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dromara/carbon/v2"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// EntryCreate inserts a sealed entry. A missing UUID is generated; zero
// timestamps are stamped with the current time.
func (store *storeImplementation) EntryCreate(ctx context.Context, entry *VaultEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilInput)
	}

	if entry.ServiceBlob == nil || entry.UsernameBlob == nil || entry.PasswordBlob == nil {
		return fmt.Errorf("%w: entry field blob", ErrNilInput)
	}

	if entry.UUID == "" {
		id, err := GenerateUUID()
		if err != nil {
			return err
		}
		entry.UUID = id
	}

	if len(entry.UUID) != UUID_STRING_LENGTH {
		return fmt.Errorf("%w: uuid length %d", ErrInvalidSize, len(entry.UUID))
	}

	now := carbon.Now(carbon.UTC).Timestamp()

	if entry.CreatedAt == 0 {
		entry.CreatedAt = now
	}

	if entry.UpdatedAt == 0 {
		entry.UpdatedAt = now
	}

	return store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Create(fromVaultEntry(entry)).Error
}

// EntryFindByUUID finds an entry by its UUID. A missing entry returns
// (nil, nil).
func (store *storeImplementation) EntryFindByUUID(ctx context.Context, entryUUID string) (*VaultEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if entryUUID == "" {
		return nil, fmt.Errorf("%w: entry uuid", ErrNilInput)
	}

	var row gormVaultEntry

	err := store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Where(COLUMN_UUID+" = ?", entryUUID).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return row.toVaultEntry(), nil
}

// EntryList returns all entries ordered by creation time
func (store *storeImplementation) EntryList(ctx context.Context) ([]*VaultEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []gormVaultEntry

	err := store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Order(COLUMN_CREATED_AT).
		Find(&rows).Error

	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(row gormVaultEntry, _ int) *VaultEntry {
		return row.toVaultEntry()
	}), nil
}

// EntryCount returns the number of stored entries
func (store *storeImplementation) EntryCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}

	var count int64

	err := store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Count(&count).Error

	if err != nil {
		return -1, err
	}

	return count, nil
}

// EntryUpdate updates an entry's field blobs. Nil blobs leave the
// stored column unchanged, mirroring a partial edit. The updated_at
// timestamp is always refreshed.
func (store *storeImplementation) EntryUpdate(ctx context.Context, entryUUID string, entry *VaultEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entryUUID == "" {
		return fmt.Errorf("%w: entry uuid", ErrNilInput)
	}

	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilInput)
	}

	updates := map[string]interface{}{
		COLUMN_UPDATED_AT: carbon.Now(carbon.UTC).Timestamp(),
	}

	if entry.ServiceBlob != nil {
		updates[COLUMN_SERVICE_BLOB] = entry.ServiceBlob
	}

	if entry.UsernameBlob != nil {
		updates[COLUMN_USERNAME_BLOB] = entry.UsernameBlob
	}

	if entry.PasswordBlob != nil {
		updates[COLUMN_PASSWORD_BLOB] = entry.PasswordBlob
	}

	if entry.NotesBlob != nil {
		updates[COLUMN_NOTES_BLOB] = entry.NotesBlob
	}

	result := store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Where(COLUMN_UUID+" = ?", entryUUID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: entry %s", ErrNotFound, entryUUID)
	}

	return nil
}

// EntryDeleteByUUID removes an entry
func (store *storeImplementation) EntryDeleteByUUID(ctx context.Context, entryUUID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entryUUID == "" {
		return fmt.Errorf("%w: entry uuid", ErrNilInput)
	}

	result := store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Where(COLUMN_UUID+" = ?", entryUUID).
		Delete(&gormVaultEntry{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: entry %s", ErrNotFound, entryUUID)
	}

	return nil
}

// EntryDeleteAll removes every entry from the vault table
func (store *storeImplementation) EntryDeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return store.gormDB.WithContext(ctx).
		Table(store.entryTableName).
		Where("1 = 1").
		Delete(&gormVaultEntry{}).Error
}
