package cvault

import (
	"context"
	"fmt"
)

// VaultSetup performs the first-run provisioning: it initializes the
// titan key, generates the per-vault salt, derives the verification
// tag from the passphrase and stores salt, tag, KDF parameters, schema
// version and paths in the config table. It refuses when a valid titan
// blob already exists. Every intermediate secret is zeroized before
// return on every path.
func (store *storeImplementation) VaultSetup(ctx context.Context, passphrase []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if passphrase == nil {
		return fmt.Errorf("%w: passphrase", ErrNilInput)
	}

	if err := store.titanKeys.Init(); err != nil {
		return err
	}

	salt, err := RandomBytes(SALT_LENGTH)
	if err != nil {
		return err
	}

	if err := store.SetSalt(ctx, salt); err != nil {
		return err
	}

	if err := store.SetKdfConfig(ctx, store.kdfConfig); err != nil {
		return err
	}

	if err := store.SetSchemaVersion(ctx, SCHEMA_VERSION_CURRENT); err != nil {
		return err
	}

	if err := store.SetTitanKeyPath(ctx, store.titanKeys.Path()); err != nil {
		return err
	}

	if store.vaultPath != "" {
		if err := store.SetVaultPath(ctx, store.vaultPath); err != nil {
			return err
		}
	}

	tag, err := store.deriveVerificationTag(passphrase, salt)
	if err != nil {
		return err
	}
	defer Zeroize(tag)

	return store.SetVerificationTag(ctx, tag)
}

// VaultUnlock derives the master key from the passphrase and the
// machine-resident titan key, verifies it against the stored tag in
// constant time, and returns the 32-byte master key on success. The
// caller owns the key for the session and must release it with
// LockMasterKey. A wrong passphrase returns ErrInvalidPassphrase; a
// damaged titan blob returns ErrTampered.
func (store *storeImplementation) VaultUnlock(ctx context.Context, passphrase []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if passphrase == nil {
		return nil, fmt.Errorf("%w: passphrase", ErrNilInput)
	}

	salt, err := store.Salt(ctx)
	if err != nil {
		return nil, err
	}

	storedTag, err := store.VerificationTag(ctx)
	if err != nil {
		return nil, err
	}

	kdfConfig, err := store.KdfConfigFromStore(ctx)
	if err != nil {
		return nil, err
	}

	titanKey, err := store.titanKeys.Load()
	if err != nil {
		return nil, err
	}

	material, err := DeriveKeyMaterial(passphrase, titanKey, salt, kdfConfig)
	Zeroize(titanKey)
	if err != nil {
		return nil, err
	}
	defer Zeroize(material)

	masterKey := make([]byte, MASTER_KEY_LENGTH)
	copy(masterKey, material[:MASTER_KEY_LENGTH])

	rawVerify := material[MASTER_KEY_LENGTH:]

	candidateTag, err := HashKey(rawVerify, salt, kdfConfig)
	if err != nil {
		Zeroize(masterKey)
		return nil, err
	}

	ok := ConstantTimeEqual(candidateTag, storedTag)
	Zeroize(candidateTag)

	if !ok {
		Zeroize(masterKey)
		return nil, ErrInvalidPassphrase
	}

	return masterKey, nil
}

// LockMasterKey zeroizes a master key at the end of a session
func (store *storeImplementation) LockMasterKey(masterKey []byte) error {
	return Zeroize(masterKey)
}

// VaultReset wipes the titan key and deletes every entry and config
// row. After a reset the vault contents are unrecoverable.
func (store *storeImplementation) VaultReset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := store.titanKeys.Wipe(); err != nil {
		return err
	}

	if err := store.EntryDeleteAll(ctx); err != nil {
		return err
	}

	return store.ConfigDeleteAll(ctx)
}

// deriveVerificationTag runs the derive-split-hash sequence used at
// setup: material[32..64) hashed with the salt. The master-key half is
// never surfaced here.
func (store *storeImplementation) deriveVerificationTag(passphrase, salt []byte) ([]byte, error) {
	titanKey, err := store.titanKeys.Load()
	if err != nil {
		return nil, err
	}

	material, err := DeriveKeyMaterial(passphrase, titanKey, salt, store.kdfConfig)
	Zeroize(titanKey)
	if err != nil {
		return nil, err
	}
	defer Zeroize(material)

	rawVerify := material[MASTER_KEY_LENGTH:]

	return HashKey(rawVerify, salt, store.kdfConfig)
}
