package cvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// DeriveKeyMaterial stretches (passphrase, titanKey, salt) into 64
// bytes of key material with Argon2id. The first 32 bytes are the
// master key, the second 32 bytes the raw verification key.
//
// The titan key enters the derivation as keyed input: it is compressed
// together with the per-vault salt through HKDF-SHA256 into the
// effective Argon2 salt, so the output is a function of all three
// inputs. The passphrase is an opaque byte string; no normalization
// is applied.
func DeriveKeyMaterial(passphrase, titanKey, salt []byte, cfg KdfConfig) ([]byte, error) {
	if passphrase == nil || titanKey == nil || salt == nil {
		return nil, fmt.Errorf("%w: derive key material", ErrNilInput)
	}

	if len(titanKey) != TITAN_KEY_LENGTH {
		return nil, fmt.Errorf("%w: titan key length %d", ErrInvalidSize, len(titanKey))
	}

	if len(salt) != SALT_LENGTH {
		return nil, fmt.Errorf("%w: salt length %d", ErrInvalidSize, len(salt))
	}

	mixedSalt := make([]byte, SALT_LENGTH)
	kdfReader := hkdf.New(sha256.New, titanKey, salt, []byte(kdfMixInfo))

	if _, err := io.ReadFull(kdfReader, mixedSalt); err != nil {
		return nil, fmt.Errorf("%w: hkdf: %v", ErrKdf, err)
	}

	material := argon2.IDKey(passphrase, mixedSalt,
		cfg.Iterations, cfg.Memory, cfg.Parallelism, MATERIAL_LENGTH)

	Zeroize(mixedSalt)

	if len(material) != MATERIAL_LENGTH {
		Zeroize(material)
		return nil, fmt.Errorf("%w: short material", ErrKdf)
	}

	return material, nil
}

// HashKey produces a 32-byte salted tag from a 32-byte key with the
// same Argon2id costs as DeriveKeyMaterial. Used for the stored
// verification tag and the titan blob MAC.
func HashKey(key, salt []byte, cfg KdfConfig) ([]byte, error) {
	if key == nil || salt == nil {
		return nil, fmt.Errorf("%w: hash key", ErrNilInput)
	}

	if len(key) != VERIFICATION_KEY_LENGTH {
		return nil, fmt.Errorf("%w: key length %d", ErrInvalidSize, len(key))
	}

	if len(salt) != SALT_LENGTH {
		return nil, fmt.Errorf("%w: salt length %d", ErrInvalidSize, len(salt))
	}

	tag := argon2.IDKey(key, salt,
		cfg.Iterations, cfg.Memory, cfg.Parallelism, VERIFICATION_TAG_LENGTH)

	if len(tag) != VERIFICATION_TAG_LENGTH {
		Zeroize(tag)
		return nil, fmt.Errorf("%w: short tag", ErrKdf)
	}

	return tag, nil
}

// SealBlob encrypts plaintext under the master key with AES-256-GCM.
// The returned blob is nonce(12) + ciphertext(len(plaintext)) + tag(16).
// The nonce is drawn fresh from the CSPRNG for every call; a counter
// nonce is never acceptable here because one master key seals many
// blobs over a session.
func SealBlob(masterKey, plaintext []byte) ([]byte, error) {
	if masterKey == nil || plaintext == nil {
		return nil, fmt.Errorf("%w: seal blob", ErrNilInput)
	}

	if len(masterKey) != MASTER_KEY_LENGTH {
		return nil, fmt.Errorf("%w: master key length %d", ErrInvalidSize, len(masterKey))
	}

	nonce, err := RandomBytes(NONCE_LENGTH)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}

	// Seal appends ciphertext+tag after the nonce prefix
	blob := gcm.Seal(nonce, nonce, plaintext, nil)

	return blob, nil
}

// OpenBlob decrypts a blob produced by SealBlob. Any bit flip in the
// nonce, ciphertext or tag fails tag verification and surfaces as
// ErrTampered.
func OpenBlob(masterKey, blob []byte) ([]byte, error) {
	if masterKey == nil || blob == nil {
		return nil, fmt.Errorf("%w: open blob", ErrNilInput)
	}

	if len(masterKey) != MASTER_KEY_LENGTH {
		return nil, fmt.Errorf("%w: master key length %d", ErrInvalidSize, len(masterKey))
	}

	if len(blob) < BLOB_OVERHEAD {
		return nil, fmt.Errorf("%w: blob length %d", ErrInvalidSize, len(blob))
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}

	plaintext, err := gcm.Open(nil, blob[:NONCE_LENGTH], blob[NONCE_LENGTH:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTampered, err)
	}

	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}
