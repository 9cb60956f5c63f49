package cvault

// Entry table column constants
const (
	COLUMN_UUID          = "uuid"
	COLUMN_SERVICE_BLOB  = "service_blob"
	COLUMN_USERNAME_BLOB = "username_blob"
	COLUMN_PASSWORD_BLOB = "password_blob"
	COLUMN_NOTES_BLOB    = "notes_blob"
	COLUMN_CREATED_AT    = "created_at"
	COLUMN_UPDATED_AT    = "updated_at"
)

// Config table column constants
const (
	COLUMN_CONFIG_KEY   = "config_key"
	COLUMN_CONFIG_VALUE = "config_value"
)

// Reserved config keys. The key strings are part of the on-disk
// contract and must stay bit-exact across versions.
const (
	CONFIG_KEY_SALT             = "salt"
	CONFIG_KEY_VERIFICATION_KEY = "verification_key"
	CONFIG_KEY_KDF_ITERATIONS   = "kdf_iterations"
	CONFIG_KEY_KDF_MEMORY       = "kdf_memory"
	CONFIG_KEY_KDF_PARALLELISM  = "kdf_parallelism"
	CONFIG_KEY_SCHEMA_VERSION   = "schema_version"
	CONFIG_KEY_TITAN_KEY_PATH   = "titan_key_path"
	CONFIG_KEY_VAULT_PATH       = "vault_path"
)

// Key and blob sizes in bytes
const (
	TITAN_KEY_LENGTH        = 32
	SALT_LENGTH             = 32
	MATERIAL_LENGTH         = 64
	MASTER_KEY_LENGTH       = 32
	VERIFICATION_KEY_LENGTH = 32
	VERIFICATION_TAG_LENGTH = 32
	NONCE_LENGTH            = 12
	GCM_TAG_LENGTH          = 16
	BLOB_OVERHEAD           = NONCE_LENGTH + GCM_TAG_LENGTH
)

// Titan blob format constants for version 0x01:
// version(1) + key(32) + mac(32) = 65 bytes on disk
const (
	TITAN_BLOB_VERSION_01  = byte(0x01)
	TITAN_KEY_SIZE_V01     = 32
	TITAN_MAC_SIZE_V01     = 32
	TITAN_BLOB_SIZE_V01    = 1 + TITAN_KEY_SIZE_V01 + TITAN_MAC_SIZE_V01
	TITAN_KEY_FILE_MODE    = 0o600
	SECRETS_DIRECTORY_MODE = 0o700
)

// Argon2id cost defaults. Memory is in KiB (256 MiB).
const (
	KDF_ITERATIONS_DEFAULT  = 3
	KDF_MEMORY_DEFAULT      = 262144
	KDF_PARALLELISM_DEFAULT = 2
)

// SCHEMA_VERSION_CURRENT is the config schema written by VaultSetup
const SCHEMA_VERSION_CURRENT = uint32(1)

// UUID_STRING_LENGTH is the canonical RFC 4122 text length
const UUID_STRING_LENGTH = 36

// PASSWORD_MAX_LENGTH bounds GeneratePassword requests
const PASSWORD_MAX_LENGTH = 200

// titanMacSalt is the fixed salt used when MACing the titan key for
// blob format v1. The MAC is a function purely of the key bytes;
// changing this value requires a new version byte.
var titanMacSalt = [SALT_LENGTH]byte{0x06}

// kdfMixInfo is the HKDF info string binding the titan key into the
// effective KDF salt
const kdfMixInfo = "cvault kdf v1"

// KdfConfig holds the Argon2id cost parameters. Memory is in KiB.
type KdfConfig struct {
	Iterations  uint32
	Memory      uint32
	Parallelism uint8
}

// DefaultKdfConfig returns the production cost parameters
func DefaultKdfConfig() KdfConfig {
	return KdfConfig{
		Iterations:  KDF_ITERATIONS_DEFAULT,
		Memory:      KDF_MEMORY_DEFAULT,
		Parallelism: KDF_PARALLELISM_DEFAULT,
	}
}

// CharsetFlag selects the character set used by GeneratePassword
type CharsetFlag int

const (
	CHARSET_FULL CharsetFlag = iota
	CHARSET_ALPHANUM
	CHARSET_ALPHA
	CHARSET_UPPER
	CHARSET_LOWER
	CHARSET_DIGITS_SYMBOLS
	CHARSET_SYMBOLS
	CHARSET_DIGITS
)
