package cvault

import "errors"

// Error kinds returned by the vault. Callers match with errors.Is;
// wrapped errors carry the underlying OS or library failure.
var (
	// ErrNilInput is returned when a required argument is nil
	ErrNilInput = errors.New("cvault: nil input")

	// ErrInvalidSize is returned when a length argument is out of bounds
	ErrInvalidSize = errors.New("cvault: invalid size")

	// ErrSyscall is returned when an OS call (open, stat, read, write,
	// getrandom) fails for a reason other than a missing key file
	ErrSyscall = errors.New("cvault: syscall failed")

	// ErrTampered is returned when the titan blob integrity check or an
	// AEAD tag verification fails
	ErrTampered = errors.New("cvault: tampered")

	// ErrUnsupportedVersion is returned when the titan blob carries an
	// unknown version byte
	ErrUnsupportedVersion = errors.New("cvault: unsupported titan blob version")

	// ErrAlreadyExists is returned when Init finds a valid titan blob
	ErrAlreadyExists = errors.New("cvault: titan key already exists")

	// ErrNoKeyFile is returned when the titan blob is missing
	ErrNoKeyFile = errors.New("cvault: no titan key file")

	// ErrKdf is returned when key derivation fails
	ErrKdf = errors.New("cvault: kdf failed")

	// ErrInvalidPassphrase is returned when the verification tag does
	// not match during unlock
	ErrInvalidPassphrase = errors.New("cvault: invalid passphrase")

	// ErrNotFound is returned when an entry or config row is absent
	ErrNotFound = errors.New("cvault: not found")

	// ErrVerifyWrite is returned when a config write does not read back
	// identical to the value written
	ErrVerifyWrite = errors.New("cvault: write verification failed")
)
