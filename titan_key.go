package cvault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TitanKeyManager owns the machine-resident titan key blob:
// initialization, structural validation, integrity-checked loading,
// and wiping. The on-disk format is versioned; see the titan blob
// constants for the v1 layout.
type TitanKeyManager struct {
	path string
	kdf  KdfConfig
}

// NewTitanKeyManager returns a manager for the blob at path. The
// KdfConfig must match the one used when the blob was written, since
// the MAC is derived with it.
func NewTitanKeyManager(path string, kdf KdfConfig) (*TitanKeyManager, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: titan key path", ErrNilInput)
	}

	return &TitanKeyManager{path: path, kdf: kdf}, nil
}

// Path returns the titan blob path
func (m *TitanKeyManager) Path() string {
	return m.path
}

// Exists reports whether a titan blob is present. A missing file is
// (false, nil); any other stat failure is (false, ErrSyscall).
func (m *TitanKeyManager) Exists() (bool, error) {
	_, err := os.Lstat(m.path)

	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("%w: stat %s: %v", ErrSyscall, m.path, err)
}

// Validate performs the cheap structural check, no crypto: the blob
// must be a regular file (not a symlink, directory or device), exactly
// TITAN_BLOB_SIZE_V01 bytes, with mode exactly 0600.
func (m *TitanKeyManager) Validate() error {
	info, err := os.Lstat(m.path)

	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoKeyFile
	}

	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrSyscall, m.path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: not a regular file", ErrTampered)
	}

	if info.Size() != TITAN_BLOB_SIZE_V01 {
		return fmt.Errorf("%w: blob size %d", ErrTampered, info.Size())
	}

	if info.Mode().Perm() != TITAN_KEY_FILE_MODE {
		return fmt.Errorf("%w: file mode %04o", ErrTampered, info.Mode().Perm())
	}

	return nil
}

// Init generates a fresh titan key and writes the v1 blob atomically
// with mode 0600. It refuses when a valid blob is already present.
// All key material is zeroized before return on every path.
func (m *TitanKeyManager) Init() error {
	exists, err := m.Exists()
	if err != nil {
		return err
	}

	if exists && m.Validate() == nil {
		return ErrAlreadyExists
	}

	titanKey, err := RandomBytes(TITAN_KEY_SIZE_V01)
	if err != nil {
		return err
	}
	defer Zeroize(titanKey)

	mac, err := HashKey(titanKey, titanMacSalt[:], m.kdf)
	if err != nil {
		return err
	}
	defer Zeroize(mac)

	blob := make([]byte, 0, TITAN_BLOB_SIZE_V01)
	blob = append(blob, TITAN_BLOB_VERSION_01)
	blob = append(blob, titanKey...)
	blob = append(blob, mac...)
	defer Zeroize(blob)

	return m.writeBlobAtomic(blob)
}

// Load runs the full integrity check and returns the 32-byte titan
// key. The caller owns the returned slice and must Zeroize it after
// use. Intermediate buffers are zeroized on every exit path.
func (m *TitanKeyManager) Load() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSyscall, m.path, err)
	}
	defer Zeroize(blob)

	if len(blob) != TITAN_BLOB_SIZE_V01 {
		return nil, fmt.Errorf("%w: short read %d", ErrSyscall, len(blob))
	}

	switch blob[0] {
	case TITAN_BLOB_VERSION_01:
		return m.verifyV01(blob)
	default:
		return nil, fmt.Errorf("%w: %#02x", ErrUnsupportedVersion, blob[0])
	}
}

func (m *TitanKeyManager) verifyV01(blob []byte) ([]byte, error) {
	titanKey := blob[1 : 1+TITAN_KEY_SIZE_V01]
	macRead := blob[1+TITAN_KEY_SIZE_V01:]

	macComputed, err := HashKey(titanKey, titanMacSalt[:], m.kdf)
	if err != nil {
		return nil, err
	}
	defer Zeroize(macComputed)

	if !ConstantTimeEqual(macRead, macComputed) {
		return nil, fmt.Errorf("%w: mac mismatch", ErrTampered)
	}

	out := make([]byte, TITAN_KEY_SIZE_V01)
	copy(out, titanKey)

	return out, nil
}

// Wipe unlinks the titan blob. The contract is only that the path no
// longer names the blob; filesystem-level shredding is out of scope.
func (m *TitanKeyManager) Wipe() error {
	err := os.Remove(m.path)

	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoKeyFile
	}

	if err != nil {
		return fmt.Errorf("%w: unlink %s: %v", ErrSyscall, m.path, err)
	}

	return nil
}

// writeBlobAtomic writes the blob to a temp file in the target
// directory with mode 0600, then renames it over the final path so a
// crash never leaves a partial blob behind.
func (m *TitanKeyManager) writeBlobAtomic(blob []byte) error {
	dir := filepath.Dir(m.path)

	tmp, err := os.CreateTemp(dir, ".titan-*")
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrSyscall, dir, err)
	}

	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(TITAN_KEY_FILE_MODE); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod: %v", ErrSyscall, err)
	}

	if _, err := tmp.Write(blob); err != nil {
		cleanup()
		return fmt.Errorf("%w: write: %v", ErrSyscall, err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%w: sync: %v", ErrSyscall, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close: %v", ErrSyscall, err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename: %v", ErrSyscall, err)
	}

	return nil
}
