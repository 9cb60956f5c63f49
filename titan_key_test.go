package cvault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTitanKeyManager(t *testing.T) *TitanKeyManager {
	t.Helper()

	path := filepath.Join(t.TempDir(), "titan.key")

	manager, err := NewTitanKeyManager(path, testKdfConfig())
	if err != nil {
		t.Fatalf("NewTitanKeyManager failed: %v", err)
	}

	return manager
}

func TestTitanKeyInit(t *testing.T) {
	manager := setupTitanKeyManager(t)

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	info, err := os.Stat(manager.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	if info.Size() != TITAN_BLOB_SIZE_V01 {
		t.Errorf("expected %d bytes on disk, got %d", TITAN_BLOB_SIZE_V01, info.Size())
	}

	if info.Mode().Perm() != TITAN_KEY_FILE_MODE {
		t.Errorf("expected mode %04o, got %04o", TITAN_KEY_FILE_MODE, info.Mode().Perm())
	}

	if !info.Mode().IsRegular() {
		t.Error("titan blob is not a regular file")
	}
}

func TestTitanKeyInit_RefusesWhenValid(t *testing.T) {
	manager := setupTitanKeyManager(t)

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := manager.Init(); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got: %v", err)
	}
}

func TestTitanKeyInit_OverwritesInvalidBlob(t *testing.T) {
	manager := setupTitanKeyManager(t)

	// a structurally invalid leftover must not block provisioning
	if err := os.WriteFile(manager.Path(), []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := manager.Validate(); err != nil {
		t.Fatalf("Validate failed after re-init: %v", err)
	}
}

func TestTitanKeyLoad_ReturnsInitializedKey(t *testing.T) {
	manager := setupTitanKeyManager(t)

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	blob, err := os.ReadFile(manager.Path())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	titanKey, err := manager.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(titanKey) != TITAN_KEY_SIZE_V01 {
		t.Fatalf("expected %d bytes, got %d", TITAN_KEY_SIZE_V01, len(titanKey))
	}

	if !bytes.Equal(titanKey, blob[1:1+TITAN_KEY_SIZE_V01]) {
		t.Fatal("loaded key does not match the on-disk key bytes")
	}
}

func TestTitanKeyLoad_Missing(t *testing.T) {
	manager := setupTitanKeyManager(t)

	if _, err := manager.Load(); !errors.Is(err, ErrNoKeyFile) {
		t.Fatalf("expected ErrNoKeyFile, got: %v", err)
	}
}

func TestTitanKeyLoad_BitFlips(t *testing.T) {
	manager := setupTitanKeyManager(t)

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	original, err := os.ReadFile(manager.Path())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	testCases := []struct {
		name   string
		offset int
		want   error
	}{
		{"key byte", 5, ErrTampered},
		{"key byte high", 32, ErrTampered},
		{"mac byte", 40, ErrTampered},
		{"mac last byte", TITAN_BLOB_SIZE_V01 - 1, ErrTampered},
		{"version byte", 0, ErrUnsupportedVersion},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tampered := make([]byte, len(original))
			copy(tampered, original)
			tampered[tc.offset] ^= 0x01

			if err := os.WriteFile(manager.Path(), tampered, TITAN_KEY_FILE_MODE); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			if _, err := manager.Load(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got: %v", tc.want, err)
			}
		})
	}
}

func TestTitanKeyValidate(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		manager := setupTitanKeyManager(t)
		if err := manager.Validate(); !errors.Is(err, ErrNoKeyFile) {
			t.Fatalf("expected ErrNoKeyFile, got: %v", err)
		}
	})

	t.Run("size 64", func(t *testing.T) {
		manager := setupTitanKeyManager(t)
		if err := os.WriteFile(manager.Path(), make([]byte, 64), TITAN_KEY_FILE_MODE); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := manager.Validate(); !errors.Is(err, ErrTampered) {
			t.Fatalf("expected ErrTampered, got: %v", err)
		}
	})

	t.Run("size 66", func(t *testing.T) {
		manager := setupTitanKeyManager(t)
		if err := os.WriteFile(manager.Path(), make([]byte, 66), TITAN_KEY_FILE_MODE); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := manager.Validate(); !errors.Is(err, ErrTampered) {
			t.Fatalf("expected ErrTampered, got: %v", err)
		}
	})

	t.Run("mode 0644", func(t *testing.T) {
		manager := setupTitanKeyManager(t)
		if err := os.WriteFile(manager.Path(), make([]byte, TITAN_BLOB_SIZE_V01), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := manager.Validate(); !errors.Is(err, ErrTampered) {
			t.Fatalf("expected ErrTampered, got: %v", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		manager := setupTitanKeyManager(t)
		if err := os.Mkdir(manager.Path(), 0o700); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := manager.Validate(); !errors.Is(err, ErrTampered) {
			t.Fatalf("expected ErrTampered, got: %v", err)
		}
	})

	t.Run("symlink", func(t *testing.T) {
		manager := setupTitanKeyManager(t)

		target := filepath.Join(filepath.Dir(manager.Path()), "real.key")
		if err := os.WriteFile(target, make([]byte, TITAN_BLOB_SIZE_V01), TITAN_KEY_FILE_MODE); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		if err := os.Symlink(target, manager.Path()); err != nil {
			t.Fatalf("symlink failed: %v", err)
		}

		if err := manager.Validate(); !errors.Is(err, ErrTampered) {
			t.Fatalf("expected ErrTampered, got: %v", err)
		}
	})
}

func TestTitanKeyLoad_UnsupportedVersion(t *testing.T) {
	manager := setupTitanKeyManager(t)

	blob := make([]byte, TITAN_BLOB_SIZE_V01)
	blob[0] = 0x02

	if err := os.WriteFile(manager.Path(), blob, TITAN_KEY_FILE_MODE); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := manager.Load(); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got: %v", err)
	}
}

func TestTitanKeyWipe(t *testing.T) {
	manager := setupTitanKeyManager(t)

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if err := manager.Wipe(); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}

	exists, err := manager.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}

	if exists {
		t.Fatal("titan blob still present after Wipe")
	}

	if err := manager.Wipe(); !errors.Is(err, ErrNoKeyFile) {
		t.Fatalf("expected ErrNoKeyFile, got: %v", err)
	}
}

func TestTitanKeyExists(t *testing.T) {
	manager := setupTitanKeyManager(t)

	exists, err := manager.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Fatal("expected no blob before Init")
	}

	if err := manager.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	exists, err = manager.Exists()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected blob after Init")
	}
}
