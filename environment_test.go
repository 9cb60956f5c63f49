package cvault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveEnvironment_XDG(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	env, err := ResolveEnvironment()
	if err != nil {
		t.Fatalf("ResolveEnvironment failed: %v", err)
	}

	if env.ConfigDir != "/xdg/config/cvault" {
		t.Errorf("unexpected config dir: %s", env.ConfigDir)
	}
	if env.DataDir != "/xdg/data/cvault" {
		t.Errorf("unexpected data dir: %s", env.DataDir)
	}
	if env.TitanKeyPath != "/xdg/data/cvault/secrets/titan.key" {
		t.Errorf("unexpected titan key path: %s", env.TitanKeyPath)
	}
}

func TestResolveEnvironment_HomeFallback(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	env, err := ResolveEnvironment()
	if err != nil {
		t.Fatalf("ResolveEnvironment failed: %v", err)
	}

	if env.ConfigDBPath != "/home/user/.config/cvault/configs.db" {
		t.Errorf("unexpected config db path: %s", env.ConfigDBPath)
	}
	if env.VaultDBPath != "/home/user/.local/share/cvault/vault.db" {
		t.Errorf("unexpected vault db path: %s", env.VaultDBPath)
	}
	if env.SecretsDir != "/home/user/.local/share/cvault/secrets" {
		t.Errorf("unexpected secrets dir: %s", env.SecretsDir)
	}
}

func TestResolveEnvironment_NoHome(t *testing.T) {
	t.Setenv("HOME", "")

	if _, err := ResolveEnvironment(); err == nil {
		t.Fatal("expected error without HOME")
	}
}

func TestEnsureDirsAndIsInitialized(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	env, err := ResolveEnvironment()
	if err != nil {
		t.Fatalf("ResolveEnvironment failed: %v", err)
	}

	initialized, err := env.IsInitialized()
	if err != nil {
		t.Fatalf("IsInitialized failed: %v", err)
	}
	if initialized {
		t.Fatal("expected uninitialized before EnsureDirs")
	}

	if err := env.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	for _, dir := range []string{env.ConfigDir, env.DataDir, env.SecretsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s failed: %v", dir, err)
		}
		if info.Mode().Perm() != SECRETS_DIRECTORY_MODE {
			t.Errorf("dir %s mode %04o, expected %04o", dir, info.Mode().Perm(), SECRETS_DIRECTORY_MODE)
		}
	}

	initialized, err = env.IsInitialized()
	if err != nil {
		t.Fatalf("IsInitialized failed: %v", err)
	}
	if !initialized {
		t.Fatal("expected initialized after EnsureDirs")
	}
}

func TestIsInitialized_RejectsLooseMode(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	env, err := ResolveEnvironment()
	if err != nil {
		t.Fatalf("ResolveEnvironment failed: %v", err)
	}

	if err := env.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	if err := os.Chmod(env.SecretsDir, 0o755); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	initialized, err := env.IsInitialized()
	if err != nil {
		t.Fatalf("IsInitialized failed: %v", err)
	}

	if initialized {
		t.Fatal("0755 secrets dir must not count as initialized")
	}

	if filepath.Dir(env.TitanKeyPath) != env.SecretsDir {
		t.Error("titan key path not under the secrets dir")
	}
}
