package cvault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File names used under the per-user directories
const (
	CONFIG_DB_FILE  = "configs.db"
	VAULT_DB_FILE   = "vault.db"
	TITAN_KEY_FILE  = "titan.key"
	APP_DIR_NAME    = "cvault"
	SECRETS_DIR_SUB = "secrets"
)

// Environment holds the resolved per-user paths. The crypto core never
// reads environment variables itself; this resolver is the collaborator
// that feeds it paths.
type Environment struct {
	ConfigDir    string
	DataDir      string
	SecretsDir   string
	ConfigDBPath string
	VaultDBPath  string
	TitanKeyPath string
}

// ResolveEnvironment builds the XDG-style directory layout:
// $XDG_CONFIG_HOME/cvault (or ~/.config/cvault) for the config
// database, $XDG_DATA_HOME/cvault (or ~/.local/share/cvault) for the
// vault database, and its secrets/ subdirectory for the titan blob.
func ResolveEnvironment() (*Environment, error) {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		return nil, fmt.Errorf("%w: HOME not set", ErrSyscall)
	}

	configDir := filepath.Join(homeDir, ".config", APP_DIR_NAME)
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		configDir = filepath.Join(configHome, APP_DIR_NAME)
	}

	dataDir := filepath.Join(homeDir, ".local", "share", APP_DIR_NAME)
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		dataDir = filepath.Join(dataHome, APP_DIR_NAME)
	}

	secretsDir := filepath.Join(dataDir, SECRETS_DIR_SUB)

	return &Environment{
		ConfigDir:    configDir,
		DataDir:      dataDir,
		SecretsDir:   secretsDir,
		ConfigDBPath: filepath.Join(configDir, CONFIG_DB_FILE),
		VaultDBPath:  filepath.Join(dataDir, VAULT_DB_FILE),
		TitanKeyPath: filepath.Join(secretsDir, TITAN_KEY_FILE),
	}, nil
}

// EnsureDirs creates the config, data and secrets directories with
// mode 0700
func (env *Environment) EnsureDirs() error {
	for _, dir := range []string{env.ConfigDir, env.DataDir, env.SecretsDir} {
		if err := os.MkdirAll(dir, SECRETS_DIRECTORY_MODE); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrSyscall, dir, err)
		}
	}

	return nil
}

// IsInitialized reports whether all three directories exist with
// permission bits exactly 0700
func (env *Environment) IsInitialized() (bool, error) {
	for _, dir := range []string{env.ConfigDir, env.DataDir, env.SecretsDir} {
		info, err := os.Stat(dir)

		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		if err != nil {
			return false, fmt.Errorf("%w: stat %s: %v", ErrSyscall, dir, err)
		}

		if !info.IsDir() {
			return false, nil
		}

		if info.Mode().Perm() != SECRETS_DIRECTORY_MODE {
			return false, nil
		}
	}

	return true, nil
}
