package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contentstack/contentstack-management-go/pkg/logging"
	pkgoauth "github.com/contentstack/contentstack-management-go/pkg/oauth"
)

// Persister saves token state between process runs.
type Persister interface {
	// Load returns the saved state for key, or nil when nothing is saved.
	Load(key string) (*TokenState, error)

	// Save stores state under key.
	Save(key string, state TokenState) error

	// Delete removes the state saved under key. Deleting a missing key is not an error.
	Delete(key string) error
}

// PersistenceKey identifies the credentials of one app on one endpoint.
func PersistenceKey(tokenURL, appID string) string {
	hash := sha256.Sum256([]byte(tokenURL + "\n" + appID))
	return hex.EncodeToString(hash[:16])
}

// FileStore persists token state as one JSON file per key.
//
// SECURITY: the directory is created 0700 and files are written 0600.
// Token values are never logged.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store under dir, defaulting to
// ~/.config/contentstack/tokens.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, pkgoauth.DefaultTokenStorageDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token storage directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load implements Persister.
func (f *FileStore) Load(key string) (*TokenState, error) {
	// #nosec G304 -- path is built from a hashed key, not user input
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var state TokenState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token file: %w", err)
	}
	return &state, nil
}

// Save implements Persister.
func (f *FileStore) Save(key string, state TokenState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// Write to a temp file first so a crash never leaves a truncated token file.
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write token file: %w", err)
	}

	logging.Debug("TokenFile", "Stored token state under key %s", key)
	return nil
}

// Delete implements Persister.
func (f *FileStore) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
