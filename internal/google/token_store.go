package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
)

// DefaultAccount is the account used when none is configured.
const DefaultAccount = "default"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ErrNoToken is returned when no token is stored for an account.
var ErrNoToken = errors.New("no OAuth token stored")

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: must contain only letters, digits, hyphens and underscores", account)
	}
	return nil
}

// FileTokenStore keeps one JSON encoded oauth2.Token per account in a directory.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore returns a store rooted at dir. An empty dir means
// <user cache dir>/workspace-tasks.
func NewFileTokenStore(dir string) (*FileTokenStore, error) {
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine cache directory: %w", err)
		}
		dir = filepath.Join(cacheDir, "workspace-tasks")
	}
	return &FileTokenStore{dir: dir}, nil
}

// Path returns the token file of account.
func (s *FileTokenStore) Path(account string) string {
	return filepath.Join(s.dir, fmt.Sprintf("google-%s.token", account))
}

// Has reports whether a token file exists for account.
func (s *FileTokenStore) Has(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Load reads the token of account. It returns an error wrapping ErrNoToken
// when the file does not exist.
func (s *FileTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(account))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.Path(account), err)
	}
	return &token, nil
}

// Save writes token for account, creating the directory with 0700 and the
// file with 0600 permissions.
func (s *FileTokenStore) Save(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	// Write then rename; readers never see a partial file.
	tmp := s.Path(account) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.Path(account)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Delete removes the token of account. Deleting a missing token is not an error.
func (s *FileTokenStore) Delete(account string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(s.Path(account)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}
