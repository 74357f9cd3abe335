// Package session holds the operator's login state between console runs. The
// bearer token lives in a mode-0600 file under the user's config directory
// and is handed to the API client through its credential interface.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oakfield-health/practice-console/pkg/logging"
)

// Store is a file-backed token store. It satisfies the API client's
// CredentialSource interface.
type Store struct {
	mu     sync.RWMutex
	path   string
	token  string
	logger *logging.Logger
}

// Open loads any previously saved token from path. A missing file is a
// logged-out session, not an error.
func Open(path string, logger *logging.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	s.token = strings.TrimSpace(string(raw))
	return s, nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn reports whether a token is present.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// SetToken persists a freshly issued token.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", s.path, err)
	}
	s.token = token
	return nil
}

// Clear drops the stored token. It is also wired as the API client's
// unauthorized hook, so a 401 from any endpoint logs the operator out.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove token file", "path", s.path, "error", err)
	}
}

// ExpiresAt reads the exp claim from the stored token without verifying the
// signature; verification is the backend's job, this is display only.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the stored token carries an exp claim in the past.
// Tokens without a readable exp claim are assumed live and left for the
// backend to reject.
func (s *Store) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	if !ok {
		return false
	}
	return now.After(exp)
}
