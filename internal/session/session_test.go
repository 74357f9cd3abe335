package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakfield-health/practice-console/pkg/logging"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console", "token")
	s, err := Open(path, logging.Default())
	require.NoError(t, err)
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestOpenMissingFileIsLoggedOut(t *testing.T) {
	s := testStore(t)
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
}

func TestSetTokenPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s, err := Open(path, logging.Default())
	require.NoError(t, err)
	require.NoError(t, s.SetToken("abc123"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path, logging.Default())
	require.NoError(t, err)
	assert.True(t, reopened.LoggedIn())
	assert.Equal(t, "abc123", reopened.Token())
}

func TestClearRemovesTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s, err := Open(path, logging.Default())
	require.NoError(t, err)
	require.NoError(t, s.SetToken("abc123"))

	s.Clear()
	assert.False(t, s.LoggedIn())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Clearing an already-empty session is a no-op.
	s.Clear()
}

func TestExpiresAt(t *testing.T) {
	s := testStore(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, s.SetToken(signedToken(t, exp)))

	got, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp.Add(time.Minute)))
}

func TestExpiresAtOpaqueToken(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SetToken("not-a-jwt"))

	_, ok := s.ExpiresAt()
	assert.False(t, ok)
	assert.False(t, s.Expired(time.Now()), "unreadable exp must not read as expired")
}
