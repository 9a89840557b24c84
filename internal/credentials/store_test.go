package credentials

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/existflow/diary/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore checks the contract shared by every backend
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, ok := s.Token()
	assert.False(t, ok, "new store must be empty")
	assert.False(t, Authenticated(s))

	require.ErrorIs(t, s.SetToken(""), ErrEmptyToken)

	require.NoError(t, s.SetToken("first"))
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "first", tok)

	// At most one token is active
	require.NoError(t, s.SetToken("second"))
	tok, _ = s.Token()
	assert.Equal(t, "second", tok)

	require.NoError(t, s.ClearToken())
	_, ok = s.Token()
	assert.False(t, ok)

	// Clearing twice is fine
	require.NoError(t, s.ClearToken())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetToken("tok")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Token()
			_ = s.ClearToken()
		}()
	}
	wg.Wait()
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := OpenFile(path)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("persisted"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	tok, ok := reopened.Token()
	assert.True(t, ok)
	assert.Equal(t, "persisted", tok)

	require.NoError(t, reopened.ClearToken())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreClearFailureKeepsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("stuck"))

	// a non-empty directory can be neither removed nor replaced
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0600))

	require.Error(t, s.ClearToken())
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "stuck", tok)

	require.NoError(t, os.RemoveAll(path))
	require.NoError(t, s.ClearToken())
	assert.False(t, Authenticated(s))
}

func TestFileStoreCorruptFileMeansLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := OpenFile(path)
	require.NoError(t, err)
	assert.False(t, Authenticated(s))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diary.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("persisted"))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	tok, ok := reopened.Token()
	assert.True(t, ok)
	assert.Equal(t, "persisted", tok)
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)
	require.NoError(t, Close(s))

	cfg.CredentialStore = config.StoreSQLite
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, Close(s))

	cfg.CredentialStore = "redis"
	_, err = Open(cfg)
	assert.Error(t, err)
}
