package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warn"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("bogus"))
	assert.Equal(t, "WARN", WARN.String())
}

func TestLoggerWritesFileWithFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "diary.log")
	l, err := New(Config{Level: INFO, FilePath: path, MaxSize: 1 << 20, MaxBackups: 2})
	require.NoError(t, err)

	l.Debug("hidden")
	l.WithFields(F("op", "login")).Info("request sent", F("status", 200), F("error", errors.New("boom")))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"request sent"`)
	assert.Contains(t, out, `"op":"login"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLoggerRotatesBySize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diary.log")
	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 64, MaxBackups: 3})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		l.Info("a line that is long enough to force rotation", F("i", i))
	}
	require.NoError(t, l.Close())

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
	_, err = os.Stat(path + ".4")
	assert.True(t, os.IsNotExist(err))
}

func TestNopAndNilLoggerAreSafe(t *testing.T) {
	var l *Logger
	l.Info("nothing")
	assert.Nil(t, l.WithFields(F("k", "v")))
	assert.NoError(t, l.Close())

	n := Nop()
	n.Error("nothing", F("k", 1))
	assert.NoError(t, n.Close())
}
