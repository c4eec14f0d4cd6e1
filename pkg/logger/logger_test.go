package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInDirWritesErrorFileOnlyForErrors(t *testing.T) {
	dir := t.TempDir()
	log, err := NewInDir("info", dir)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("enrollment created")
	log.Error("notification dropped")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "enrollment created")
	assert.Contains(t, string(info), "notification dropped")
	assert.NotContains(t, string(info), "hidden")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errs), "enrollment created")
	assert.Contains(t, string(errs), "notification dropped")
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warning", "error", ""} {
		_, err := parseLevel(level)
		assert.NoError(t, err, level)
	}
	_, err := parseLevel("verbose")
	assert.Error(t, err)
}
