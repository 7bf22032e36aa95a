package providers

import (
	"socialstats/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeEnum_String(t *testing.T) {
	assert.Equal(t, "app", TypeApp.String())
	assert.Equal(t, "fetch", TypeFetch.String())
	assert.Equal(t, "adapter", TypeAdapter.String())
	assert.Equal(t, "http", TypeHTTP.String())
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeFetch, "fetch message")
	logger.Warnf(TypeAdapter, "adapter message")
	logger.Errorf(TypeHTTP, "http message")
}

func TestNewLogProvider_StderrOnlyWithoutDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "warn"},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	logger.Close()
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{Level: "verbose"},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
