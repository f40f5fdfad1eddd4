package app

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsac-scraper/internal/browser"
	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/model"
	"github.com/nsac-scraper/internal/storage"
)

func TestNewLogger(t *testing.T) {
	assert.Equal(t, log.DebugLevel, NewLogger("DEBUG").GetLevel())
	assert.Equal(t, log.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, log.InfoLevel, NewLogger("chatty").GetLevel())
}

func TestNewFileBackend(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Storage.Backend = "file"
	cfg.Storage.DataDir = t.TempDir()

	a, err := New(cfg, NewLogger("error"))
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &storage.FileStore{}, a.Backend.History)
	assert.Equal(t, model.RunnerStatusIdle, a.Runner.Status().Status)

	_, err = a.Backend.History.ReadAll(context.Background())
	assert.True(t, errors.Is(err, storage.ErrHistoryNotFound))
}

func TestNewUnknownDriver(t *testing.T) {
	cfg := config.FromEnv()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Browser.Driver = "selenium"

	_, err := New(cfg, NewLogger("error"))
	assert.ErrorIs(t, err, browser.ErrUnknownDriver)
}
