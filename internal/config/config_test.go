package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Run("Defaults are applied to missing keys", func(t *testing.T) {
		// Given: a config file that only sets the port
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("http-port: \"8080\"\n"), 0o600))

		// When: loading it
		conf := MustLoad(path)

		// Then: the port is read and the rest falls back to defaults
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, StorageMemory, conf.Storage.Driver)
		assert.Equal(t, "Player 1", conf.Game.PlayerXName)
		assert.Equal(t, "Player 2", conf.Game.PlayerOName)
		assert.Equal(t, time.Hour, conf.Game.SessionTTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Panics on a missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
