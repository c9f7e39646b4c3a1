package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsBeforeLoad(t *testing.T) {
	if instance != nil {
		t.Skip("config already loaded")
	}
	assert.Equal(t, 20, GetConfigValue("blocksize"))
	assert.Equal(t, 150*time.Millisecond, Settings().UpdatePeriod)
}

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	c := LoadConfig(path)

	require.FileExists(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk AppConfig
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, *c, onDisk)

	assert.Equal(t, "38870", GetConfigValue("port"))
	assert.Equal(t, "game.db", GetConfigValue("database"))
	assert.Equal(t, "", GetConfigValue("nope"))

	s := Settings()
	assert.Equal(t, c.Width, s.Width)
	assert.Equal(t, c.Lives, s.StartingLives)
	assert.Equal(t, time.Duration(c.UpdatePeriodMs)*time.Millisecond, s.UpdatePeriod)

	// 已加载的单例不会被再次读取
	assert.Same(t, c, LoadConfig(filepath.Join(t.TempDir(), "other.json")))
}
