package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "NOTIFY_CHANNEL", "NOTIFY_POLL_INTERVAL_SEC", "REMOTE_MODE",
		"CACHE_TTL_SEC", "CACHE_REWARM_SEC", "RABBITMQ_URI", "INITIAL_LOAD", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8085", cfg.HttpPort)
	assert.Equal(t, "items_channel", cfg.NotifyChannel)
	assert.Equal(t, 5*time.Second, cfg.NotifyPollInterval())
	assert.Equal(t, RemoteModeRest, cfg.RemoteMode)
	assert.Equal(t, time.Hour, cfg.CacheTtl())
	assert.Equal(t, 1800, cfg.CacheRewarmSec)
	assert.Equal(t, "", cfg.RabbitUri)
	assert.True(t, cfg.InitialLoad)
	assert.Equal(t, 0, cfg.RedisDb)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("NOTIFY_POLL_INTERVAL_SEC", "soon")
	t.Setenv("INITIAL_LOAD", "maybe")

	cfg := Load()
	assert.Equal(t, 5, cfg.NotifyPollIntervalSec)
	assert.True(t, cfg.InitialLoad)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REMOTE_MODE", "POSTGRES")
	t.Setenv("REMOTE_PG_DSN", "postgres://remote/db")
	t.Setenv("INITIAL_LOAD", "false")
	t.Setenv("CACHE_TTL_SEC", "60")

	cfg := Load()
	assert.Equal(t, RemoteModePostgres, cfg.RemoteMode)
	assert.False(t, cfg.InitialLoad)
	assert.Equal(t, time.Minute, cfg.CacheTtl())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{RemoteMode: RemoteModeRest, SupabaseUrl: "https://x.supabase.co", SupabaseKey: "k", NotifyPollIntervalSec: 5, CacheTtlSec: 10}
	require.NoError(t, base.Validate())

	noKey := base
	noKey.SupabaseKey = ""
	assert.Error(t, noKey.Validate())

	badMode := base
	badMode.RemoteMode = "ftp"
	assert.Error(t, badMode.Validate())

	noDsn := base
	noDsn.RemoteMode = RemoteModePostgres
	assert.Error(t, noDsn.Validate())

	badPoll := base
	badPoll.NotifyPollIntervalSec = 0
	assert.Error(t, badPoll.Validate())
}
