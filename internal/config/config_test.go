package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDefaults(t *testing.T) {
	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, "ar", cfg.DefaultLang)
	assert.Equal(t, 8<<20, cfg.BodyLimit)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestReadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "giftfinder.yaml")
	body := "port: \"9090\"\napi_base_url: http://api.test/api/\napi_timeout: 3s\nkafka:\n  topic: events\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("GIFTFINDER_DEFAULT_LANG", "en")
	t.Setenv("GIFTFINDER_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://api.test/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "events", cfg.Kafka.Topic)
	assert.Equal(t, "en", cfg.DefaultLang)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigFilepath(t *testing.T) {
	assert.Equal(t, "a.yaml", configFilepath([]string{"--config", "a.yaml", "--other"}))
	t.Setenv(configFileEnvName, "b.yaml")
	assert.Equal(t, "b.yaml", configFilepath([]string{"--config", "a.yaml"}))
}

func TestWatchReloadsDefaultLang(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giftfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_lang: ar\n"), 0o600))

	var lang atomic.Value
	Watch(path, func(c Config) { lang.Store(c.DefaultLang) })

	require.NoError(t, os.WriteFile(path, []byte("default_lang: en\n"), 0o600))
	require.Eventually(t, func() bool {
		v, _ := lang.Load().(string)
		return v == "en"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchWithoutFile(t *testing.T) {
	Watch("", func(Config) { t.Fatal("unexpected reload") })
}
