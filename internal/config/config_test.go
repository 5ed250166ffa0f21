package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"game": { "adapter": "sim", "baseUrl": "http://game.local" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "sim", viper.GetString("game.adapter"))
	assert.Equal(t, "http://game.local", viper.GetString("game.baseUrl"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "./data", viper.GetString("dataDir"))
	assert.Equal(t, "sqlite", viper.GetString("db.driver"))
	assert.Equal(t, "./data/wayfarer.db", viper.GetString("db.sqlitePath"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "wayfarer", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "wayfarer", viper.GetString("influx.org"))
	assert.Equal(t, "wayfarer_metrics", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "file", viper.GetString("credentials.store"))
	assert.Equal(t, 256, viper.GetInt("notify.bufferSize"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	var notFound viper.ConfigFileNotFoundError
	assert.True(t, errors.As(err, &notFound))

	// defaults are still registered
	assert.Equal(t, 10*time.Second, GetLoopConfig().Interval)
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{"logLevel": `))
	require.Error(t, err)

	var notFound viper.ConfigFileNotFoundError
	assert.False(t, errors.As(err, &notFound))
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetDuration(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testDuration", "90s")
	assert.Equal(t, 90*time.Second, GetDuration("testDuration"))
}

func TestGetGameConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetGameConfig()
	assert.Equal(t, "http", cfg.Adapter)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.CallTimeout)
	assert.Equal(t, 30*time.Second, cfg.LoginTimeout)
	assert.Equal(t, 70.0, cfg.LootRadius)
	assert.Equal(t, 2*time.Second, cfg.EncounterPace)
	assert.Equal(t, time.Second, cfg.ActionPace)
}

func TestGetGameConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"game": { "callTimeout": "3s", "lootRadius": 40, "apiKey": "k" }
	}`)))

	cfg := GetGameConfig()
	assert.Equal(t, 3*time.Second, cfg.CallTimeout)
	assert.Equal(t, 40.0, cfg.LootRadius)
	assert.Equal(t, "k", cfg.APIKey)
}

func TestGetLocationConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"location": { "source": "track", "track": "walk.json", "loop": false, "latitude": 52.5 }
	}`)))

	cfg := GetLocationConfig()
	assert.Equal(t, "track", cfg.Source)
	assert.Equal(t, "walk.json", cfg.Track)
	assert.False(t, cfg.Loop)
	assert.Equal(t, 52.5, cfg.Latitude)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, 5*time.Second, cfg.FastestInterval)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, 5*time.Second, cfg.FlushInterval)
	assert.Equal(t, 10000, cfg.Memory.MaxEntries)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": { "type": "database", "flushInterval": "1m", "memory": { "maxEntries": 5 } }
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "database", sc.Type)
	assert.Equal(t, time.Minute, sc.FlushInterval)
	assert.Equal(t, 5, sc.Memory.MaxEntries)
}

func TestGetDatabaseConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"db": { "driver": "postgres", "host": "db.internal", "slowQuery": "1s" }
	}`)))

	dc := GetDatabaseConfig()
	assert.Equal(t, "postgres", dc.Driver)
	assert.Equal(t, "db.internal", dc.Host)
	assert.Equal(t, "5432", dc.Port)
	assert.Equal(t, "./data/wayfarer.db", dc.SQLitePath)
	assert.Equal(t, time.Second, dc.SlowQuery)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "wayfarer", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4318",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4318", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetStreamAndMonitorConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"stream": { "enabled": true, "secret": "abc" },
		"monitor": { "interval": "1m" }
	}`)))

	sc := GetStreamConfig()
	assert.True(t, sc.Enabled)
	assert.Equal(t, "abc", sc.Secret)
	assert.Equal(t, "ws://localhost:8090/stream", sc.URL)

	mc := GetMonitorConfig()
	assert.True(t, mc.Enabled)
	assert.Equal(t, time.Minute, mc.Interval)
	assert.Equal(t, "./data/status.json", mc.StatusFile)

	cc := GetCredentialsConfig()
	assert.Equal(t, "./data/credentials", cc.Dir)
}
