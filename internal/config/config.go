package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "wayfarer.cfg.json"

// GameConfig selects and tunes the game backend adapter.
type GameConfig struct {
	Adapter       string        `json:"adapter" mapstructure:"adapter"`
	BaseURL       string        `json:"baseUrl" mapstructure:"baseUrl"`
	APIKey        string        `json:"apiKey" mapstructure:"apiKey"`
	CallTimeout   time.Duration `json:"callTimeout" mapstructure:"callTimeout"`
	LoginTimeout  time.Duration `json:"loginTimeout" mapstructure:"loginTimeout"`
	LootRadius    float64       `json:"lootRadius" mapstructure:"lootRadius"`
	EncounterPace time.Duration `json:"encounterPace" mapstructure:"encounterPace"`
	ActionPace    time.Duration `json:"actionPace" mapstructure:"actionPace"`
}

// LoopConfig holds scan loop settings.
type LoopConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// LocationConfig selects the position source.
type LocationConfig struct {
	Source          string        `json:"source" mapstructure:"source"`
	Latitude        float64       `json:"latitude" mapstructure:"latitude"`
	Longitude       float64       `json:"longitude" mapstructure:"longitude"`
	Altitude        float64       `json:"altitude" mapstructure:"altitude"`
	Track           string        `json:"track" mapstructure:"track"`
	Loop            bool          `json:"loop" mapstructure:"loop"`
	Interval        time.Duration `json:"interval" mapstructure:"interval"`
	FastestInterval time.Duration `json:"fastestInterval" mapstructure:"fastestInterval"`
}

// CredentialsConfig selects where the one-time credential pair is kept.
type CredentialsConfig struct {
	Store string `json:"store" mapstructure:"store"`
	Dir   string `json:"dir" mapstructure:"dir"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver     string        `json:"driver" mapstructure:"driver"`
	SQLitePath string        `json:"sqlitePath" mapstructure:"sqlitePath"`
	Host       string        `json:"host" mapstructure:"host"`
	Port       string        `json:"port" mapstructure:"port"`
	Username   string        `json:"username" mapstructure:"username"`
	Password   string        `json:"password" mapstructure:"password"`
	Database   string        `json:"database" mapstructure:"database"`
	SlowQuery  time.Duration `json:"slowQuery" mapstructure:"slowQuery"`
}

// MemoryConfig holds in-memory journal settings
type MemoryConfig struct {
	MaxEntries int `json:"maxEntries" mapstructure:"maxEntries"`
}

// StorageConfig holds activity journal settings
type StorageConfig struct {
	Type          string        `json:"type" mapstructure:"type"`
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
	Memory        MemoryConfig  `json:"memory" mapstructure:"memory"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// StreamConfig holds the WebSocket observer stream settings.
type StreamConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Secret  string `json:"secret" mapstructure:"secret"`
}

// MonitorConfig holds status monitor settings.
type MonitorConfig struct {
	Enabled    bool          `json:"enabled" mapstructure:"enabled"`
	Interval   time.Duration `json:"interval" mapstructure:"interval"`
	StatusFile string        `json:"statusFile" mapstructure:"statusFile"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("dataDir", "./data")

	viper.SetDefault("game.adapter", "http")
	viper.SetDefault("game.baseUrl", "http://localhost:8080")
	viper.SetDefault("game.apiKey", "")
	viper.SetDefault("game.callTimeout", "15s")
	viper.SetDefault("game.loginTimeout", "30s")
	viper.SetDefault("game.lootRadius", 70.0)
	viper.SetDefault("game.encounterPace", "2s")
	viper.SetDefault("game.actionPace", "1s")

	viper.SetDefault("loop.interval", "10s")

	viper.SetDefault("location.source", "static")
	viper.SetDefault("location.latitude", 0.0)
	viper.SetDefault("location.longitude", 0.0)
	viper.SetDefault("location.altitude", 0.0)
	viper.SetDefault("location.track", "")
	viper.SetDefault("location.loop", true)
	viper.SetDefault("location.interval", "10s")
	viper.SetDefault("location.fastestInterval", "5s")

	viper.SetDefault("credentials.store", "file")
	viper.SetDefault("credentials.dir", "./data/credentials")

	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.sqlitePath", "./data/wayfarer.db")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wayfarer")
	viper.SetDefault("db.slowQuery", "200ms")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.flushInterval", "5s")
	viper.SetDefault("storage.memory.maxEntries", 10000)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "wayfarer")
	viper.SetDefault("influx.bucket", "wayfarer_metrics")
	viper.SetDefault("influx.backupFile", "./data/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.facility", "wayfarer")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "wayfarer")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.url", "ws://localhost:8090/stream")
	viper.SetDefault("stream.secret", "")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "30s")
	viper.SetDefault("monitor.statusFile", "./data/status.json")

	viper.SetDefault("notify.bufferSize", 256)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing file is
// reported as viper.ConfigFileNotFoundError; defaults stay in effect.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetGameConfig returns the game backend configuration.
func GetGameConfig() GameConfig {
	return GameConfig{
		Adapter:       viper.GetString("game.adapter"),
		BaseURL:       viper.GetString("game.baseUrl"),
		APIKey:        viper.GetString("game.apiKey"),
		CallTimeout:   viper.GetDuration("game.callTimeout"),
		LoginTimeout:  viper.GetDuration("game.loginTimeout"),
		LootRadius:    viper.GetFloat64("game.lootRadius"),
		EncounterPace: viper.GetDuration("game.encounterPace"),
		ActionPace:    viper.GetDuration("game.actionPace"),
	}
}

// GetLoopConfig returns the scan loop configuration.
func GetLoopConfig() LoopConfig {
	return LoopConfig{Interval: viper.GetDuration("loop.interval")}
}

// GetLocationConfig returns the location source configuration.
func GetLocationConfig() LocationConfig {
	return LocationConfig{
		Source:          viper.GetString("location.source"),
		Latitude:        viper.GetFloat64("location.latitude"),
		Longitude:       viper.GetFloat64("location.longitude"),
		Altitude:        viper.GetFloat64("location.altitude"),
		Track:           viper.GetString("location.track"),
		Loop:            viper.GetBool("location.loop"),
		Interval:        viper.GetDuration("location.interval"),
		FastestInterval: viper.GetDuration("location.fastestInterval"),
	}
}

// GetCredentialsConfig returns the credential store configuration.
func GetCredentialsConfig() CredentialsConfig {
	return CredentialsConfig{
		Store: viper.GetString("credentials.store"),
		Dir:   viper.GetString("credentials.dir"),
	}
}

// GetDatabaseConfig returns the database connection settings.
func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:     viper.GetString("db.driver"),
		SQLitePath: viper.GetString("db.sqlitePath"),
		Host:       viper.GetString("db.host"),
		Port:       viper.GetString("db.port"),
		Username:   viper.GetString("db.username"),
		Password:   viper.GetString("db.password"),
		Database:   viper.GetString("db.database"),
		SlowQuery:  viper.GetDuration("db.slowQuery"),
	}
}

// GetStorageConfig returns the activity journal configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:          viper.GetString("storage.type"),
		FlushInterval: viper.GetDuration("storage.flushInterval"),
		Memory: MemoryConfig{
			MaxEntries: viper.GetInt("storage.memory.maxEntries"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetStreamConfig returns the observer stream configuration.
func GetStreamConfig() StreamConfig {
	return StreamConfig{
		Enabled: viper.GetBool("stream.enabled"),
		URL:     viper.GetString("stream.url"),
		Secret:  viper.GetString("stream.secret"),
	}
}

// GetMonitorConfig returns the status monitor configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:    viper.GetBool("monitor.enabled"),
		Interval:   viper.GetDuration("monitor.interval"),
		StatusFile: viper.GetString("monitor.statusFile"),
	}
}
