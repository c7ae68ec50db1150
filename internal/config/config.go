package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	applog "giftfinder/internal/log"
)

const configFileEnvName = "GIFTFINDER_CONFIG"

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Config struct {
	Port          string        `mapstructure:"port"`
	APIBaseURL    string        `mapstructure:"api_base_url"`
	APITimeout    time.Duration `mapstructure:"api_timeout"`
	DBDSN         string        `mapstructure:"db_dsn"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	DefaultLang   string        `mapstructure:"default_lang"`
	TemplatesDir  string        `mapstructure:"templates_dir"`
	StaticDir     string        `mapstructure:"static_dir"`
	LogFile       string        `mapstructure:"log_file"`
	LogLevel      string        `mapstructure:"log_level"`
	BodyLimit     int           `mapstructure:"body_limit"`
	DevMode       bool          `mapstructure:"dev_mode"`
	Kafka         Kafka         `mapstructure:"kafka"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("api_base_url", "http://localhost:5000/api/v1")
	v.SetDefault("api_timeout", 10*time.Second)
	v.SetDefault("db_dsn", "giftfinder.db") // sqlite file in project root
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("default_lang", "ar")
	v.SetDefault("templates_dir", "./web/templates")
	v.SetDefault("static_dir", "./web/static")
	v.SetDefault("log_file", "./giftfinder.log")
	v.SetDefault("log_level", "info")
	v.SetDefault("body_limit", 8<<20)
	v.SetDefault("dev_mode", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "giftfinder-client-events")
}

// Load reads .env, the optional config file and GIFTFINDER_* environment
// variables, in increasing order of precedence. It exits on a broken file.
func Load() Config {
	_ = godotenv.Load()

	cfg, err := Read(configFilepath(os.Args[1:]))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(2)
	}
	cfg.Print()
	return cfg
}

// Read builds a Config from defaults, the file at path (skipped when empty)
// and the environment.
func Read(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GIFTFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// Comma separated lists arrive as one string from the environment.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

func configFilepath(args []string) string {
	cmdLine := pflag.NewFlagSet("giftfinder", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(args)
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}
	return *arg
}

// Print logs the loaded values with the session secret redacted.
func (c Config) Print() {
	secret := "<unset>"
	if c.SessionSecret != "" {
		secret = "<redacted>"
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port":           c.Port,
		"api_base_url":   c.APIBaseURL,
		"api_timeout":    c.APITimeout.String(),
		"db_dsn":         c.DBDSN,
		"session_secret": secret,
		"session_ttl":    c.SessionTTL.String(),
		"default_lang":   c.DefaultLang,
		"templates_dir":  c.TemplatesDir,
		"static_dir":     c.StaticDir,
		"log_file":       c.LogFile,
		"log_level":      c.LogLevel,
		"body_limit":     c.BodyLimit,
		"dev_mode":       c.DevMode,
		"kafka_brokers":  c.Kafka.Brokers,
		"kafka_topic":    c.Kafka.Topic,
	})
}

// Watch re-reads the config file at path whenever it changes and hands the
// fresh values to onChange. It is a no-op without a file.
func Watch(path string, onChange func(Config)) {
	if path == "" {
		return
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		applog.Error(nil, "config.watch", err, map[string]any{"path": path})
		return
	}
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := Read(path)
		if err != nil {
			applog.Error(nil, "config.reload", err, map[string]any{"path": path})
			return
		}
		applog.Info(nil, "config.reloaded", map[string]any{"path": path})
		onChange(cfg)
	})
	v.WatchConfig()
}

// Path reports which config file Load would read.
func Path() string {
	return configFilepath(os.Args[1:])
}
