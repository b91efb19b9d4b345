package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "TRAVELBUDDY"

	defaultDatabasePath        = "travelbuddy.db"
	defaultMediaDir            = "media"
	defaultAPIBaseURL          = "http://127.0.0.1:8080/api"
	defaultAPITimeout          = 15 * time.Second
	defaultBucket              = "travelbuddy"
	defaultRegion              = "us-east-1"
	defaultOnlineCheckInterval = 5 * time.Second
	defaultLogLevel            = "info"
)

// Config holds runtime settings for the journal CLI.
type Config struct {
	DatabasePath string
	MediaDir     string

	APIBaseURL string
	APITimeout time.Duration
	APIToken   string

	// UserEmail selects the account one-shot commands act for.
	UserEmail string

	Storage Storage

	OnlineCheckInterval time.Duration

	LogLevel string
	LogFile  string
}

// Storage configures the S3-compatible object store used for photo uploads.
type Storage struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Direct reports whether photos go straight to the object store rather than
// through the backend's upload endpoint.
func (s Storage) Direct() bool {
	return s.AccessKey != ""
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("media.dir", defaultMediaDir)
	v.SetDefault("api.base_url", defaultAPIBaseURL)
	v.SetDefault("api.timeout", defaultAPITimeout)
	v.SetDefault("api.token", "")
	v.SetDefault("user.email", "")
	v.SetDefault("storage.bucket", defaultBucket)
	v.SetDefault("storage.region", defaultRegion)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("sync.online_check_interval", defaultOnlineCheckInterval)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.file", "")
}

// Load reads and validates configuration from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabasePath: v.GetString("database.path"),
		MediaDir:     v.GetString("media.dir"),
		APIBaseURL:   v.GetString("api.base_url"),
		APITimeout:   v.GetDuration("api.timeout"),
		APIToken:     v.GetString("api.token"),
		UserEmail:    v.GetString("user.email"),
		Storage: Storage{
			Bucket:        v.GetString("storage.bucket"),
			Region:        v.GetString("storage.region"),
			Endpoint:      v.GetString("storage.endpoint"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
		},
		OnlineCheckInterval: v.GetDuration("sync.online_check_interval"),
		LogLevel:            v.GetString("log.level"),
		LogFile:             v.GetString("log.file"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.MediaDir) == "" {
		return fmt.Errorf("media.dir is required")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("sync.online_check_interval must be positive")
	}
	if c.Storage.Direct() && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage.access_key is set")
	}
	return nil
}
