// Package config loads server settings from the environment, an optional
// .env file and command line flags.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Keys as seen by viper. Each one is also read from the upper-cased
// environment variable (store_driver -> STORE_DRIVER).
const (
	KeyPort          = "port"
	KeyStoreDriver   = "store_driver"
	KeyDatabaseURL   = "database_url"
	KeyMongoURI      = "mongodb_uri"
	KeyMongoDatabase = "mongodb_database"
	KeyCurrentUserID = "current_user_id"
	KeyCORSOrigins   = "cors_origins"
	KeyUploadDir     = "upload_dir"
	KeyLogLevel      = "log_level"
	KeyStoreTimeout  = "store_timeout"
	KeySeed          = "seed"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port          string
	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	CurrentUserID int64
	CORSOrigins   string
	UploadDir     string
	LogLevel      string
	StoreTimeout  time.Duration
	Seed          bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyStoreDriver, DriverMemory)
	v.SetDefault(KeyMongoDatabase, "whatsapp")
	v.SetDefault(KeyCurrentUserID, 1)
	v.SetDefault(KeyCORSOrigins, "http://localhost:3000")
	v.SetDefault(KeyUploadDir, "./uploads")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStoreTimeout, 5*time.Second)
	v.SetDefault(KeySeed, true)
}

// LoadEnvFile loads .env files into the process environment. A missing file
// is not an error.
func LoadEnvFile(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		jww.DEBUG.Printf("No .env file found")
	}
}

// Load reads the configuration from v, which should already have defaults,
// environment binding and flags attached.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString(KeyPort),
		StoreDriver:   strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreDriver))),
		DatabaseURL:   v.GetString(KeyDatabaseURL),
		MongoURI:      v.GetString(KeyMongoURI),
		MongoDatabase: v.GetString(KeyMongoDatabase),
		CurrentUserID: v.GetInt64(KeyCurrentUserID),
		CORSOrigins:   v.GetString(KeyCORSOrigins),
		UploadDir:     v.GetString(KeyUploadDir),
		LogLevel:      strings.ToLower(v.GetString(KeyLogLevel)),
		StoreTimeout:  v.GetDuration(KeyStoreTimeout),
		Seed:          v.GetBool(KeySeed),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is not set")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI environment variable is not set")
		}
	default:
		return errors.Errorf("unknown store driver %q, must be memory, postgres or mongo", c.StoreDriver)
	}

	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.CurrentUserID <= 0 {
		return errors.Errorf("current user id must be positive, got %d", c.CurrentUserID)
	}
	if c.StoreTimeout <= 0 {
		return errors.Errorf("store timeout must be positive, got %s", c.StoreTimeout)
	}
	return nil
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}
