package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	OrderStoreFirestore = "firestore"
	OrderStorePostgres  = "postgres"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config holds the environment settings of the whole service.
type Config struct {
	Port string
	Env  string

	GCPProjectID             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string
	GCPCreds                 string
	GCSBucket                string

	CORSAllowedOrigin string
	AdminUIDs         []string

	// catalog cache; disabled when RedisAddr is empty
	RedisAddr           string
	RedisPassword       string
	RedisPasswordSecret string
	CatalogCacheTTL     time.Duration

	OrderStore             string
	DatabaseURL            string
	OrderStrictTransitions bool
}

// Load reads the environment, then an optional .env file in dir.
// Environment variables win over the file.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("GCP_PROJECT_ID", "firstpick-dev")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("ORDER_STORE", OrderStoreFirestore)
	v.SetDefault("ORDER_STRICT_TRANSITIONS", false)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read .env: %w", err)
		}
	}

	project := v.GetString("GCP_PROJECT_ID")
	cfg := &Config{
		Port: v.GetString("PORT"),
		Env:  v.GetString("SERVER_ENV"),

		GCPProjectID:             project,
		FirestoreProjectID:       orDefault(v.GetString("FIRESTORE_PROJECT_ID"), project),
		FirestoreCredentialsFile: v.GetString("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        orDefault(v.GetString("FIREBASE_PROJECT_ID"), project),
		GCPCreds:                 v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		GCSBucket:                v.GetString("GCS_BUCKET"),

		CORSAllowedOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		AdminUIDs:         splitList(v.GetString("ADMIN_UIDS")),

		RedisAddr:           v.GetString("REDIS_ADDR"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisPasswordSecret: v.GetString("REDIS_PASSWORD_SECRET"),
		CatalogCacheTTL:     v.GetDuration("CATALOG_CACHE_TTL"),

		OrderStore:             strings.ToLower(strings.TrimSpace(v.GetString("ORDER_STORE"))),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		OrderStrictTransitions: v.GetBool("ORDER_STRICT_TRANSITIONS"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.OrderStore {
	case OrderStoreFirestore:
	case OrderStorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("%w: ORDER_STORE=postgres requires DATABASE_URL", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown ORDER_STORE %q", ErrInvalidConfig, c.OrderStore)
	}
	if strings.TrimSpace(c.FirestoreProjectID) == "" {
		return fmt.Errorf("%w: FIRESTORE_PROJECT_ID is empty", ErrInvalidConfig)
	}
	if c.CatalogCacheTTL < 0 {
		return fmt.Errorf("%w: CATALOG_CACHE_TTL must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
