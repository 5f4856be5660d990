package config

import (
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// Cart
	CartStorageKey   string  // well-known key of the locally persisted cart
	CartStorageDir   string  // FileStorage directory for guest carts
	DefaultIncrement float64 // kg step for weight lines without an explicit increment
	CartSyncSchedule string  // robfig/cron spec for periodic server sync

	// Catalog
	CatalogCacheTTL int64 // seconds; 0 disables expiry
	CryptKey        string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = newConfig()
	})
}

func newConfig() *Config {
	return &Config{
		AppName:          GetEnv("APP_NAME", "farmstore"),
		Port:             GetEnv("PORT", "8080"),
		Env:              GetEnv("APP_ENV", "dev"),
		Debug:            GetEnvBool("DEBUG", false),
		CartStorageKey:   GetEnv("CART_STORAGE_KEY", "cart"),
		CartStorageDir:   GetEnv("CART_STORAGE_DIR", ".cart"),
		DefaultIncrement: GetEnvFloat("CART_DEFAULT_INCREMENT", 0.25),
		CartSyncSchedule: GetEnv("CART_SYNC_SCHEDULE", "@every 1m"),
		CatalogCacheTTL:  int64(GetEnvInt("CATALOG_CACHE_TTL", 300)),
		CryptKey:         GetEnv("FARMSTORE_CRYPT_KEY", ""),
	}
}
