package config

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultTokenStoreURL is the sqlite file used when TOKEN_STORE_URL is not set
const DefaultTokenStoreURL = "techsupport.db"

var DB *gorm.DB

// ConnectDatabase opens the local token store.
// postgres:// and postgresql:// URLs use the postgres driver, anything else is a sqlite DSN.
func ConnectDatabase(databaseURL string) error {
	if databaseURL == "" {
		databaseURL = DefaultTokenStoreURL
		log.Println("TOKEN_STORE_URL not set, using default:", databaseURL)
	}

	db, err := gorm.Open(Dialector(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to token store: %w", err)
	}

	DB = db
	log.Println("Token store connection established successfully")
	return nil
}

// Dialector picks the gorm driver for a store URL
func Dialector(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL)
	}
	return sqlite.Open(databaseURL)
}

// IsPostgres reports whether the store URL targets postgres
func IsPostgres(databaseURL string) bool {
	_, ok := Dialector(databaseURL).(*postgres.Dialector)
	return ok
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
