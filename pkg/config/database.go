package config

import (
	"fmt"
	"log"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
type DB struct {
	Gorm *gorm.DB
}

// InitDB opens the relational store selected by cfg.DBDriver
func InitDB(cfg *Config) (*DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		db, err = OpenSQLite(cfg.SQLitePath)
	default:
		db, err = initPostgres(cfg.PostgresConnStr)
	}
	if err != nil {
		return nil, err
	}
	return &DB{Gorm: db}, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL!")
	return db, nil
}

// OpenSQLite opens a SQLite database file with foreign keys enforced.
// SQLite allows a single writer, so the pool is limited to one connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates the tables, indexes and constraints of every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() {
	if db.Gorm == nil {
		return
	}
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		log.Printf("Error getting SQL DB from GORM: %v\n", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v\n", err)
	} else {
		log.Println("Database connection closed.")
	}
}
