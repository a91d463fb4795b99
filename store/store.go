// Package store wraps the relational database behind typed lookups and mutations.
package store

import (
	"context"
	"fmt"

	"g2p-curation/config"
	"g2p-curation/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the gorm-backed access layer. A Store returned by Transaction is bound
// to that transaction.
type Store struct {
	DB *gorm.DB
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Open connects to the database selected by cfg.DBDriver.
func Open(cfg *config.Config) (*Store, error) {
	if cfg.DBDriver == "sqlite" {
		return OpenSQLite(cfg.DBSQLitePath)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return New(db), nil
}

// OpenSQLite opens a sqlite database; path may be ":memory:".
func OpenSQLite(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; a single connection also keeps ":memory:" databases alive.
	sqlDB.SetMaxOpenConns(1)
	return New(db), nil
}

// Migrate creates or updates all tables.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(models.All()...)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn in a database transaction. fn must only use the Store it is given.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// UserByEmail returns the user with the given email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// recordHistory attributes a mutation to user. A nil user is stored as user 0.
func (s *Store) recordHistory(ctx context.Context, user *models.User, table string, id uint, action, detail string) error {
	h := models.History{Table: table, RecordID: id, Action: action, Detail: detail}
	if user != nil {
		h.UserID = user.ID
	}
	if err := s.db(ctx).Create(&h).Error; err != nil {
		return fmt.Errorf("recording history for %s %d: %w", table, id, err)
	}
	return nil
}

// HistoryFor lists history rows of one table, oldest first.
func (s *Store) HistoryFor(ctx context.Context, table string) ([]models.History, error) {
	var rows []models.History
	err := s.db(ctx).Where("table_name = ?", table).Order("id").Find(&rows).Error
	return rows, err
}
