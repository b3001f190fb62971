package database

import (
	"fmt"
	"log/slog"

	"cohabit-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the postgres database at dsn and migrates every model.
func Connect(dsn string) error {
	return Open(postgres.Open(dsn), logger.Warn)
}

// Open connects through any gorm dialector and migrates every model.
func Open(dialector gorm.Dialector, level logger.LogLevel) error {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("Database connected successfully", "dialect", dialector.Name())

	// Auto-migrate all models
	err = db.AutoMigrate(
		&models.User{},
		&models.Household{},
		&models.HouseholdMember{},
		&models.Expense{},
		&models.ExpenseParticipant{},
		&models.Chore{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database migrated successfully")
	DB = db
	return nil
}
