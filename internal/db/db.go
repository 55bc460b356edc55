package db

import (
	"fmt"
	"time"

	"ama/internal/config"
	"ama/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(Dialector(cfg), &gorm.Config{
		// Unique index violations come back as gorm.ErrDuplicatedKey.
		TranslateError: true,
		Logger:         newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established", zap.String("driver", cfg.DatabaseDriver))

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info("Database migration completed")

	return conn, nil
}

// Dialector picks the gorm driver. MySQL DSNs need parseTime=true.
func Dialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DatabaseDriver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DatabaseURL)
	default:
		return postgres.Open(cfg.DatabaseURL)
	}
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Question{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func newGormLogger(log *zap.Logger) gormlogger.Interface {
	return gormlogger.New(
		zap.NewStdLog(log.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
