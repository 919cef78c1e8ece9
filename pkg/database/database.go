package database

import (
	"fmt"
	"time"

	"indrhi-inventory/pkg/config"
	applog "indrhi-inventory/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the database selected by DB_DRIVER. MySQL is the primary
// store; postgres keeps the legacy hosted database reachable.
func ConnectDB(cfg *config.Config) *gorm.DB {
	log := applog.Get()
	dialector, err := Dialector(cfg)
	if err != nil {
		log.Fatal(err)
	}

	newLogger := logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database. \n", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle. \n", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.WithField("driver", cfg.DBDriver).Info("Database connection established")
	return db
}

// Dialector builds the GORM dialector for the configured driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", "mysql":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			port := cfg.DBPort
			if port == "" {
				port = "3306"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, port, cfg.DBName)
		}
		return mysql.Open(dsn), nil

	case "postgres":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			port := cfg.DBPort
			if port == "" {
				port = "5432"
			}
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=America/Santo_Domingo",
				cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, port,
			)
		}
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // hosted poolers run in transaction mode
		}), nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use mysql or postgres)", cfg.DBDriver)
	}
}
