// Package database opens the relational store, migrates the schema and seeds
// the fixed role table.
package database

import (
	"fmt"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func initModels(conn *gorm.DB) error {
	models := []any{
		&model.Player{},
		&model.User{},
		&model.Role{},
		&model.UserRole{},
	}
	for _, m := range models {
		if err := conn.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model %T: %v", m, err)
			return err
		}
	}
	return nil
}

// initRoles inserts every known role that is missing.
func initRoles(conn *gorm.DB) error {
	for _, name := range model.AppRoles {
		role := model.Role{}
		result := conn.Where(model.Role{RoleName: name}).FirstOrCreate(&role)
		if result.Error != nil {
			return fmt.Errorf("seed role %s: %w", name, result.Error)
		}
		if result.RowsAffected > 0 {
			logger.Info("role seeded:", name)
		}
	}
	return nil
}

// Open connects to the configured database, migrates it and seeds roles.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	var gormLogger gormlogger.Interface
	if debug {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabaseTypePostgreSQL:
		dialector = postgres.Open(cfg.GetDSN())
	default:
		if err := cfg.EnsureDirectoryExists(); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.GetDSN())
	}

	conn, err := gorm.Open(dialector, c)
	if err != nil {
		return nil, err
	}

	if cfg.IsSQLite() {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		if _, err = sqlDB.Exec("PRAGMA cache_size = -64000;"); err != nil {
			return nil, err
		}
		if _, err = sqlDB.Exec("PRAGMA temp_store = MEMORY;"); err != nil {
			return nil, err
		}
	}

	if err := initModels(conn); err != nil {
		return nil, err
	}
	if err := initRoles(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// InitDB opens the database and keeps it as the process-wide connection.
func InitDB(cfg *config.DatabaseConfig, debug bool) error {
	conn, err := Open(cfg, debug)
	if err != nil {
		return err
	}
	db = conn
	return nil
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			logger.Warning("error executing checkpoint:", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		db = nil
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

// Checkpoint flushes the sqlite write-ahead log. It is a no-op on other databases.
func Checkpoint() error {
	if db == nil || db.Dialector.Name() != "sqlite" {
		return nil
	}
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
