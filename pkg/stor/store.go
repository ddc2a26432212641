// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// The stor package manages the storage of analytics events.
package stor

import (
	"fmt"
	"os"
	"strings"
	"time"

	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type (

	// generic store
	dbStore struct {
		db *gorm.DB
	}

	// entity stores
	eventStore     dbStore
	dashboardStore dbStore

	// Store interface, giving access to specialized interfaces
	Store interface {
		Event() EventRepository
		Dashboard() DashboardRepository
	}

	// EventRepository interface, defining analytics event operations.
	// Events are append-only, there is no update.
	EventRepository interface {
		List(pageNum, pageSize int) (*[]AnalyticsEvent, error)
		FindByName(eventName string) (*[]AnalyticsEvent, error)
		FindByClaim(claimID string) (*[]AnalyticsEvent, error)
		FindByDate(date string) (*[]AnalyticsEvent, error)
		Count() (int64, error)
		Get(uuid string) (*AnalyticsEvent, error)
		Create(e *AnalyticsEvent) error
	}

	// DashboardRepository interface, defining dashboard operations
	DashboardRepository interface {
		GetDashboard(windowDays int) (*DashboardData, error)
	}
)

// implementation of the different repository interfaces
func (s *dbStore) Event() EventRepository {
	return (*eventStore)(s)
}

// Dashboard implements Store.
func (s *dbStore) Dashboard() DashboardRepository {
	return (*dashboardStore)(s)
}

// Init initializes the database
func Init(dsn string) (Store, error) {
	var err error

	dialect, cnx := dbFromURI(dsn)
	if dialect == "error" {
		return nil, fmt.Errorf("incorrect database source name: %q", dsn)
	}

	// add parameters specific to the dialect
	cnx = addParamsDialectSpecific(cnx, dialect)

	// database logger
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level (Silent, Error, Warn, Info)
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,        // Enable color
		},
	)

	db, err := gorm.Open(GormDialector(cnx), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		log.Printf("Failed connecting to the database: %v", err)
		return nil, err
	}

	err = performDialectSpecific(db, dialect)
	if err != nil {
		log.Printf("Failed performing dialect specific database init: %v", err)
		return nil, err
	}

	err = db.AutoMigrate(&AnalyticsEvent{})
	if err != nil {
		log.Printf("Failed performing database automigrate: %v", err)
		return nil, err
	}

	stor := &dbStore{db: db}

	return stor, nil
}

// dbFromURI
func dbFromURI(uri string) (string, string) {
	parts := strings.Split(uri, "://")
	if len(parts) != 2 {
		return "error", ""
	}
	return parts[0], parts[1]
}

// addParamsDialectSpecific takes a connection string and adds parameters specific to the SQL dialect
func addParamsDialectSpecific(cnx, dialect string) string {
	sep := "?"
	if strings.Contains(cnx, "?") {
		sep = "&"
	}
	switch dialect {
	case "sqlite3":
		// keep the parameters of an explicit uri, e.g. an in-memory db
		if sep == "?" {
			cnx += sep + "cache=shared&mode=rwc"
		}
	case "mysql":
		cnx += sep + "charset=utf8mb4&parseTime=True&loc=Local"
	case "postgres":
		if !strings.Contains(cnx, "sslmode=") {
			cnx += sep + "sslmode=disable"
		}
	default:
		log.Printf("Invalid dialect: %s", dialect)
	}
	return cnx
}

// performDialectSpecific
func performDialectSpecific(db *gorm.DB, dialect string) error {
	switch dialect {
	case "sqlite3":
		err := db.Exec("PRAGMA journal_mode = WAL").Error
		if err != nil {
			return err
		}
	case "mysql":
		// nothing , so far
	case "postgres":
		// nothing , so far
	default:
		return fmt.Errorf("invalid dialect: %s", dialect)
	}
	return nil
}
