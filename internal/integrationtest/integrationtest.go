// Package integrationtest provides db helpers used in integration tests.
//
// Tests share one database and may run in parallel across packages,
// so they seed uniquely named data and assert only on what they created.
package integrationtest

import (
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-wallet/cmd/httpserver"
	"github.com/go-petr/pet-wallet/internal/middleware"
	"github.com/go-petr/pet-wallet/pkg/configpkg"
	"github.com/go-petr/pet-wallet/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// ConfigPath is the configs directory relative to a package two levels below the module root.
const ConfigPath = "../../configs"

// LoadConfig loads the application config or fails the test.
func LoadConfig(t *testing.T) configpkg.Config {
	t.Helper()

	config, err := configpkg.Load(ConfigPath)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, ConfigPath, err)
	}

	return config
}

// SetupServer returns test server backed by the configured database.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config := LoadConfig(t)

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	db := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// SetupDB sets up connection with database for testing and closes it once the test is done.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Errorf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	return tx
}
