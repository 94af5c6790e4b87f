package connector

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
)

func TestNewDatabaseConnector(t *testing.T) {
	t.Setenv("ODH_DB_HOST", "test-host")
	t.Setenv("ODH_DB_USER", "test-user")
	t.Setenv("ODH_DB_PASSWORD", "test-password")
	t.Setenv("ODH_DB_DATABASE", "test-database")
	t.Setenv("ODH_DB_PORT", "3307")

	logger := createTestLogger()

	// Check that environment variables were used
	db := NewDatabaseConnector("", "", "", "", "", logger)
	if db.Host != "test-host" {
		t.Errorf("Expected host to be 'test-host', got '%s'", db.Host)
	}
	if db.User != "test-user" {
		t.Errorf("Expected user to be 'test-user', got '%s'", db.User)
	}
	if db.Password != "test-password" {
		t.Errorf("Expected password to be 'test-password', got '%s'", db.Password)
	}
	if db.Database != "test-database" {
		t.Errorf("Expected database to be 'test-database', got '%s'", db.Database)
	}
	if db.Port != "3307" {
		t.Errorf("Expected port to be '3307', got '%s'", db.Port)
	}

	// Check that explicit parameters win
	db = NewDatabaseConnector("explicit-host", "explicit-user", "explicit-password", "explicit-database", "3308", logger)
	if db.Host != "explicit-host" {
		t.Errorf("Expected host to be 'explicit-host', got '%s'", db.Host)
	}
	if db.Database != "explicit-database" {
		t.Errorf("Expected database to be 'explicit-database', got '%s'", db.Database)
	}
	if db.Port != "3308" {
		t.Errorf("Expected port to be '3308', got '%s'", db.Port)
	}
}

func TestDSN(t *testing.T) {
	db := NewDatabaseConnector("db.local", "odh", "secret", "catalog", "3306", createTestLogger())
	expected := "odh:secret@tcp(db.local:3306)/catalog?parseTime=true"
	if dsn := db.DSN(); dsn != expected {
		t.Errorf("Expected DSN %q, got %q", expected, dsn)
	}
}

func TestConnectRequiresDatabase(t *testing.T) {
	db := &DatabaseConnector{Host: "localhost", Port: "3306", Logger: createTestLogger()}
	if err := db.Connect(context.Background()); err == nil {
		t.Error("Expected an error when no database name is set")
	}
}

func TestExecuteQuery(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectQuery("SELECT id, name FROM users").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("ada")).
			AddRow(int64(2), nil))

	db := NewDatabaseConnectorWithDB(sqlDB, "catalog", createTestLogger())
	rows, columns, err := db.ExecuteQuery(context.Background(), "SELECT id, name FROM users LIMIT ?", 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(columns) != 2 || columns[0] != "id" || columns[1] != "name" {
		t.Errorf("Unexpected columns %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0]["name"] != "ada" {
		t.Errorf("Expected []byte to be converted to string, got %#v", rows[0]["name"])
	}
	if rows[1]["name"] != nil {
		t.Errorf("Expected NULL to stay nil, got %#v", rows[1]["name"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWithTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer sqlDB.Close()
	db := NewDatabaseConnectorWithDB(sqlDB, "catalog", createTestLogger())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = db.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t VALUES (1)")
		return err
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	failure := errors.New("boom")
	err = db.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected callback error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Helper function to create a silent test logger
func createTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}
