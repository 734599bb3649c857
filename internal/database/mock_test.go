// ABOUTME: Driver-level tests for the relational accessor using go-sqlmock
// ABOUTME: Verifies the exact statements issued and error propagation
package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestSeed_IssuesBothInserts(t *testing.T) {
	conn, mock := newSQLMock(t)
	db := New(conn)

	mock.ExpectExec(`INSERT INTO customers \(name, email\)`).WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectExec(`INSERT INTO orders \(customer_id, order_date, amount, product\)`).WillReturnResult(sqlmock.NewResult(5, 5))

	inserted, err := db.Seed(context.Background(), SeedOptions{})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if !inserted {
		t.Error("inserted = false")
	}
	assertSQLMock(t, mock)
}

func TestSeed_StopsOnCustomerInsertFailure(t *testing.T) {
	conn, mock := newSQLMock(t)
	db := New(conn)
	sentinel := errors.New("disk full")

	mock.ExpectExec(`INSERT INTO customers`).WillReturnError(sentinel)

	_, err := db.Seed(context.Background(), SeedOptions{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Seed() error = %v, want wrapped sentinel", err)
	}
	assertSQLMock(t, mock)
}

func TestSeed_SkipIfPresentChecksCount(t *testing.T) {
	conn, mock := newSQLMock(t)
	db := New(conn)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	inserted, err := db.Seed(context.Background(), SeedOptions{SkipIfPresent: true})
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if inserted {
		t.Error("inserted = true, want skip")
	}
	assertSQLMock(t, mock)
}

func TestSchema_IntrospectionQueries(t *testing.T) {
	conn, mock := newSQLMock(t)
	db := New(conn)

	pragmaCols := []string{"cid", "name", "type", "notnull", "dflt_value", "pk"}

	mock.ExpectQuery(regexp.QuoteMeta(selectTablesQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("customers"))
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA table_info("customers")`)).
		WillReturnRows(sqlmock.NewRows(pragmaCols).
			AddRow(0, "id", "INTEGER", 0, nil, 1).
			AddRow(1, "name", "TEXT", 1, nil, 0))

	schema, err := db.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	if len(schema) != 1 || schema[0].Describe() != "table: customers, columns : id,name" {
		t.Errorf("schema = %+v", schema)
	}
	assertSQLMock(t, mock)
}

func TestExecute_PropagatesDriverError(t *testing.T) {
	conn, mock := newSQLMock(t)
	db := New(conn)
	sentinel := errors.New(`near "SELEC": syntax error`)

	mock.ExpectQuery("SELEC").WillReturnError(sentinel)

	result, err := db.Execute(context.Background(), "SELEC 1")
	if !errors.Is(err, sentinel) {
		t.Fatalf("Execute() error = %v, want wrapped sentinel", err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
	assertSQLMock(t, mock)
}

func TestExecute_ConvertsBytesToStrings(t *testing.T) {
	conn, mock := newSQLMock(t)
	db := New(conn)

	mock.ExpectQuery("SELECT name FROM customers").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("Alice Smith")))

	result, err := db.Execute(context.Background(), "SELECT name FROM customers")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Rows[0][0] != "Alice Smith" {
		t.Errorf("cell = %#v, want string", result.Rows[0][0])
	}
	assertSQLMock(t, mock)
}
