package importer

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func expectTruncate(mock sqlmock.Sqlmock, tables ...string) {
	mock.ExpectExec(`SET FOREIGN_KEY_CHECKS = 0`).WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range tables {
		mock.ExpectExec(`TRUNCATE TABLE ` + table + `$`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`SET FOREIGN_KEY_CHECKS = 1`).WillReturnResult(sqlmock.NewResult(0, 0))
}

func newConn(t *testing.T) (*sql.Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func resultFor(t *testing.T, results []Result, entity string) Result {
	t.Helper()
	for _, r := range results {
		if r.Entity == entity {
			return r
		}
	}
	t.Fatalf("no result for %s", entity)
	return Result{}
}

func TestRun_EmptyProductsWithCategories(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "categories.json", `[
		{"id": "c1", "name": "Jerseys", "slug": "jerseys", "sizes": ["s", "m"], "active": true}
	]`)
	writeFixture(t, dir, "products.json", `[]`)

	conn, mock := newConn(t)

	expectTruncate(mock, "category_sizes", "categories")
	mock.ExpectExec(`INSERT INTO categories`).
		WithArgs("c1", "Jerseys", "jerseys", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO category_sizes`).
		WithArgs("c1", "s", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO category_sizes`).
		WithArgs("c1", "m", 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	expectTruncate(mock, "product_images", "product_sizes", "product_colors", "products")

	results, err := Run(context.Background(), conn, dir)
	require.NoError(t, err)
	require.Len(t, results, len(steps))

	assert.Equal(t, 1, resultFor(t, results, "categories").Rows)

	products := resultFor(t, results, "products")
	assert.Equal(t, 0, products.Rows)
	assert.False(t, products.Skipped)

	for _, entity := range []string{"rides", "participants", "users", "albums", "site-config", "orders"} {
		assert.True(t, resultFor(t, results, entity).Skipped, entity)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_AllEntities(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "categories.json", `[{"id": "c1", "name": "Jerseys", "active": true}]`)
	writeFixture(t, dir, "products.json", `[{
		"id": "p1", "name": "Club Jersey", "slug": "club-jersey", "description": "", "price": 55,
		"categoryId": "c1", "active": true, "createdAt": "2024-03-01T12:00:00Z",
		"images": ["/img/a.jpg"], "sizes": [], "colors": [{"name": "Rood", "hex": "#ff0000"}]
	}]`)
	writeFixture(t, dir, "rides.json", `[{
		"id": "r1", "title": "Zondagrit", "date": "2024-06-15T08:30:00Z", "startLocation": "Clubhuis",
		"distance": 80, "description": "", "active": true, "maxParticipants": 20
	}]`)
	writeFixture(t, dir, "participants.json", `[
		{"id": "pa1", "rideId": "r1", "name": "Piet", "email": "piet@example.com", "phone": "", "createdAt": "2024-06-01T10:00:00Z"}
	]`)
	writeFixture(t, dir, "users.json", `[
		{"id": "u1", "username": "beheer", "passwordHash": "$2a$10$hash", "role": "superadmin", "permissions": ["orders"]}
	]`)
	writeFixture(t, dir, "albums.json", `[
		{"id": "a1", "title": "Voorjaar", "date": "2024-04-20T00:00:00Z", "coverImage": "", "images": ["/img/1.jpg"], "active": true}
	]`)
	writeFixture(t, dir, "site-config.json", `{"clubName": "WTC"}`)
	writeFixture(t, dir, "orders.json", `[{
		"id": "AB12CD34", "orderId": "ORDER-1234", "name": "Jan", "email": "jan@example.com", "phone": "",
		"address": "", "color": "black", "size": "l", "delivery": "pickup", "quantity": 0, "price": 50,
		"status": "nieuw", "date": "2024-05-01T10:00:00Z", "isCrew": false,
		"orderedFromSupplier": false, "trackingSent": false
	}]`)

	stamp := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return stamp }
	defer func() { now = orig }()

	conn, mock := newConn(t)

	expectTruncate(mock, "category_sizes", "categories")
	mock.ExpectExec(`INSERT INTO categories`).
		WithArgs("c1", "Jerseys", "jerseys", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectTruncate(mock, "product_images", "product_sizes", "product_colors", "products")
	mock.ExpectExec(`INSERT INTO products`).
		WithArgs("p1", "Club Jersey", "club-jersey", "", 55.0, "c1", true, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO product_images`).WithArgs("p1", "/img/a.jpg", 0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO product_colors`).WithArgs("p1", "Rood", "#ff0000", 0).WillReturnResult(sqlmock.NewResult(1, 1))

	expectTruncate(mock, "rides")
	mock.ExpectExec(`INSERT INTO rides`).WillReturnResult(sqlmock.NewResult(0, 1))

	expectTruncate(mock, "participants")
	mock.ExpectExec(`INSERT INTO participants`).
		WithArgs("pa1", "r1", "Piet", "piet@example.com", "", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectTruncate(mock, "user_permissions", "users")
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "beheer", "$2a$10$hash", "superadmin", stamp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_permissions`).WithArgs("u1", "orders").WillReturnResult(sqlmock.NewResult(1, 1))

	expectTruncate(mock, "album_images", "albums")
	mock.ExpectExec(`INSERT INTO albums`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO album_images`).WithArgs("a1", "/img/1.jpg", 0).WillReturnResult(sqlmock.NewResult(1, 1))

	expectTruncate(mock, "site_config")
	mock.ExpectExec(`INSERT INTO site_config`).
		WithArgs(`{"clubName": "WTC"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectTruncate(mock, "orders")
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(
			"AB12CD34", "ORDER-1234", "Jan", "jan@example.com", "", "",
			"black", "", "l", "pickup", 1, 50.0,
			"nieuw", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false, false, "", false,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	results, err := Run(context.Background(), conn, dir)
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.Skipped, r.Entity)
		assert.Equal(t, 1, r.Rows, r.Entity)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_MalformedFixtureAbortsBeforeTruncate(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "categories.json", `[{"id": "c1", "name": `)

	conn, mock := newConn(t)

	results, err := Run(context.Background(), conn, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read categories.json")
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SQLErrorAborts(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "categories.json", `[{"id": "c1", "name": "Jerseys", "slug": "jerseys"}]`)
	writeFixture(t, dir, "orders.json", `[]`)

	conn, mock := newConn(t)

	expectTruncate(mock, "category_sizes", "categories")
	mock.ExpectExec(`INSERT INTO categories`).WillReturnError(errors.New("table is read only"))

	_, err := Run(context.Background(), conn, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import categories: record 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_TruncateFailureRestoresChecks(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "rides.json", `[]`)

	conn, mock := newConn(t)

	mock.ExpectExec(`SET FOREIGN_KEY_CHECKS = 0`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`TRUNCATE TABLE rides`).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectExec(`SET FOREIGN_KEY_CHECKS = 1`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := Run(context.Background(), conn, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncate rides")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// setTime matches any non-zero time.Time argument.
type setTime struct{}

func (setTime) Match(v driver.Value) bool {
	t, ok := v.(time.Time)
	return ok && !t.IsZero()
}

// rowID matches the 8-character ids of generated order rows.
type rowID struct{}

func (rowID) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && len(s) == 8
}

func TestRun_FillsMissingIDsAndDates(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return at }
	defer func() { now = orig }()

	dir := t.TempDir()
	writeFixture(t, dir, "rides.json", `[{"title": "Zondagrit", "active": true}]`)
	writeFixture(t, dir, "albums.json", `[{"title": "Clubfeest"}]`)
	writeFixture(t, dir, "orders.json", `[{"orderId": "ORDER-2000", "name": "Els", "color": "red", "size": "m", "price": 20}]`)

	conn, mock := newConn(t)

	expectTruncate(mock, "rides")
	mock.ExpectExec(`INSERT INTO rides`).
		WithArgs(sqlmock.AnyArg(), "Zondagrit", at, "", 0, "", true, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectTruncate(mock, "album_images", "albums")
	mock.ExpectExec(`INSERT INTO albums`).
		WithArgs(sqlmock.AnyArg(), "Clubfeest", at, "", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectTruncate(mock, "orders")
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(
			rowID{}, "ORDER-2000", "Els", "", "", "",
			"red", "", "m", "pickup", 1, 20.0,
			"nieuw", setTime{}, false, false, "", false,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	results, err := Run(context.Background(), conn, dir)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	rows := map[string]int{}
	for _, r := range results {
		rows[r.Entity] = r.Rows
	}
	assert.Equal(t, 1, rows["rides"])
	assert.Equal(t, 1, rows["albums"])
	assert.Equal(t, 1, rows["orders"])
}
