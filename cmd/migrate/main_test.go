package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"clubsite-be/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockOpener(t *testing.T) (func(*config.Config) (*sql.DB, error), sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return func(*config.Config) (*sql.DB, error) { return db, nil }, mock
}

func TestRun_Up(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS.*schema_migrations`).
		WithArgs("0001_init.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectClose()

	err := run(context.Background(), &config.Config{}, "up", open)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_DownNothingApplied(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).WillReturnError(sql.ErrNoRows)
	mock.ExpectClose()

	err := run(context.Background(), &config.Config{}, "down", open)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UnknownMode(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	err := run(context.Background(), &config.Config{}, "sideways", open)
	assert.ErrorContains(t, err, "unknown mode: sideways")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_PingFails(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	err := run(context.Background(), &config.Config{}, "up", open)
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_OpenFails(t *testing.T) {
	open := func(*config.Config) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	err := run(context.Background(), &config.Config{}, "up", open)
	assert.EqualError(t, err, "bad dsn")
}
