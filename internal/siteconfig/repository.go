// Package siteconfig stores the free-form site settings object edited from
// the admin screens.
package siteconfig

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"clubsite-be/internal/db"
	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/logger"

	"go.uber.org/zap"
)

const siteConfigFile = "site-config.json"

var ErrNotObject = errors.New("site config must be a JSON object")

var emptyObject = json.RawMessage(`{}`)

type Repository interface {
	Get(ctx context.Context) (json.RawMessage, error)
	Save(ctx context.Context, data json.RawMessage) error
}

func NewRepository(useMySQL bool, q db.Querier, dataDir string) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir)
}

func checkObject(data json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return ErrNotObject
	}
	return nil
}

type mysqlRepository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &mysqlRepository{db: q}
}

// Upsert writes the singleton row.
func Upsert(ctx context.Context, q db.Querier, data json.RawMessage) error {
	_, err := db.Exec(ctx, q, `
		INSERT INTO site_config (id, data, updatedAt) VALUES (1, ?, ?)
		ON DUPLICATE KEY UPDATE data = VALUES(data), updatedAt = VALUES(updatedAt)
	`, string(data), time.Now().UTC())
	return err
}

func (r *mysqlRepository) Get(ctx context.Context) (json.RawMessage, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM site_config WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyObject, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (r *mysqlRepository) Save(ctx context.Context, data json.RawMessage) error {
	if err := checkObject(data); err != nil {
		return err
	}
	return Upsert(ctx, r.db, data)
}

type jsonRepository struct {
	path string
	mu   sync.Mutex
}

func NewJSONRepository(dataDir string) Repository {
	return &jsonRepository{path: filepath.Join(dataDir, siteConfigFile)}
}

func (r *jsonRepository) Get(ctx context.Context) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var data json.RawMessage
	ok, err := jsonstore.ReadObject(r.path, &data)
	if err != nil {
		logger.FromCtx(ctx).Error("reading site config failed", zap.String("path", r.path), zap.Error(err))
		return nil, err
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return emptyObject, nil
	}
	return data, nil
}

func (r *jsonRepository) Save(ctx context.Context, data json.RawMessage) error {
	if err := checkObject(data); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := jsonstore.WriteObject(r.path, data); err != nil {
		logger.FromCtx(ctx).Error("writing site config failed", zap.String("path", r.path), zap.Error(err))
		return err
	}
	return nil
}
