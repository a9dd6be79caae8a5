// Package importer copies the JSON fixture files into MySQL. It truncates
// every destination table before inserting, so a run replaces the tables'
// contents with what the fixtures hold.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"clubsite-be/internal/album"
	"clubsite-be/internal/category"
	"clubsite-be/internal/db"
	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/order"
	"clubsite-be/internal/product"
	"clubsite-be/internal/ride"
	"clubsite-be/internal/siteconfig"
	"clubsite-be/internal/user"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type Result struct {
	Entity  string
	File    string
	Rows    int
	Skipped bool
}

// writer inserts already decoded fixture records.
type writer func(ctx context.Context, q db.Querier) (int, error)

type step struct {
	entity string
	file   string
	// tables are truncated in order, children before parents.
	tables []string
	load   func(path string) (writer, error)
}

var now = time.Now

// records decodes a fixture array and inserts it item by item.
func records[T any](insert func(ctx context.Context, q db.Querier, item T) error) func(string) (writer, error) {
	return func(path string) (writer, error) {
		items, err := jsonstore.ReadFile[T](path)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, q db.Querier) (int, error) {
			for i, item := range items {
				if err := insert(ctx, q, item); err != nil {
					return i, fmt.Errorf("record %d: %w", i, err)
				}
			}
			return len(items), nil
		}, nil
	}
}

func loadSiteConfig(path string) (writer, error) {
	var data json.RawMessage
	if _, err := jsonstore.ReadObject(path, &data); err != nil {
		return nil, err
	}
	return func(ctx context.Context, q db.Querier) (int, error) {
		if err := siteconfig.Upsert(ctx, q, data); err != nil {
			return 0, err
		}
		return 1, nil
	}, nil
}

var steps = []step{
	{
		entity: "categories",
		file:   "categories.json",
		tables: []string{"category_sizes", "categories"},
		load: records(func(ctx context.Context, q db.Querier, c category.Category) error {
			if c.ID == "" {
				c.ID = utils.NewID()
			}
			if c.Slug == "" {
				c.Slug = utils.Slugify(c.Name)
			}
			return category.InsertCategory(ctx, q, c)
		}),
	},
	{
		entity: "products",
		file:   "products.json",
		tables: []string{"product_images", "product_sizes", "product_colors", "products"},
		load: records(func(ctx context.Context, q db.Querier, p product.Product) error {
			if p.ID == "" {
				p.ID = utils.NewID()
			}
			if p.Slug == "" {
				p.Slug = utils.Slugify(p.Name)
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now().UTC()
			}
			return product.InsertProduct(ctx, q, p)
		}),
	},
	{
		entity: "rides",
		file:   "rides.json",
		tables: []string{"rides"},
		load: records(func(ctx context.Context, q db.Querier, r ride.Ride) error {
			if r.ID == "" {
				r.ID = utils.NewID()
			}
			if r.Date.IsZero() {
				r.Date = now().UTC()
			}
			return ride.InsertRide(ctx, q, r)
		}),
	},
	{
		entity: "participants",
		file:   "participants.json",
		tables: []string{"participants"},
		load: records(func(ctx context.Context, q db.Querier, p ride.Participant) error {
			if p.ID == "" {
				p.ID = utils.NewID()
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now().UTC()
			}
			return ride.InsertParticipant(ctx, q, p)
		}),
	},
	{
		entity: "users",
		file:   "users.json",
		tables: []string{"user_permissions", "users"},
		load: records(func(ctx context.Context, q db.Querier, rec user.Record) error {
			u := rec.User()
			if u.CreatedAt.IsZero() {
				u.CreatedAt = now().UTC()
			}
			return user.InsertUser(ctx, q, u)
		}),
	},
	{
		entity: "albums",
		file:   "albums.json",
		tables: []string{"album_images", "albums"},
		load: records(func(ctx context.Context, q db.Querier, a album.Album) error {
			if a.ID == "" {
				a.ID = utils.NewID()
			}
			if a.Date.IsZero() {
				a.Date = now().UTC()
			}
			return album.InsertAlbum(ctx, q, a)
		}),
	},
	{
		entity: "site-config",
		file:   "site-config.json",
		tables: []string{"site_config"},
		load:   loadSiteConfig,
	},
	{
		entity: "orders",
		file:   "orders.json",
		tables: []string{"orders"},
		load: records(func(ctx context.Context, q db.Querier, o order.Order) error {
			return order.InsertOrder(ctx, q, order.FillDefaults(o))
		}),
	},
}

// Run imports every fixture in dataDir. q must be a single connection, since
// FOREIGN_KEY_CHECKS is a session setting. The first error stops the run.
func Run(ctx context.Context, q db.Querier, dataDir string) ([]Result, error) {
	log := logger.FromCtx(ctx)
	results := make([]Result, 0, len(steps))

	for _, s := range steps {
		path := filepath.Join(dataDir, s.file)
		res := Result{Entity: s.entity, File: s.file}

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			log.Warn("fixture not found, skipping", zap.String("entity", s.entity), zap.String("file", path))
			res.Skipped = true
			results = append(results, res)
			continue
		}

		log.Info("importing", zap.String("entity", s.entity), zap.String("file", path))

		write, err := s.load(path)
		if err != nil {
			return results, fmt.Errorf("read %s: %w", s.file, err)
		}

		if err := truncate(ctx, q, s.tables); err != nil {
			return results, fmt.Errorf("truncate %s: %w", s.entity, err)
		}

		n, err := write(ctx, q)
		if err != nil {
			return results, fmt.Errorf("import %s: %w", s.entity, err)
		}

		res.Rows = n
		results = append(results, res)
		log.Info("imported", zap.String("entity", s.entity), zap.Int("rows", n))
	}

	return results, nil
}

func truncate(ctx context.Context, q db.Querier, tables []string) error {
	if _, err := db.Exec(ctx, q, `SET FOREIGN_KEY_CHECKS = 0`); err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := db.Exec(ctx, q, `TRUNCATE TABLE `+t); err != nil {
			// re-enable checks before handing the connection back
			_, _ = q.ExecContext(ctx, `SET FOREIGN_KEY_CHECKS = 1`)
			return err
		}
	}
	_, err := db.Exec(ctx, q, `SET FOREIGN_KEY_CHECKS = 1`)
	return err
}
