package category

import (
	"context"
	"database/sql"
	"errors"

	"clubsite-be/internal/db"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	Create(ctx context.Context, c Category) (*Category, error)
	Update(ctx context.Context, c Category) error
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*Category, error)
}

// DeleteHook runs after a category is removed from the JSON store. MySQL
// handles dependent rows through foreign keys and never calls it.
type DeleteHook func(ctx context.Context, categoryID string) error

func NewRepository(useMySQL bool, q db.Querier, dataDir string, onDelete ...DeleteHook) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir, onDelete...)
}

// prepare fills id and slug on a new category.
func prepare(c Category) Category {
	if c.ID == "" {
		c.ID = utils.NewID()
	}
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	if c.Sizes == nil {
		c.Sizes = []string{}
	}
	return c
}

type mysqlRepository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &mysqlRepository{db: q}
}

// InsertCategory writes a category and its sizes.
func InsertCategory(ctx context.Context, q db.Querier, c Category) error {
	_, err := db.Exec(ctx, q,
		`INSERT INTO categories (id, name, slug, active) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Active,
	)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrSlugTaken
		}
		return err
	}
	return insertSizes(ctx, q, c.ID, c.Sizes)
}

func insertSizes(ctx context.Context, q db.Querier, categoryID string, sizes []string) error {
	for i, size := range sizes {
		_, err := db.Exec(ctx, q,
			`INSERT INTO category_sizes (categoryId, size, position) VALUES (?, ?, ?)`,
			categoryID, size, i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// loadSizes fetches the sizes of all given categories in one query.
func (r *mysqlRepository) loadSizes(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders, args := db.In(ids)

	rows, err := db.Query(ctx, r.db, `
		SELECT categoryId, size
		FROM category_sizes
		WHERE categoryId IN (`+placeholders+`)
		ORDER BY categoryId, position
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, size string
		if err := rows.Scan(&id, &size); err != nil {
			return nil, err
		}
		out[id] = append(out[id], size)
	}
	return out, rows.Err()
}

func (r *mysqlRepository) withSizes(ctx context.Context, cats []Category) ([]Category, error) {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	sizes, err := r.loadSizes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		cats[i].Sizes = sizes[cats[i].ID]
		if cats[i].Sizes == nil {
			cats[i].Sizes = []string{}
		}
	}
	return cats, nil
}

func (r *mysqlRepository) List(ctx context.Context) ([]Category, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "category.List"))

	rows, err := db.Query(ctx, r.db, `SELECT id, name, slug, active FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Active); err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.withSizes(ctx, cats)
}

func (r *mysqlRepository) getOne(ctx context.Context, where string, arg any) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, active FROM categories WHERE `+where+` = ?`, arg,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	cats, err := r.withSizes(ctx, []Category{c})
	if err != nil {
		return nil, err
	}
	return &cats[0], nil
}

func (r *mysqlRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *mysqlRepository) Create(ctx context.Context, c Category) (*Category, error) {
	c = prepare(c)
	err := db.WithTx(ctx, r.db, func(q db.Querier) error {
		return InsertCategory(ctx, q, c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mysqlRepository) Update(ctx context.Context, c Category) error {
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	return db.WithTx(ctx, r.db, func(q db.Querier) error {
		res, err := db.Exec(ctx, q,
			`UPDATE categories SET name = ?, slug = ?, active = ? WHERE id = ?`,
			c.Name, c.Slug, c.Active, c.ID,
		)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return ErrSlugTaken
			}
			return err
		}
		if err := db.Affected(res, ErrCategoryNotFound); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, q, `DELETE FROM category_sizes WHERE categoryId = ?`, c.ID); err != nil {
			return err
		}
		return insertSizes(ctx, q, c.ID, c.Sizes)
	})
}

func (r *mysqlRepository) Delete(ctx context.Context, id string) error {
	res, err := db.Exec(ctx, r.db, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrCategoryNotFound)
}

func (r *mysqlRepository) ToggleActive(ctx context.Context, id string) (*Category, error) {
	res, err := db.Exec(ctx, r.db, `UPDATE categories SET active = NOT active WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := db.Affected(res, ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return r.getOne(ctx, "id", id)
}
