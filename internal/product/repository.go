package product

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"clubsite-be/internal/db"
	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*Product, error)
	// ClearCategory detaches every product from a deleted category.
	ClearCategory(ctx context.Context, categoryID string) error
}

func NewRepository(useMySQL bool, q db.Querier, dataDir string) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir)
}

var now = time.Now

func prepare(p Product) Product {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Name)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now().UTC()
	}
	p.normalize()
	return p
}

type mysqlRepository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &mysqlRepository{db: q}
}

const productColumns = `id, name, slug, description, price, categoryId, active, createdAt`

// InsertProduct writes a product row and its images, sizes and colors.
func InsertProduct(ctx context.Context, q db.Querier, p Product) error {
	_, err := db.Exec(ctx, q,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, db.NullString(p.CategoryID), p.Active, p.CreatedAt,
	)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrSlugTaken
		}
		return err
	}
	return insertChildren(ctx, q, p)
}

func insertChildren(ctx context.Context, q db.Querier, p Product) error {
	for i, url := range p.Images {
		if _, err := db.Exec(ctx, q,
			`INSERT INTO product_images (productId, url, position) VALUES (?, ?, ?)`,
			p.ID, url, i,
		); err != nil {
			return err
		}
	}
	for i, size := range p.Sizes {
		if _, err := db.Exec(ctx, q,
			`INSERT INTO product_sizes (productId, size, position) VALUES (?, ?, ?)`,
			p.ID, size, i,
		); err != nil {
			return err
		}
	}
	for i, c := range p.Colors {
		if _, err := db.Exec(ctx, q,
			`INSERT INTO product_colors (productId, name, hex, position) VALUES (?, ?, ?, ?)`,
			p.ID, c.Name, c.Hex, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, q db.Querier, productID string) error {
	for _, table := range []string{"product_images", "product_sizes", "product_colors"} {
		if _, err := db.Exec(ctx, q, `DELETE FROM `+table+` WHERE productId = ?`, productID); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (Product, error) {
	var (
		p          Product
		categoryID sql.NullString
	)
	err := s.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &categoryID, &p.Active, &p.CreatedAt)
	if categoryID.Valid {
		p.CategoryID = utils.StrPtr(categoryID.String)
	}
	return p, err
}

// withChildren loads images, sizes and colors for all products with one
// query per child table.
func (r *mysqlRepository) withChildren(ctx context.Context, products []Product) ([]Product, error) {
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].normalize()
	}
	placeholders, args := db.In(ids)

	if err := r.eachRow(ctx, `SELECT productId, url FROM product_images WHERE productId IN (`+placeholders+`) ORDER BY productId, position`, args,
		func(rows *sql.Rows) error {
			var id, url string
			if err := rows.Scan(&id, &url); err != nil {
				return err
			}
			products[index[id]].Images = append(products[index[id]].Images, url)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := r.eachRow(ctx, `SELECT productId, size FROM product_sizes WHERE productId IN (`+placeholders+`) ORDER BY productId, position`, args,
		func(rows *sql.Rows) error {
			var id, size string
			if err := rows.Scan(&id, &size); err != nil {
				return err
			}
			products[index[id]].Sizes = append(products[index[id]].Sizes, size)
			return nil
		}); err != nil {
		return nil, err
	}

	if err := r.eachRow(ctx, `SELECT productId, name, hex FROM product_colors WHERE productId IN (`+placeholders+`) ORDER BY productId, position`, args,
		func(rows *sql.Rows) error {
			var (
				id string
				c  Color
			)
			if err := rows.Scan(&id, &c.Name, &c.Hex); err != nil {
				return err
			}
			products[index[id]].Colors = append(products[index[id]].Colors, c)
			return nil
		}); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *mysqlRepository) eachRow(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	rows, err := db.Query(ctx, r.db, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *mysqlRepository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "product.List"))

	var (
		where []string
		args  []any
	)
	if opts.OnlyActive {
		where = append(where, "active = TRUE")
	}
	if opts.CategoryID != "" {
		where = append(where, "categoryId = ?")
		args = append(args, opts.CategoryID)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY createdAt DESC`

	rows, err := db.Query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.withChildren(ctx, products)
}

func (r *mysqlRepository) getOne(ctx context.Context, where string, arg any) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+where+` = ?`, arg,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	products, err := r.withChildren(ctx, []Product{p})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *mysqlRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *mysqlRepository) Create(ctx context.Context, p Product) (*Product, error) {
	p = prepare(p)
	err := db.WithTx(ctx, r.db, func(q db.Querier) error {
		return InsertProduct(ctx, q, p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mysqlRepository) Update(ctx context.Context, p Product) error {
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Name)
	}
	return db.WithTx(ctx, r.db, func(q db.Querier) error {
		res, err := db.Exec(ctx, q, `
			UPDATE products
			SET name = ?, slug = ?, description = ?, price = ?, categoryId = ?, active = ?
			WHERE id = ?
		`, p.Name, p.Slug, p.Description, p.Price, db.NullString(p.CategoryID), p.Active, p.ID)
		if err != nil {
			if db.IsDuplicateKey(err) {
				return ErrSlugTaken
			}
			return err
		}
		if err := db.Affected(res, ErrProductNotFound); err != nil {
			return err
		}
		if err := deleteChildren(ctx, q, p.ID); err != nil {
			return err
		}
		return insertChildren(ctx, q, p)
	})
}

func (r *mysqlRepository) Delete(ctx context.Context, id string) error {
	res, err := db.Exec(ctx, r.db, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrProductNotFound)
}

func (r *mysqlRepository) ClearCategory(ctx context.Context, categoryID string) error {
	_, err := db.Exec(ctx, r.db, `UPDATE products SET categoryId = NULL WHERE categoryId = ?`, categoryID)
	return err
}

func (r *mysqlRepository) ToggleActive(ctx context.Context, id string) (*Product, error) {
	res, err := db.Exec(ctx, r.db, `UPDATE products SET active = NOT active WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := db.Affected(res, ErrProductNotFound); err != nil {
		return nil, err
	}
	return r.getOne(ctx, "id", id)
}
