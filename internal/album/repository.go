package album

import (
	"context"
	"database/sql"
	"errors"

	"clubsite-be/internal/db"
	"clubsite-be/internal/utils"
)

type Repository interface {
	List(ctx context.Context) ([]Album, error)
	Get(ctx context.Context, id string) (*Album, error)
	Create(ctx context.Context, a Album) (*Album, error)
	Update(ctx context.Context, a Album) error
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*Album, error)
}

func NewRepository(useMySQL bool, q db.Querier, dataDir string) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir)
}

type mysqlRepository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &mysqlRepository{db: q}
}

func InsertAlbum(ctx context.Context, q db.Querier, a Album) error {
	if _, err := db.Exec(ctx, q,
		`INSERT INTO albums (id, title, date, coverImage, active) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Date, a.CoverImage, a.Active,
	); err != nil {
		return err
	}
	return insertImages(ctx, q, a.ID, a.Images)
}

func insertImages(ctx context.Context, q db.Querier, albumID string, images []string) error {
	for i, url := range images {
		if _, err := db.Exec(ctx, q,
			`INSERT INTO album_images (albumId, url, position) VALUES (?, ?, ?)`,
			albumID, url, i,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *mysqlRepository) withImages(ctx context.Context, albums []Album) ([]Album, error) {
	if len(albums) == 0 {
		return albums, nil
	}

	ids := make([]string, len(albums))
	index := make(map[string]int, len(albums))
	for i := range albums {
		ids[i] = albums[i].ID
		index[albums[i].ID] = i
		albums[i].Images = []string{}
	}
	placeholders, args := db.In(ids)

	rows, err := db.Query(ctx, r.db,
		`SELECT albumId, url FROM album_images WHERE albumId IN (`+placeholders+`) ORDER BY albumId, position`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, err
		}
		albums[index[id]].Images = append(albums[index[id]].Images, url)
	}
	return albums, rows.Err()
}

func (r *mysqlRepository) List(ctx context.Context) ([]Album, error) {
	rows, err := db.Query(ctx, r.db, `SELECT id, title, date, coverImage, active FROM albums ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	albums := []Album{}
	for rows.Next() {
		var a Album
		if err := rows.Scan(&a.ID, &a.Title, &a.Date, &a.CoverImage, &a.Active); err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.withImages(ctx, albums)
}

func (r *mysqlRepository) Get(ctx context.Context, id string) (*Album, error) {
	var a Album
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, date, coverImage, active FROM albums WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Date, &a.CoverImage, &a.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, err
	}

	albums, err := r.withImages(ctx, []Album{a})
	if err != nil {
		return nil, err
	}
	return &albums[0], nil
}

func (r *mysqlRepository) Create(ctx context.Context, a Album) (*Album, error) {
	if a.ID == "" {
		a.ID = utils.NewID()
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	err := db.WithTx(ctx, r.db, func(q db.Querier) error {
		return InsertAlbum(ctx, q, a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *mysqlRepository) Update(ctx context.Context, a Album) error {
	return db.WithTx(ctx, r.db, func(q db.Querier) error {
		res, err := db.Exec(ctx, q,
			`UPDATE albums SET title = ?, date = ?, coverImage = ?, active = ? WHERE id = ?`,
			a.Title, a.Date, a.CoverImage, a.Active, a.ID,
		)
		if err != nil {
			return err
		}
		if err := db.Affected(res, ErrAlbumNotFound); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, q, `DELETE FROM album_images WHERE albumId = ?`, a.ID); err != nil {
			return err
		}
		return insertImages(ctx, q, a.ID, a.Images)
	})
}

func (r *mysqlRepository) Delete(ctx context.Context, id string) error {
	res, err := db.Exec(ctx, r.db, `DELETE FROM albums WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrAlbumNotFound)
}

func (r *mysqlRepository) ToggleActive(ctx context.Context, id string) (*Album, error) {
	res, err := db.Exec(ctx, r.db, `UPDATE albums SET active = NOT active WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if err := db.Affected(res, ErrAlbumNotFound); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
