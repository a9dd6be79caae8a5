package album

import (
	"context"
	"sort"

	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/utils"
)

const albumsFile = "albums.json"

type jsonRepository struct {
	store *jsonstore.Collection[Album]
}

func NewJSONRepository(dataDir string) Repository {
	return &jsonRepository{store: jsonstore.NewCollection[Album](dataDir, albumsFile)}
}

func (r *jsonRepository) List(ctx context.Context) ([]Album, error) {
	albums, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range albums {
		if albums[i].Images == nil {
			albums[i].Images = []string{}
		}
	}
	sort.SliceStable(albums, func(i, j int) bool { return albums[i].Date.After(albums[j].Date) })
	return albums, nil
}

func (r *jsonRepository) Get(ctx context.Context, id string) (*Album, error) {
	albums, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range albums {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrAlbumNotFound
}

func (r *jsonRepository) Create(ctx context.Context, a Album) (*Album, error) {
	if a.ID == "" {
		a.ID = utils.NewID()
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	err := r.store.Modify(ctx, func(albums []Album) ([]Album, error) {
		return append(albums, a), nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *jsonRepository) Update(ctx context.Context, a Album) error {
	return r.store.Modify(ctx, func(albums []Album) ([]Album, error) {
		for i := range albums {
			if albums[i].ID == a.ID {
				albums[i] = a
				return albums, nil
			}
		}
		return nil, ErrAlbumNotFound
	})
}

func (r *jsonRepository) Delete(ctx context.Context, id string) error {
	return r.store.Modify(ctx, func(albums []Album) ([]Album, error) {
		for i := range albums {
			if albums[i].ID == id {
				return append(albums[:i], albums[i+1:]...), nil
			}
		}
		return nil, ErrAlbumNotFound
	})
}

func (r *jsonRepository) ToggleActive(ctx context.Context, id string) (*Album, error) {
	var toggled Album
	err := r.store.Modify(ctx, func(albums []Album) ([]Album, error) {
		for i := range albums {
			if albums[i].ID == id {
				albums[i].Active = !albums[i].Active
				toggled = albums[i]
				return albums, nil
			}
		}
		return nil, ErrAlbumNotFound
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}
