package product

import (
	"context"
	"sort"

	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/utils"
)

const productsFile = "products.json"

type jsonRepository struct {
	store *jsonstore.Collection[Product]
}

func NewJSONRepository(dataDir string) Repository {
	return &jsonRepository{store: jsonstore.NewCollection[Product](dataDir, productsFile)}
}

func slugTaken(products []Product, slug, exceptID string) bool {
	for _, p := range products {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *jsonRepository) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	all, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	products := []Product{}
	for _, p := range all {
		if !opts.match(p) {
			continue
		}
		p.normalize()
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *jsonRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	all, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.Slug == slug {
			p.normalize()
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *jsonRepository) Create(ctx context.Context, p Product) (*Product, error) {
	p = prepare(p)
	err := r.store.Modify(ctx, func(products []Product) ([]Product, error) {
		if slugTaken(products, p.Slug, "") {
			return nil, ErrSlugTaken
		}
		return append(products, p), nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *jsonRepository) Update(ctx context.Context, p Product) error {
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Name)
	}
	p.normalize()
	return r.store.Modify(ctx, func(products []Product) ([]Product, error) {
		if slugTaken(products, p.Slug, p.ID) {
			return nil, ErrSlugTaken
		}
		for i := range products {
			if products[i].ID == p.ID {
				p.CreatedAt = products[i].CreatedAt
				products[i] = p
				return products, nil
			}
		}
		return nil, ErrProductNotFound
	})
}

func (r *jsonRepository) Delete(ctx context.Context, id string) error {
	return r.store.Modify(ctx, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].ID == id {
				return append(products[:i], products[i+1:]...), nil
			}
		}
		return nil, ErrProductNotFound
	})
}

func (r *jsonRepository) ClearCategory(ctx context.Context, categoryID string) error {
	return r.store.Modify(ctx, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].CategoryID != nil && *products[i].CategoryID == categoryID {
				products[i].CategoryID = nil
			}
		}
		return products, nil
	})
}

func (r *jsonRepository) ToggleActive(ctx context.Context, id string) (*Product, error) {
	var toggled Product
	err := r.store.Modify(ctx, func(products []Product) ([]Product, error) {
		for i := range products {
			if products[i].ID == id {
				products[i].Active = !products[i].Active
				toggled = products[i]
				return products, nil
			}
		}
		return nil, ErrProductNotFound
	})
	if err != nil {
		return nil, err
	}
	toggled.normalize()
	return &toggled, nil
}
