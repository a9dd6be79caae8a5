package category

import (
	"context"
	"fmt"
	"sort"

	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/utils"
)

const categoriesFile = "categories.json"

type jsonRepository struct {
	store    *jsonstore.Collection[Category]
	onDelete []DeleteHook
}

// NewJSONRepository stores categories in categories.json. onDelete hooks
// detach dependents, matching the ON DELETE SET NULL of the MySQL schema.
func NewJSONRepository(dataDir string, onDelete ...DeleteHook) Repository {
	return &jsonRepository{
		store:    jsonstore.NewCollection[Category](dataDir, categoriesFile),
		onDelete: onDelete,
	}
}

func slugTaken(cats []Category, slug, exceptID string) bool {
	for _, c := range cats {
		if c.Slug == slug && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *jsonRepository) List(ctx context.Context) ([]Category, error) {
	cats, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].Sizes == nil {
			cats[i].Sizes = []string{}
		}
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (r *jsonRepository) find(ctx context.Context, match func(Category) bool) (*Category, error) {
	cats, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if match(c) {
			return &c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (r *jsonRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.find(ctx, func(c Category) bool { return c.Slug == slug })
}

func (r *jsonRepository) Create(ctx context.Context, c Category) (*Category, error) {
	c = prepare(c)
	err := r.store.Modify(ctx, func(cats []Category) ([]Category, error) {
		if slugTaken(cats, c.Slug, "") {
			return nil, ErrSlugTaken
		}
		return append(cats, c), nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *jsonRepository) Update(ctx context.Context, c Category) error {
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Name)
	}
	return r.store.Modify(ctx, func(cats []Category) ([]Category, error) {
		if slugTaken(cats, c.Slug, c.ID) {
			return nil, ErrSlugTaken
		}
		for i := range cats {
			if cats[i].ID == c.ID {
				cats[i] = c
				return cats, nil
			}
		}
		return nil, ErrCategoryNotFound
	})
}

func (r *jsonRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Modify(ctx, func(cats []Category) ([]Category, error) {
		for i := range cats {
			if cats[i].ID == id {
				return append(cats[:i], cats[i+1:]...), nil
			}
		}
		return nil, ErrCategoryNotFound
	})
	if err != nil {
		return err
	}

	for _, hook := range r.onDelete {
		if err := hook(ctx, id); err != nil {
			return fmt.Errorf("detach category %s: %w", id, err)
		}
	}
	return nil
}

func (r *jsonRepository) ToggleActive(ctx context.Context, id string) (*Category, error) {
	var toggled Category
	err := r.store.Modify(ctx, func(cats []Category) ([]Category, error) {
		for i := range cats {
			if cats[i].ID == id {
				cats[i].Active = !cats[i].Active
				toggled = cats[i]
				return cats, nil
			}
		}
		return nil, ErrCategoryNotFound
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}
