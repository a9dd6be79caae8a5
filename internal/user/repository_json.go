package user

import (
	"context"
	"sort"

	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/utils"
)

const usersFile = "users.json"

type jsonRepository struct {
	store *jsonstore.Collection[Record]
}

func NewJSONRepository(dataDir string) Repository {
	return &jsonRepository{store: jsonstore.NewCollection[Record](dataDir, usersFile)}
}

func (r *jsonRepository) List(ctx context.Context) ([]User, error) {
	records, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.User())
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *jsonRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	records, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Username == username {
			u := rec.User()
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *jsonRepository) Create(ctx context.Context, u User) (*User, error) {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Role == "" {
		u.Role = RoleAdmin
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	err := r.store.Modify(ctx, func(records []Record) ([]Record, error) {
		for _, rec := range records {
			if rec.Username == u.Username {
				return nil, ErrUsernameTaken
			}
		}
		return append(records, toRecord(u)), nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *jsonRepository) Update(ctx context.Context, u User) error {
	return r.store.Modify(ctx, func(records []Record) ([]Record, error) {
		for i := range records {
			if records[i].ID != u.ID {
				continue
			}
			records[i].Role = u.Role
			records[i].Permissions = u.Permissions
			if u.PasswordHash != "" {
				records[i].PasswordHash = u.PasswordHash
			}
			return records, nil
		}
		return nil, ErrUserNotFound
	})
}

func (r *jsonRepository) Delete(ctx context.Context, id string) error {
	return r.store.Modify(ctx, func(records []Record) ([]Record, error) {
		for i := range records {
			if records[i].ID == id {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, ErrUserNotFound
	})
}
