package user

import (
	"context"
	"database/sql"
	"errors"

	"clubsite-be/internal/db"
	"clubsite-be/internal/utils"
)

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u User) (*User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}

func NewRepository(useMySQL bool, q db.Querier, dataDir string) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir)
}

type repository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &repository{db: q}
}

// InsertUser writes a user and its permissions.
func InsertUser(ctx context.Context, q db.Querier, u User) error {
	if u.Role == "" {
		u.Role = RoleAdmin
	}
	_, err := db.Exec(ctx, q,
		`INSERT INTO users (id, username, passwordHash, role, createdAt) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return insertPermissions(ctx, q, u.ID, u.Permissions)
}

func insertPermissions(ctx context.Context, q db.Querier, userID string, perms []string) error {
	for _, p := range perms {
		if _, err := db.Exec(ctx, q,
			`INSERT INTO user_permissions (userId, permission) VALUES (?, ?)`, userID, p,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) permissions(ctx context.Context, users []User) ([]User, error) {
	if len(users) == 0 {
		return users, nil
	}

	ids := make([]string, len(users))
	index := make(map[string]int, len(users))
	for i := range users {
		ids[i] = users[i].ID
		index[users[i].ID] = i
		users[i].Permissions = []string{}
	}
	placeholders, args := db.In(ids)

	rows, err := db.Query(ctx, r.db,
		`SELECT userId, permission FROM user_permissions WHERE userId IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, perm string
		if err := rows.Scan(&id, &perm); err != nil {
			return nil, err
		}
		users[index[id]].Permissions = append(users[index[id]].Permissions, perm)
	}
	return users, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := db.Query(ctx, r.db,
		`SELECT id, username, passwordHash, role, createdAt FROM users ORDER BY username ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.permissions(ctx, users)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, passwordHash, role, createdAt FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	users, err := r.permissions(ctx, []User{u})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

func (r *repository) Create(ctx context.Context, u User) (*User, error) {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	err := db.WithTx(ctx, r.db, func(q db.Querier) error {
		return InsertUser(ctx, q, u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes role and permissions, and the password when a new hash is set.
func (r *repository) Update(ctx context.Context, u User) error {
	return db.WithTx(ctx, r.db, func(q db.Querier) error {
		var (
			res sql.Result
			err error
		)
		if u.PasswordHash != "" {
			res, err = db.Exec(ctx, q,
				`UPDATE users SET role = ?, passwordHash = ? WHERE id = ?`, u.Role, u.PasswordHash, u.ID,
			)
		} else {
			res, err = db.Exec(ctx, q, `UPDATE users SET role = ? WHERE id = ?`, u.Role, u.ID)
		}
		if err != nil {
			return err
		}
		if err := db.Affected(res, ErrUserNotFound); err != nil {
			return err
		}
		if _, err := db.Exec(ctx, q, `DELETE FROM user_permissions WHERE userId = ?`, u.ID); err != nil {
			return err
		}
		return insertPermissions(ctx, q, u.ID, u.Permissions)
	})
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := db.Exec(ctx, r.db, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrUserNotFound)
}
