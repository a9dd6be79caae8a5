package user

import "time"

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User is an admin account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Record is the stored form of a User, as kept in users.json.
type Record struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r Record) User() User {
	u := User(r)
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	if u.Role == "" {
		u.Role = RoleAdmin
	}
	return u
}

func toRecord(u User) Record {
	return Record(u)
}

type RegisterInput struct {
	Username    string   `json:"username" validate:"required,min=3,max=100"`
	Password    string   `json:"password" validate:"required,min=8"`
	Role        string   `json:"role" validate:"omitempty,oneof=admin superadmin"`
	Permissions []string `json:"permissions"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
