package domain

import "strings"

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           int64  `json:"userId"`
	Login        string `json:"login"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// UserPatch carries the fields of a partial profile update. Nil means unchanged.
type UserPatch struct {
	Login        *string
	Email        *string
	Phone        *string
	Role         *Role
	PasswordHash *string
}

func (p UserPatch) Empty() bool {
	return p.Login == nil && p.Email == nil && p.Phone == nil && p.Role == nil && p.PasswordHash == nil
}

type Registration struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (r *Registration) Validate() error {
	r.Login = strings.TrimSpace(r.Login)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Login == "" || r.Email == "" || r.Password == "" || r.Phone == "" {
		return Invalid("login, email, password and phone are required")
	}
	if !strings.Contains(r.Email, "@") {
		return Invalid("email is malformed")
	}
	return nil
}
