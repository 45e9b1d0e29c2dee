package models

import "time"

// Principal represents an identity stored in the principals table. Role
// membership lives in role_assignments, not on the row itself.
type Principal struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Active       bool       `db:"active" json:"active"`
	IsDeleted    bool       `db:"is_deleted" json:"is_deleted"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PrincipalFilter captures filtering criteria for listing principals.
type PrincipalFilter struct {
	Active         *bool
	IncludeDeleted bool
	Search         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
