package models

import "time"

// UserRole identifies the RBAC role of an account.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleWarden  UserRole = "WARDEN"
	RoleAdmin   UserRole = "ADMIN"
)

// Staff reports whether the role carries review capability.
func (r UserRole) Staff() bool {
	return r == RoleWarden || r == RoleAdmin
}

// User is an account in the hostel directory. Accounts are seeded by the
// seed script; there is no account-management API. Student-only columns are
// nullable for staff rows.
//
// StudentNumber is the external registry code (e.g. CSE001) carried over from
// the institute's records. Ownership linkage always uses ID; the number is
// denormalized onto gate passes for display only.
type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"full_name" json:"full_name"`
	Role          UserRole   `db:"role" json:"role"`
	StudentNumber *string    `db:"student_number" json:"student_number,omitempty"`
	Department    *string    `db:"department" json:"department,omitempty"`
	Year          *string    `db:"year" json:"year,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	ParentPhone   *string    `db:"parent_phone" json:"parent_phone,omitempty"`
	Active        bool       `db:"active" json:"active"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
