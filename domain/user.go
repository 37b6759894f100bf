package domain

const (
	RoleAdmin           = "admin"
	RoleWarehouseWorker = "warehouse_worker"
	RoleAccountant      = "accountant"
)

// ValidRole reports whether role is one of the three fixed account roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleWarehouseWorker, RoleAccountant:
		return true
	}
	return false
}

type User struct {
	ID                  int64   `db:"id" json:"id"`
	Username            string  `db:"username" json:"username"`
	PasswordHash        string  `db:"password_hash" json:"-"`
	Salt                string  `db:"salt" json:"-"`
	Role                string  `db:"role" json:"role"`
	FullName            *string `db:"full_name" json:"full_name,omitempty"`
	Email               *string `db:"email" json:"email,omitempty"`
	IsActive            bool    `db:"is_active" json:"is_active"`
	LastLogin           *string `db:"last_login" json:"last_login,omitempty"`
	FailedLoginAttempts int64   `db:"failed_login_attempts" json:"-"`
	AccountLockedUntil  *string `db:"account_locked_until" json:"-"`
	CreatedAt           string  `db:"created_at" json:"created_at"`
	UpdatedAt           string  `db:"updated_at" json:"updated_at"`
}

// UserPatch names the user fields an update may set; a nil field is left
// untouched. Password is the plaintext replacement, hashed by the store.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
}
