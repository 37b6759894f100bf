package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medware/m/domain"
	"medware/m/internal/security"
)

// UserStore manages user accounts. Passwords arrive in plaintext and are
// hashed here; they never leave the store in any readable form.
type UserStore struct {
	db     *sqlx.DB
	hasher *security.Hasher
	log    zerolog.Logger
}

func NewUserStore(db *sqlx.DB, hasher *security.Hasher, log zerolog.Logger) *UserStore {
	return &UserStore{db: db, hasher: hasher, log: log}
}

type CreateUserInput struct {
	Username string
	Password string
	Role     string
	FullName *string
	Email    *string
}

func (s *UserStore) Create(ctx context.Context, in CreateUserInput) (int64, error) {
	if !domain.ValidRole(in.Role) {
		return 0, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	hash, salt, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO users (username, password_hash, salt, role, full_name, email)
        VALUES (?, ?, ?, ?, ?, ?)`,
		in.Username, hash, salt, in.Role, in.FullName, in.Email)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: username %q", ErrConflict, in.Username)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}
	s.log.Info().Str("username", in.Username).Str("role", in.Role).Int64("user_id", id).Msg("user created")
	return id, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `
        SELECT * FROM users WHERE id = ? AND is_active = 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername returns the full row, secrets included, for the auth
// service. Inactive accounts are invisible.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `
        SELECT * FROM users WHERE username = ? AND is_active = 1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}
	return &user, nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.db.SelectContext(ctx, &users, `
        SELECT id, username, role, full_name, email, is_active, last_login, created_at, updated_at
        FROM users WHERE is_active = 1 ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) userPatchColumns(p domain.UserPatch) (columns []string, args []any, err error) {
	add := func(column string, set bool, value any) {
		if set {
			columns = append(columns, column+" = ?")
			args = append(args, value)
		}
	}
	add("username", p.Username != nil, p.Username)
	if p.Password != nil {
		hash, salt, hashErr := s.hasher.Hash(*p.Password)
		if hashErr != nil {
			return nil, nil, hashErr
		}
		add("password_hash", true, hash)
		add("salt", true, salt)
	}
	if p.Role != nil && !domain.ValidRole(*p.Role) {
		return nil, nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *p.Role)
	}
	add("role", p.Role != nil, p.Role)
	add("full_name", p.FullName != nil, p.FullName)
	add("email", p.Email != nil, p.Email)
	return columns, args, nil
}

func (s *UserStore) Update(ctx context.Context, id int64, patch domain.UserPatch, actorID int64) error {
	columns, args, err := s.userPatchColumns(patch)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return ErrNoFields
	}

	before, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	columns = append(columns, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(columns, ", ") + " WHERE id = ?"
	_, err = s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: username taken", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}

	after, _ := s.GetByID(ctx, id)
	recordAudit(ctx, s.db, s.log, "users", id, domain.AuditUpdate, before, after, &actorID)
	s.log.Info().Int64("user_id", id).Msg("user updated")
	return nil
}

// Deactivate is the soft delete; the row stays for the transaction ledger.
func (s *UserStore) Deactivate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate user %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.log.Info().Int64("user_id", id).Msg("user deactivated")
	return nil
}

// RecordLoginFailure bumps the failure counter and, when lockedUntil is
// non-zero, stamps the lockout expiry.
func (s *UserStore) RecordLoginFailure(ctx context.Context, id int64, attempts int64, lockedUntil time.Time) error {
	var lockValue *string
	if !lockedUntil.IsZero() {
		v := lockedUntil.UTC().Format(time.RFC3339)
		lockValue = &v
	}
	_, err := s.db.ExecContext(ctx, `
        UPDATE users SET failed_login_attempts = ?, account_locked_until = ? WHERE id = ?`,
		attempts, lockValue, id)
	if err != nil {
		return fmt.Errorf("record login failure for user %d: %w", id, err)
	}
	return nil
}

// RecordLoginSuccess clears the failure state and stamps last_login.
func (s *UserStore) RecordLoginSuccess(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE users
        SET failed_login_attempts = 0, account_locked_until = NULL, last_login = CURRENT_TIMESTAMP
        WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("record login success for user %d: %w", id, err)
	}
	return nil
}

// EnsureDefaultAdmin creates the bootstrap admin account when no admin
// exists yet, so a fresh database is usable.
func (s *UserStore) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = 'admin'`); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	fullName := "System Administrator"
	_, err := s.Create(ctx, CreateUserInput{
		Username: username,
		Password: password,
		Role:     domain.RoleAdmin,
		FullName: &fullName,
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("default admin user created")
	return nil
}
