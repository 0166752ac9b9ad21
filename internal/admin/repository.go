package admin

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/shared"
)

// Repository defines user-management persistence operations.
type Repository interface {
	List(ctx context.Context, search string, offset, limit int) ([]auth.User, int, error)
	GetByID(ctx context.Context, id int64) (*auth.User, error)
	Create(ctx context.Context, user auth.User) (*auth.User, error)
	Update(ctx context.Context, user auth.User) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, is_active, is_first_login, storage_account, container, created_at, last_login`

// List returns users matching the search term (email or name substring)
// with the total count for pagination.
func (r *PGRepository) List(ctx context.Context, search string, offset, limit int) ([]auth.User, int, error) {
	pattern := "%" + search + "%"

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE email ILIKE $1 OR name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE email ILIKE $1 OR name ILIKE $1 ORDER BY id OFFSET $2 LIMIT $3`,
		pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var u auth.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// GetByID fetches a user by numeric id.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	var u auth.User
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and returns the stored record. A duplicate
// email surfaces as shared.ErrDuplicate.
func (r *PGRepository) Create(ctx context.Context, user auth.User) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role, is_active, is_first_login, storage_account, container)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		user.Email, user.Name, user.PasswordHash, user.Role, user.IsActive,
		user.FirstLogin, user.StorageAccount, user.Container)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}

// Update overwrites the admin-managed fields of a user.
func (r *PGRepository) Update(ctx context.Context, user auth.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET email = $2, name = $3, role = $4, is_active = $5, storage_account = $6, container = $7
		WHERE id = $1`,
		user.ID, user.Email, user.Name, user.Role, user.IsActive, user.StorageAccount, user.Container)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a user row.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive flips the activation flag.
func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row, u *auth.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.FirstLogin, &u.StorageAccount, &u.Container, &u.CreatedAt, &u.LastLogin)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
