package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datadrop/datadrop/internal/shared"
)

// Repository provides read access to storage accounts and containers.
// Their lifecycle is managed outside this service.
type Repository interface {
	GetContainer(ctx context.Context, id string) (*Container, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	GetAccountByName(ctx context.Context, name string) (*Account, error)
	ListActiveContainers(ctx context.Context) ([]ContainerInfo, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetContainer fetches a container by id.
func (r *PGRepository) GetContainer(ctx context.Context, id string) (*Container, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, account_id, created_at FROM containers WHERE id = $1`, id)
	var c Container
	if err := row.Scan(&c.ID, &c.Name, &c.AccountID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetAccount fetches a storage account by id.
func (r *PGRepository) GetAccount(ctx context.Context, id string) (*Account, error) {
	return r.getAccount(ctx, `id = $1`, id)
}

// GetAccountByName fetches a storage account by unique name.
func (r *PGRepository) GetAccountByName(ctx context.Context, name string) (*Account, error) {
	return r.getAccount(ctx, `name = $1`, name)
}

func (r *PGRepository) getAccount(ctx context.Context, where string, arg any) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, connection_string, location, is_active, created_at FROM storage_accounts WHERE `+where, arg)
	var a Account
	if err := row.Scan(&a.ID, &a.Name, &a.ConnectionString, &a.Location, &a.IsActive, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListActiveContainers returns containers belonging to active storage
// accounts, joined with account details.
func (r *PGRepository) ListActiveContainers(ctx context.Context) ([]ContainerInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, a.id, a.name, a.location
		FROM containers c
		JOIN storage_accounts a ON a.id = c.account_id
		WHERE a.is_active
		ORDER BY a.name, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []ContainerInfo
	for rows.Next() {
		var info ContainerInfo
		if err := rows.Scan(&info.ContainerID, &info.Name, &info.AccountID, &info.AccountName, &info.Location); err != nil {
			return nil, err
		}
		info.DisplayName = fmt.Sprintf("%s (%s - %s)", info.Name, info.AccountName, info.Location)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
