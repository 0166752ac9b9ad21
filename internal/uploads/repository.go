package uploads

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datadrop/datadrop/internal/shared"
)

// Repository defines persistence operations for file metadata.
type Repository interface {
	Create(ctx context.Context, file File) error
	Get(ctx context.Context, id string) (*File, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]File, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const fileColumns = `id, filename, original_filename, file_size, content_type, file_path, user_email, uploaded_at, status`

// Create inserts a metadata row.
func (r *PGRepository) Create(ctx context.Context, file File) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO uploaded_files (`+fileColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		file.ID, file.StoredName, file.OriginalName, file.Size, file.ContentType,
		file.Path, file.OwnerEmail, file.UploadedAt.UTC(), file.Status)
	return err
}

// Get fetches a metadata row by opaque id.
func (r *PGRepository) Get(ctx context.Context, id string) (*File, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fileColumns+` FROM uploaded_files WHERE id = $1`, id)
	var f File
	if err := scanFile(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByOwner returns all files uploaded by the given user.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]File, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM uploaded_files WHERE user_email = $1 ORDER BY uploaded_at DESC`, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := scanFile(rows, &f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanFile(row pgx.Row, f *File) error {
	return row.Scan(&f.ID, &f.StoredName, &f.OriginalName, &f.Size, &f.ContentType,
		&f.Path, &f.OwnerEmail, &f.UploadedAt, &f.Status)
}

var _ Repository = (*PGRepository)(nil)
