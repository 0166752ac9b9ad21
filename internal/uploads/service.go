package uploads

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/datadrop/datadrop/internal/shared"
)

// Service implements the validated ingestion pipeline.
type Service struct {
	files    Repository
	blobs    BlobStore
	audit    shared.ActivityRecorder
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

// NewService constructs a Service with the given size ceiling in bytes.
func NewService(files Repository, blobs BlobStore, audit shared.ActivityRecorder, maxBytes int64) *Service {
	return &Service{
		files:    files,
		blobs:    blobs,
		audit:    audit,
		maxBytes: maxBytes,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// MaxBytes returns the configured size ceiling.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Ingest validates and persists an upload. Validation failures happen
// before any write and leave no partial state behind: no blob, no
// metadata row and no audit entry for the rejected attempt.
func (s *Service) Ingest(ctx context.Context, ownerEmail, filename, contentType string, content []byte) (*Descriptor, error) {
	if !TypeAllowed(contentType, filename) {
		return nil, shared.ErrUnsupportedType
	}
	if int64(len(content)) > s.maxBytes {
		return nil, shared.ErrPayloadTooLarge
	}

	id := s.newID()
	storedName := id + filepath.Ext(filename)

	path, err := s.blobs.Write(ctx, storedName, content)
	if err != nil {
		return nil, err
	}

	file := File{
		ID:           id,
		StoredName:   storedName,
		OriginalName: filename,
		Size:         int64(len(content)),
		ContentType:  contentType,
		Path:         path,
		OwnerEmail:   ownerEmail,
		UploadedAt:   s.now().UTC(),
		Status:       StatusSuccess,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   ownerEmail,
		Action:  "File uploaded",
		Outcome: shared.OutcomeSuccess,
		Detail:  fmt.Sprintf("Uploaded %s (%d bytes)", filename, len(content)),
	}); err != nil {
		return nil, err
	}

	descriptor := describe(file)
	descriptor.Status = ""
	return &descriptor, nil
}

// ListFor returns descriptors for all files owned by the caller.
func (s *Service) ListFor(ctx context.Context, ownerEmail string) ([]Descriptor, error) {
	files, err := s.files.ListByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	descriptors := make([]Descriptor, len(files))
	for i, f := range files {
		descriptors[i] = describe(f)
	}
	return descriptors, nil
}

// Fetch opens a stored blob for its owner. A file owned by someone else
// is reported as not found rather than forbidden, so opaque ids stay
// unguessable.
func (s *Service) Fetch(ctx context.Context, callerEmail, id string) (*File, io.ReadCloser, error) {
	file, err := s.files.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if file.OwnerEmail != callerEmail {
		return nil, nil, shared.ErrNotFound
	}
	reader, err := s.blobs.Open(ctx, file.StoredName)
	if err != nil {
		return nil, nil, err
	}
	return file, reader, nil
}

func describe(f File) Descriptor {
	return Descriptor{
		ID:          f.ID,
		Filename:    f.OriginalName,
		Size:        f.Size,
		ContentType: f.ContentType,
		URL:         fmt.Sprintf("/api/files/%s", f.ID),
		UploadedAt:  f.UploadedAt,
		Status:      f.Status,
	}
}
