package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datadrop/datadrop/internal/shared"
)

type memoryFileRepo struct {
	files map[string]File
	order []string
}

func newMemoryFileRepo() *memoryFileRepo {
	return &memoryFileRepo{files: make(map[string]File)}
}

func (r *memoryFileRepo) Create(ctx context.Context, file File) error {
	if _, exists := r.files[file.ID]; exists {
		return shared.ErrDuplicate
	}
	r.files[file.ID] = file
	r.order = append(r.order, file.ID)
	return nil
}

func (r *memoryFileRepo) Get(ctx context.Context, id string) (*File, error) {
	file, ok := r.files[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &file, nil
}

func (r *memoryFileRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]File, error) {
	var out []File
	for i := len(r.order) - 1; i >= 0; i-- {
		f := r.files[r.order[i]]
		if f.OwnerEmail == ownerEmail {
			out = append(out, f)
		}
	}
	return out, nil
}

type memoryBlobStore struct {
	blobs map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *memoryBlobStore) Write(ctx context.Context, name string, content []byte) (string, error) {
	s.blobs[name] = append([]byte(nil), content...)
	return "/tmp/uploads/" + name, nil
}

func (s *memoryBlobStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	content, ok := s.blobs[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

type recordingAudit struct {
	entries []shared.ActivityEntry
}

func (a *recordingAudit) Record(ctx context.Context, entry shared.ActivityEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func newTestService(maxBytes int64) (*Service, *memoryFileRepo, *memoryBlobStore, *recordingAudit) {
	repo := newMemoryFileRepo()
	blobs := newMemoryBlobStore()
	audit := &recordingAudit{}
	svc := NewService(repo, blobs, audit, maxBytes)
	return svc, repo, blobs, audit
}

func TestIngestStoresFileAndAudits(t *testing.T) {
	svc, repo, blobs, audit := newTestService(1 << 20)

	content := []byte("a,b,c\n1,2,3\n")
	descriptor, err := svc.Ingest(context.Background(), "alice@example.com", "report.csv", "text/csv", content)
	require.NoError(t, err)
	require.NotEmpty(t, descriptor.ID)
	require.Equal(t, "report.csv", descriptor.Filename)
	require.Equal(t, int64(len(content)), descriptor.Size)
	require.Equal(t, "/api/files/"+descriptor.ID, descriptor.URL)

	stored, err := repo.Get(context.Background(), descriptor.ID)
	require.NoError(t, err)
	require.Equal(t, descriptor.ID+".csv", stored.StoredName)
	require.Equal(t, "alice@example.com", stored.OwnerEmail)
	require.Equal(t, StatusSuccess, stored.Status)

	require.Equal(t, content, blobs.blobs[stored.StoredName])

	require.Len(t, audit.entries, 1)
	require.Equal(t, "File uploaded", audit.entries[0].Action)
	require.Equal(t, shared.OutcomeSuccess, audit.entries[0].Outcome)
	require.Contains(t, audit.entries[0].Detail, "report.csv")
}

func TestIngestAcceptsRecognizedExtensionDespiteContentType(t *testing.T) {
	svc, _, _, _ := newTestService(1 << 20)

	// Either signal is enough. Here the declared content type is opaque
	// but the extension is on the allow-list.
	_, err := svc.Ingest(context.Background(), "alice@example.com", "data.json", "application/octet-stream", []byte("{}"))
	require.NoError(t, err)
}

func TestIngestAcceptsRecognizedContentTypeDespiteExtension(t *testing.T) {
	svc, _, _, _ := newTestService(1 << 20)

	_, err := svc.Ingest(context.Background(), "alice@example.com", "payload.bin", "text/csv", []byte("a,b\n"))
	require.NoError(t, err)
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	svc, repo, blobs, audit := newTestService(1 << 20)

	_, err := svc.Ingest(context.Background(), "alice@example.com", "malware.exe", "application/octet-stream", []byte{0x4d, 0x5a})
	require.ErrorIs(t, err, shared.ErrUnsupportedType)

	require.Empty(t, repo.files, "rejected upload must leave no metadata")
	require.Empty(t, blobs.blobs, "rejected upload must leave no blob")
	require.Empty(t, audit.entries, "rejected upload must not audit")
}

func TestIngestRejectsOversizePayload(t *testing.T) {
	svc, repo, blobs, audit := newTestService(16)

	_, err := svc.Ingest(context.Background(), "alice@example.com", "big.csv", "text/csv", bytes.Repeat([]byte("x"), 17))
	require.ErrorIs(t, err, shared.ErrPayloadTooLarge)

	require.Empty(t, repo.files)
	require.Empty(t, blobs.blobs)
	require.Empty(t, audit.entries)
}

func TestIngestAcceptsPayloadAtCeiling(t *testing.T) {
	svc, _, _, _ := newTestService(16)

	_, err := svc.Ingest(context.Background(), "alice@example.com", "exact.csv", "text/csv", bytes.Repeat([]byte("x"), 16))
	require.NoError(t, err)
}

func TestIngestGeneratesDistinctStoredNames(t *testing.T) {
	svc, repo, _, _ := newTestService(1 << 20)

	for i := 0; i < 10; i++ {
		_, err := svc.Ingest(context.Background(), "alice@example.com", "same-name.csv", "text/csv", []byte("a\n"))
		require.NoError(t, err)
	}
	require.Len(t, repo.files, 10)

	seen := make(map[string]bool)
	for _, f := range repo.files {
		require.False(t, seen[f.StoredName], "stored names must never collide")
		seen[f.StoredName] = true
		require.Equal(t, "same-name.csv", f.OriginalName)
	}
}

func TestListForReturnsNewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService(1 << 20)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Ingest(ctx, "alice@example.com", fmt.Sprintf("file-%d.csv", i), "text/csv", []byte("a\n"))
		require.NoError(t, err)
	}
	_, err := svc.Ingest(ctx, "bob@example.com", "other.csv", "text/csv", []byte("b\n"))
	require.NoError(t, err)

	descriptors, err := svc.ListFor(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, descriptors, 3)
	require.Equal(t, "file-2.csv", descriptors[0].Filename)
}

func TestFetchOwnerOnly(t *testing.T) {
	svc, _, _, _ := newTestService(1 << 20)
	ctx := context.Background()

	descriptor, err := svc.Ingest(ctx, "alice@example.com", "mine.csv", "text/csv", []byte("a,b\n"))
	require.NoError(t, err)

	file, reader, err := svc.Fetch(ctx, "alice@example.com", descriptor.ID)
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, "mine.csv", file.OriginalName)
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, []byte("a,b\n"), content)

	// Another caller sees not-found, not forbidden.
	_, _, err = svc.Fetch(ctx, "bob@example.com", descriptor.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFetchUnknownID(t *testing.T) {
	svc, _, _, _ := newTestService(1 << 20)

	_, _, err := svc.Fetch(context.Background(), "alice@example.com", "no-such-id")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTypeAllowed(t *testing.T) {
	cases := []struct {
		contentType string
		filename    string
		want        bool
	}{
		{"text/csv", "data.csv", true},
		{"application/json", "data.json", true},
		{"text/plain", "notes.txt", true},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "book.xlsx", true},
		{"application/vnd.ms-excel", "book.xls", true},
		{"application/xml", "feed.xml", true},
		{"text/xml", "feed.xml", true},
		{"application/octet-stream", "data.CSV", true},
		{"text/csv", "payload.bin", true},
		{"application/octet-stream", "binary.exe", false},
		{"image/png", "photo.png", false},
		{"", "", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, TypeAllowed(tc.contentType, tc.filename), "contentType=%q filename=%q", tc.contentType, tc.filename)
	}
}

func TestDescribeTimestamps(t *testing.T) {
	svc, repo, _, _ := newTestService(1 << 20)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	descriptor, err := svc.Ingest(context.Background(), "alice@example.com", "t.csv", "text/csv", []byte("a\n"))
	require.NoError(t, err)
	require.Equal(t, fixed, descriptor.UploadedAt)

	stored, err := repo.Get(context.Background(), descriptor.ID)
	require.NoError(t, err)
	require.Equal(t, fixed, stored.UploadedAt)
}
