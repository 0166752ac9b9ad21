package uploads

import "time"

// File statuses stored in uploaded_files.status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// File represents an uploaded file's metadata row. The stored filename
// is derived from the generated id and never exposed to end users.
type File struct {
	ID           string
	StoredName   string
	OriginalName string
	Size         int64
	ContentType  string
	Path         string
	OwnerEmail   string
	UploadedAt   time.Time
	Status       string
}

// Descriptor is the caller-facing view of an uploaded file.
type Descriptor struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Status      string    `json:"status,omitempty"`
}
