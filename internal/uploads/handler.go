package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/platform/httpx"
	"github.com/datadrop/datadrop/internal/shared"
)

// multipartSlack covers form-encoding overhead on top of the payload
// ceiling so a maximum-size file still parses.
const multipartSlack = 1 << 20

// Handler wires HTTP endpoints for uploads.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers upload routes on the provided router. All of
// them sit behind the bearer-token gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
	r.Get("/files", h.handleList)
	r.Get("/files/{id}", h.handleDownload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	caller := auth.SubjectFromContext(r.Context())

	// Hard cap on what a client can make us buffer. The service still
	// measures the fully-read payload against the configured ceiling.
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxBytes()+multipartSlack)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.RespondError(w, shared.ErrPayloadTooLarge)
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "multipart field 'file' is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.RespondError(w, shared.ErrPayloadTooLarge)
			return
		}
		h.logger.Error("read upload body", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "could not read upload")
		return
	}

	descriptor, err := h.service.Ingest(r.Context(), caller, header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		if !errors.Is(err, shared.ErrUnsupportedType) && !errors.Is(err, shared.ErrPayloadTooLarge) {
			h.logger.Error("ingest upload failed", slog.Any("error", err), slog.String("user", caller))
		}
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, descriptor)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller := auth.SubjectFromContext(r.Context())
	descriptors, err := h.service.ListFor(r.Context(), caller)
	if err != nil {
		h.logger.Error("list files failed", slog.Any("error", err), slog.String("user", caller))
		httpx.RespondError(w, err)
		return
	}
	if descriptors == nil {
		descriptors = []Descriptor{}
	}
	httpx.JSON(w, http.StatusOK, descriptors)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	caller := auth.SubjectFromContext(r.Context())
	id := chi.URLParam(r, "id")

	file, reader, err := h.service.Fetch(r.Context(), caller, id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("fetch file failed", slog.Any("error", err), slog.String("id", id))
		}
		httpx.RespondError(w, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("stream file", slog.Any("error", err), slog.String("id", id))
	}
}
