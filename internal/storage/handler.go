package storage

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/platform/httpx"
	"github.com/datadrop/datadrop/internal/shared"
)

// Handler exposes the caller's storage assignment and the container
// directory used for user assignment.
type Handler struct {
	logger *slog.Logger
	repo   Repository
	users  auth.Repository
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, repo Repository, users auth.Repository) *Handler {
	return &Handler{logger: logger, repo: repo, users: users}
}

// MountRoutes registers storage routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/user/storage-info", h.handleStorageInfo)
	r.Get("/containers", h.handleContainers)
}

type storageInfoResponse struct {
	AccountName   string `json:"account_name"`
	ContainerName string `json:"container_name"`
	Location      string `json:"location"`
}

func (h *Handler) handleStorageInfo(w http.ResponseWriter, r *http.Request) {
	caller := auth.SubjectFromContext(r.Context())

	user, err := h.users.FindByEmail(r.Context(), caller)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("storage info user lookup", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	account, err := h.repo.GetAccountByName(r.Context(), user.StorageAccount)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Assignment points at a missing account record; report what
			// the user row carries rather than failing.
			httpx.JSON(w, http.StatusOK, storageInfoResponse{
				AccountName:   user.StorageAccount,
				ContainerName: user.Container,
				Location:      "Unknown",
			})
			return
		}
		h.logger.Error("storage info account lookup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, storageInfoResponse{
		AccountName:   account.Name,
		ContainerName: user.Container,
		Location:      account.Location,
	})
}

func (h *Handler) handleContainers(w http.ResponseWriter, r *http.Request) {
	infos, err := h.repo.ListActiveContainers(r.Context())
	if err != nil {
		h.logger.Error("list containers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if infos == nil {
		infos = []ContainerInfo{}
	}
	httpx.JSON(w, http.StatusOK, infos)
}
