package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/platform/httpx"
	"github.com/datadrop/datadrop/internal/shared"
)

// Handler wires admin user-management endpoints. The router mounts it
// behind the admin gate.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers admin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleCreate)
	r.Put("/users/{id}", h.handleUpdate)
	r.Delete("/users/{id}", h.handleDelete)
	r.Patch("/users/{id}/toggle", h.handleToggle)
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=user admin"`
	ContainerID string `json:"container_id" validate:"required"`
}

type updateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=user admin"`
	ContainerID string `json:"container_id" validate:"required"`
	IsActive    bool   `json:"is_active"`
}

type userResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	Role              string  `json:"role"`
	IsActive          bool    `json:"isActive"`
	CreatedAt         string  `json:"createdAt"`
	LastLogin         *string `json:"lastLogin"`
	StorageAccount    string  `json:"storageAccount"`
	Container         string  `json:"container"`
	TemporaryPassword string  `json:"temporaryPassword,omitempty"`
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = 50
	}

	users, total, err := h.service.ListUsers(r.Context(), query.Get("search"), page, limit)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	payload := listUsersResponse{
		Users: make([]userResponse, len(users)),
		Total: total,
		Page:  page,
		Pages: (total + limit - 1) / limit,
	}
	for i := range users {
		payload.Users[i] = toUserResponse(&users[i])
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email, name, role and container_id are required")
		return
	}

	actor := auth.SubjectFromContext(r.Context())
	user, tempPassword, err := h.service.CreateUser(r.Context(), actor, CreateUserParams{
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		ContainerID: req.ContainerID,
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrDuplicate) {
			h.logger.Error("create user failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	payload := toUserResponse(user)
	payload.TemporaryPassword = tempPassword
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email, name, role and container_id are required")
		return
	}

	actor := auth.SubjectFromContext(r.Context())
	user, err := h.service.UpdateUser(r.Context(), actor, id, UpdateUserParams{
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		ContainerID: req.ContainerID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrDuplicate) {
			h.logger.Error("update user failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	actor := auth.SubjectFromContext(r.Context())
	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		if errors.Is(err, ErrAdminUndeletable) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "Cannot delete admin users")
			return
		}
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("delete user failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	actor := auth.SubjectFromContext(r.Context())
	user, err := h.service.ToggleActive(r.Context(), actor, id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("toggle user failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":       strconv.FormatInt(user.ID, 10),
		"email":    user.Email,
		"isActive": user.IsActive,
	})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func toUserResponse(u *auth.User) userResponse {
	resp := userResponse{
		ID:             strconv.FormatInt(u.ID, 10),
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
		StorageAccount: u.StorageAccount,
		Container:      u.Container,
	}
	if u.LastLogin != nil {
		formatted := u.LastLogin.UTC().Format(time.RFC3339)
		resp.LastLogin = &formatted
	}
	return resp
}
