package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/shared"
)

type stubRepo struct {
	accounts   map[string]*Account
	containers []ContainerInfo
}

func (s *stubRepo) GetContainer(ctx context.Context, id string) (*Container, error) {
	return nil, shared.ErrNotFound
}

func (s *stubRepo) GetAccount(ctx context.Context, id string) (*Account, error) {
	return nil, shared.ErrNotFound
}

func (s *stubRepo) GetAccountByName(ctx context.Context, name string) (*Account, error) {
	a, ok := s.accounts[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (s *stubRepo) ListActiveContainers(ctx context.Context) ([]ContainerInfo, error) {
	return s.containers, nil
}

type stubUsers struct {
	user *auth.User
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUsers) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	return nil
}

func (s *stubUsers) SetPassword(ctx context.Context, email, passwordHash string, at time.Time) error {
	return nil
}

func newStorageRouter(repo Repository, users auth.Repository) http.Handler {
	handler := NewHandler(slog.New(slog.DiscardHandler), repo, users)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router
}

func TestStorageInfo(t *testing.T) {
	repo := &stubRepo{accounts: map[string]*Account{
		"demostorage": {ID: "sa1", Name: "demostorage", Location: "local", IsActive: true},
	}}
	users := &stubUsers{user: &auth.User{
		Email:          "alice@example.com",
		StorageAccount: "demostorage",
		Container:      "demo-container",
	}}
	router := newStorageRouter(repo, users)

	req := httptest.NewRequest(http.MethodGet, "/user/storage-info", nil)
	req = req.WithContext(auth.ContextWithSubject(req.Context(), "alice@example.com"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "demostorage", payload["account_name"])
	require.Equal(t, "demo-container", payload["container_name"])
	require.Equal(t, "local", payload["location"])
}

func TestStorageInfoMissingAccountRecord(t *testing.T) {
	repo := &stubRepo{accounts: map[string]*Account{}}
	users := &stubUsers{user: &auth.User{
		Email:          "alice@example.com",
		StorageAccount: "orphaned",
		Container:      "demo-container",
	}}
	router := newStorageRouter(repo, users)

	req := httptest.NewRequest(http.MethodGet, "/user/storage-info", nil)
	req = req.WithContext(auth.ContextWithSubject(req.Context(), "alice@example.com"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "orphaned", payload["account_name"])
	require.Equal(t, "Unknown", payload["location"])
}

func TestListContainers(t *testing.T) {
	repo := &stubRepo{containers: []ContainerInfo{
		{ContainerID: "c1", Name: "demo-container", AccountID: "sa1", AccountName: "demostorage", Location: "local", DisplayName: "demo-container (demostorage - local)"},
	}}
	router := newStorageRouter(repo, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/containers", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var infos []ContainerInfo
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	require.Equal(t, "c1", infos[0].ContainerID)
}

func TestListContainersEmpty(t *testing.T) {
	router := newStorageRouter(&stubRepo{}, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/containers", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, "[]", res.Body.String())
}
