package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/datadrop/datadrop/internal/auth"
)

func newAdminRouter(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc, _, _ := newAdminService()
	handler := NewHandler(slog.New(slog.DiscardHandler), svc)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router, svc
}

func adminRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(auth.ContextWithSubject(req.Context(), "root@example.com"))
}

func TestHandleCreateUser(t *testing.T) {
	router, _ := newAdminRouter(t)

	body := `{"email":"new@example.com","name":"New User","role":"user","container_id":"c1"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))

	require.Equal(t, http.StatusOK, res.Code)

	var payload userResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "new@example.com", payload.Email)
	require.NotEmpty(t, payload.TemporaryPassword)
	require.True(t, payload.IsActive)
	require.Nil(t, payload.LastLogin)
}

func TestHandleCreateUserBadRole(t *testing.T) {
	router, _ := newAdminRouter(t)

	body := `{"email":"new@example.com","name":"New","role":"superuser","container_id":"c1"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHandleCreateUserDuplicate(t *testing.T) {
	router, _ := newAdminRouter(t)

	body := `{"email":"dup@example.com","name":"Dup","role":"user","container_id":"c1"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestHandleListUsers(t *testing.T) {
	router, _ := newAdminRouter(t)

	body := `{"email":"one@example.com","name":"One","role":"user","container_id":"c1"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodGet, "/users?page=1&limit=10", ""))
	require.Equal(t, http.StatusOK, res.Code)

	var payload listUsersResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, 1, payload.Total)
	require.Equal(t, 1, payload.Pages)
	require.Len(t, payload.Users, 1)
	require.Empty(t, payload.Users[0].TemporaryPassword, "temporary password is returned only on creation")
}

func TestHandleDeleteAdminUser(t *testing.T) {
	router, _ := newAdminRouter(t)

	body := `{"email":"boss@example.com","name":"Boss","role":"admin","container_id":"c1"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))
	require.Equal(t, http.StatusOK, res.Code)

	var created userResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	res = httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodDelete, "/users/"+created.ID, ""))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "Cannot delete admin users")
}

func TestHandleDeleteUnknownUser(t *testing.T) {
	router, _ := newAdminRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodDelete, "/users/999", ""))
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestHandleToggleUser(t *testing.T) {
	router, _ := newAdminRouter(t)

	body := `{"email":"flip@example.com","name":"Flip","role":"user","container_id":"c1"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPost, "/users", body))
	require.Equal(t, http.StatusOK, res.Code)

	var created userResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	res = httptest.NewRecorder()
	router.ServeHTTP(res, adminRequest(http.MethodPatch, "/users/"+created.ID+"/toggle", ""))
	require.Equal(t, http.StatusOK, res.Code)

	var toggled map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &toggled))
	require.Equal(t, false, toggled["isActive"])
}
