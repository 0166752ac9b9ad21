package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/datadrop/datadrop/internal/platform/httpx"
	"github.com/datadrop/datadrop/internal/shared"
)

type contextKey string

const subjectKey contextKey = "auth.subject"

// SubjectFromContext returns the verified caller email, or "".
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}

// ContextWithSubject attaches a verified caller email. Exposed for tests.
func ContextWithSubject(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, subjectKey, email)
}

// Guard is the authorization gate for protected routes.
type Guard struct {
	logger *slog.Logger
	tokens *TokenManager
	repo   Repository
}

// NewGuard constructs a Guard.
func NewGuard(logger *slog.Logger, tokens *TokenManager, repo Repository) *Guard {
	return &Guard{logger: logger, tokens: tokens, repo: repo}
}

// RequireUser verifies the bearer token and stores the subject email in
// the request context. Token verification is stateless.
func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := g.verify(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

// RequireAdmin composes RequireUser with a per-call role lookup in the
// credential store. Roles can change after token issuance, so the
// token's claims are never trusted for role decisions.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := g.verify(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		user, err := g.repo.FindByEmail(r.Context(), subject)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			g.logger.Error("admin role lookup failed", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if !user.IsAdmin() {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

func (g *Guard) verify(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", shared.ErrUnauthorized
	}
	return g.tokens.Verify(token)
}
