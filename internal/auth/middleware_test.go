package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/bookstore-service/internal/api/http"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/domain"
)

type stubUserRepo struct {
	user *domain.User
	role domain.Role
	err  error
}

func (s *stubUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) CreateAccount(context.Context, *domain.User) error {
	return nil
}

func (s *stubUserRepo) FindWithRole(context.Context, string) (*domain.User, domain.Role, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.role, nil
}

func newMiddlewareApp(t *testing.T, repo *stubUserRepo) (*fiber.App, string) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, _, err := tokens.Mint("user-1", "reader@example.com")
	require.NoError(t, err)

	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), nil, 0)

	m := auth.NewMiddleware(tokens, repo)
	app.Get("/protected", m.Handle, func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"role": principal.Role})
	})
	app.Get("/admin", m.Handle, auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app, token
}

func getWithToken(t *testing.T, app *fiber.App, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestMiddlewareLoadsPrincipal(t *testing.T) {
	repo := &stubUserRepo{
		user: &domain.User{ID: "user-1", Email: "reader@example.com", FullName: "Reader"},
		role: domain.RoleReader,
	}
	app, token := newMiddlewareApp(t, repo)

	status, body := getWithToken(t, app, "/protected", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "reader", body["role"])
}

func TestMiddlewareDeletedUserIsUnauthorized(t *testing.T) {
	// Drivers wrap sentinel errors; a wrapped no-rows must still read as a
	// missing user, not an internal failure.
	repo := &stubUserRepo{err: fmt.Errorf("scan user: %w", pgx.ErrNoRows)}
	app, token := newMiddlewareApp(t, repo)

	status, body := getWithToken(t, app, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, status)
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", envelope["code"])
}

func TestMiddlewareMissingAndBadTokens(t *testing.T) {
	repo := &stubUserRepo{
		user: &domain.User{ID: "user-1", Email: "reader@example.com"},
		role: domain.RoleReader,
	}
	app, _ := newMiddlewareApp(t, repo)

	status, _ := getWithToken(t, app, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = getWithToken(t, app, "/protected", "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequireAdminForbidsReader(t *testing.T) {
	repo := &stubUserRepo{
		user: &domain.User{ID: "user-1", Email: "reader@example.com"},
		role: domain.RoleReader,
	}
	app, token := newMiddlewareApp(t, repo)

	status, body := getWithToken(t, app, "/admin", token)
	assert.Equal(t, http.StatusForbidden, status)
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", envelope["code"])
}
