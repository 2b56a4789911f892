package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": de.Message})
		},
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	mw := NewAuthMiddleware(tm, zap.NewNop())

	app := newTestApp()
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			t.Fatalf("principal not bound")
		}
		if principal.UserID != "user-1" || principal.Role != domain.RoleAdmin {
			t.Fatalf("unexpected principal: %+v", principal)
		}
		return c.SendStatus(http.StatusOK)
	})

	token, _, err := tm.GenerateToken("user-1", "Alice", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mw := NewAuthMiddleware(NewTokenManager("secret", 60), zap.NewNop())

	app := newTestApp()
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	mw := NewAuthMiddleware(NewTokenManager("secret", 60), zap.NewNop())

	app := newTestApp()
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := &TokenManager{secret: []byte("secret"), ttl: -2 * time.Minute}
	mw := NewAuthMiddleware(NewTokenManager("secret", 60), zap.NewNop())

	app := newTestApp()
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	token, _, err := expired.GenerateToken("user-1", "", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_ForgedToken(t *testing.T) {
	forger := NewTokenManager("other-secret", 60)
	mw := NewAuthMiddleware(NewTokenManager("secret", 60), zap.NewNop())

	app := newTestApp()
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error {
		t.Fatalf("should not reach handler")
		return nil
	})

	token, _, err := forger.GenerateToken("user-1", "", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
