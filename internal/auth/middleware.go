package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/observability"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the verified identity of the caller, reconstructed per request
// from token claims alone. It lives only for the request lifecycle.
type Principal struct {
	UserID      string
	DisplayName string
	Role        domain.Role
}

// AuthMiddleware validates bearer tokens and binds the principal.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle enforces authentication for protected routes. Every failure mode
// returns the same generic 401; the reason only reaches the logs.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		observability.TokenVerifications.WithLabelValues(verifyResult(err)).Inc()
		m.logger.Debug("token rejected", zap.String("reason", err.Error()))
		return apperrors.NewUnauthorized("invalid token")
	}
	observability.TokenVerifications.WithLabelValues("ok").Inc()

	c.Locals(principalKey, &Principal{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	})
	return c.Next()
}

func verifyResult(err error) string {
	switch err {
	case ErrTokenExpired:
		return "expired"
	case ErrTokenSignatureInvalid:
		return "bad_signature"
	default:
		return "malformed"
	}
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
