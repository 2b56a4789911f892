package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	var role domain.Role
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		role = parsed
	}

	user, err := h.auth.Register(c.UserContext(), req.Email, req.DisplayName, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return apperrors.NewAlreadyExists("user already exists", nil)
		case errors.Is(err, service.ErrRoleNotAllowed):
			return apperrors.NewValidationError("role not allowed", nil)
		default:
			return apperrors.MapError(err)
		}
	}

	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Email: user.Email,
		Role:  string(user.Role),
	})
}

// Login handles POST /api/auth/login. Unknown email and wrong password get
// the same response body.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	_, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, service.ErrInvalidCredentials):
			return apperrors.NewInvalidCredentials()
		case errors.Is(err, service.ErrTooManyAttempts):
			return apperrors.NewTooManyAttempts("too many login attempts, try again later")
		default:
			return apperrors.MapError(err)
		}
	}

	return c.JSON(dto.AuthResponse{Token: token, ExpiresAt: exp})
}
