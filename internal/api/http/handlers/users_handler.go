package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// UsersHandler exposes account management and password change.
type UsersHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{authService: authService, userService: userService}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	users, err := h.userService.List(c.UserContext(), limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Search handles GET /api/users/search.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	params := service.UserSearchParams{
		Query:    c.Query("q"),
		SortBy:   c.Query("sort", "email"),
		SortDesc: c.Query("order") == "desc",
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role, err := domain.ParseRole(roleStr)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		params.Role = &role
	}
	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit", "10")); err == nil {
		params.Limit = limit
	}

	users, pagination, err := h.userService.Search(c.UserContext(), params)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{
		"data":       dto.NewUserResponses(users),
		"pagination": pagination,
	})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.userService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create handles POST /api/users. Admin-only; this is the path that may
// assign the admin role.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, err := h.userService.Create(c.UserContext(), actorFromContext(c), req.Email, req.DisplayName, req.Password, role)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewAlreadyExists("user already exists", nil)
		}
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	var role *domain.Role
	if req.Role != nil {
		parsed, err := domain.ParseRole(*req.Role)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		role = &parsed
	}

	user, err := h.userService.Update(c.UserContext(), actorFromContext(c), c.Params("id"), req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return apperrors.NewNotFound("user", nil)
		case errors.Is(err, service.ErrEmailTaken):
			return apperrors.NewAlreadyExists("email already in use", nil)
		default:
			return apperrors.MapError(err)
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.userService.Delete(c.UserContext(), actorFromContext(c), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}

// ChangePassword handles PUT /api/users/change-password for the caller's own
// account.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(http.StatusText(http.StatusUnauthorized))
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	err := h.authService.ChangePassword(c.UserContext(), principal.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return apperrors.NewNotFound("user", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			return apperrors.NewDomainError("INVALID_CREDENTIALS", "current password is incorrect", http.StatusBadRequest, nil)
		default:
			return apperrors.MapError(err)
		}
	}
	return c.JSON(fiber.Map{"message": "password changed"})
}

func actorFromContext(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{}
	}
	return events.Actor{UserID: principal.UserID, Role: principal.Role}
}
