package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-account-service/internal/api/dto"
	"github.com/spec-kit/user-account-service/internal/auth"
	"github.com/spec-kit/user-account-service/internal/service"
	apperrors "github.com/spec-kit/user-account-service/pkg/util/errorutil"
)

// UsersHandler exposes the user lifecycle endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponses(users))
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	user, err := h.users.GetByID(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Me handles GET /users/me behind the token middleware.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.CurrentUserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Username == "" {
		return apperrors.NewValidationError("name and username required", nil)
	}

	user, err := h.users.Create(c.UserContext(), req.Name, req.Username)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles PUT /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	username := c.Query("username")
	pw := c.Query("pw")
	if username == "" {
		return apperrors.NewValidationError("username required", nil)
	}

	user, err := h.users.Login(c.UserContext(), username, pw)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Logout handles PUT /users/logout/.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.users.Logout(c.UserContext(), c.Query("token")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.users.Update(c.UserContext(), int64(id), service.ProfilePatch{
		Username: req.Username,
		Birthday: req.Birthday,
	}); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
