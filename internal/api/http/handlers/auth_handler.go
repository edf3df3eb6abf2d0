package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/dto"
	"github.com/spec-kit/bookstore-service/internal/service"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// AuthHandler exposes the signup/signin/verify endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.SignUp(c.UserContext(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{
		User: dto.AuthUser{
			ID:       result.User.ID,
			Email:    result.User.Email,
			FullName: result.User.FullName,
		},
		Token: result.Token,
	})
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{
		User: dto.AuthUser{
			ID:       result.User.ID,
			Email:    result.User.Email,
			FullName: result.User.FullName,
		},
		Token: result.Token,
	})
}

// Verify handles POST /api/auth/verify. The token travels in the body, and
// the response is the flat user view including the freshly read role.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewUnauthorized("token required")
	}
	if req.Token == "" {
		return apperrors.NewUnauthorized("token required")
	}

	view, err := h.auth.Verify(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(view)
}
