package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type updateProfileRequest struct {
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Bio       *string      `json:"bio"`
	AvatarURL *string      `json:"avatar_url"`
	Email     *string      `json:"email"`
	Role      *models.Role `json:"role"`
}

// Register creates a new account with the user role.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.accountService.Register(c.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login authenticates and returns the token pair with the user record.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, pair, err := s.accountService.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":   user,
		"tokens": pair,
	})
}

// Logout revokes the refresh token. This endpoint always succeeds, even with
// a malformed token or an unreachable denylist, so clients can always clear
// their session.
func (s *Server) Logout(c *fiber.Ctx) error {
	var req logoutRequest
	_ = c.BodyParser(&req)
	if req.Refresh != "" {
		s.accountService.Logout(c.Context(), req.Refresh)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetProfile returns the authenticated user's own record.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.accountService.GetProfile(c.Context(), currentActorID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile applies partial updates to the authenticated user's record.
// A role field is accepted but honored only for admins.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.accountService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:      currentActorID(c),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		Email:       req.Email,
		Role:        req.Role,
		RoleChanger: currentActor(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// ChangePassword verifies the current password before setting a new one.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	err := s.accountService.ChangePassword(c.Context(), service.ChangePasswordInput{
		UserID:          currentActorID(c),
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}
