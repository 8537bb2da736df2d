package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

type updateUserRequest struct {
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Bio       *string      `json:"bio"`
	AvatarURL *string      `json:"avatar_url"`
	Email     *string      `json:"email"`
	Role      *models.Role `json:"role"`
}

// ListUsers returns the accounts visible to the actor. Admins see every
// account, managers see only user-role accounts, plain users get an empty
// list rather than an error.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	role := models.Role(c.Query("role"))
	if role != "" && !models.ValidRole(role) {
		return models.RespondWithError(c, models.NewValidationError("Invalid role filter"))
	}

	users, err := s.accountService.ListUsers(c.Context(), service.ListUsersInput{
		Actor:  currentActor(c),
		Role:   role,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

// GetUser fetches a user inside the actor's visibility scope.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.accountService.GetUser(c.Context(), currentActor(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser is the management-view update. Role changes are admin-only.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req updateUserRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.accountService.UpdateUser(c.Context(), currentActor(c), service.UpdateProfileInput{
		UserID:    id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser removes an account and everything it owns.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.accountService.DeleteUser(c.Context(), currentActor(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
