// Package service implements the application's business logic on top of the
// repository layer. Services validate input, consult the authorization
// predicates, and never touch the transport layer.
package service

import (
	"context"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/token"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type AccountService struct {
	userRepo repository.UserRepository
	tokens   *token.Issuer
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

type ChangePasswordInput struct {
	UserID          uint
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

type UpdateProfileInput struct {
	UserID      uint
	FirstName   *string
	LastName    *string
	Bio         *string
	AvatarURL   *string
	Email       *string
	Role        *models.Role
	RoleChanger *models.User
}

type ListUsersInput struct {
	Actor  *models.User
	Role   models.Role
	Limit  int
	Offset int
}

func NewAccountService(userRepo repository.UserRepository, tokens *token.Issuer) *AccountService {
	return &AccountService{userRepo: userRepo, tokens: tokens}
}

// Register creates a new account with the user role. Password and its
// confirmation must match; the stored password is a bcrypt hash.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Password != in.ConfirmPassword {
		return nil, models.NewValidationError("Passwords do not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		Role:      models.RoleUser,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the credentials and issues a token pair. Unknown
// usernames and wrong passwords produce the same error, so callers cannot
// probe which accounts exist.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, token.Pair, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, token.Pair{}, err
	}
	if user == nil || !user.IsActive {
		return nil, token.Pair{}, models.NewInvalidCredentialsError()
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, token.Pair{}, models.NewInvalidCredentialsError()
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, token.Pair{}, models.NewInternalError(err)
	}
	return user, pair, nil
}

// Logout revokes the refresh token, best-effort. Logout always succeeds:
// invalid tokens and denylist failures are swallowed so a client can always
// discard its session.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) {
	_ = s.tokens.Invalidate(ctx, refreshToken)
}

// ChangePassword verifies the current password before setting a new one.
func (s *AccountService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)) != nil {
		return models.NewValidationError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	if in.NewPassword != in.ConfirmPassword {
		return models.NewValidationError("Passwords do not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

func (s *AccountService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies partial updates to a user record. A role change is
// admin-only and checked against RoleChanger, not the profile owner.
func (s *AccountService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		if len(*in.Bio) > 500 {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *in.Email
	}
	if in.Role != nil && *in.Role != user.Role {
		if err := authz.CanChangeRole(in.RoleChanger); err != nil {
			return nil, err
		}
		if !models.ValidRole(*in.Role) {
			return nil, models.NewValidationError("Invalid role")
		}
		user.Role = *in.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns the accounts visible to the actor in the management
// view. Admins see everyone, managers see only user-role accounts, plain
// users get an empty list. Listing twice yields the same scope: visibility
// depends only on the actor's role, never on prior reads.
func (s *AccountService) ListUsers(ctx context.Context, in ListUsersInput) ([]models.User, error) {
	scope := authz.UserListScope(in.Actor)
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.userRepo.List(ctx, scope, actorID(in.Actor), in.Role, limit, in.Offset)
}

// GetUser fetches a user through the actor's management visibility scope.
func (s *AccountService) GetUser(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	return s.userRepo.GetScoped(ctx, id, authz.UserListScope(actor), actorID(actor))
}

// UpdateUser is the management-view update: the target must be inside the
// actor's visibility scope, and role changes remain admin-only.
func (s *AccountService) UpdateUser(ctx context.Context, actor *models.User, in UpdateProfileInput) (*models.User, error) {
	if _, err := s.userRepo.GetScoped(ctx, in.UserID, authz.UserListScope(actor), actorID(actor)); err != nil {
		return nil, err
	}
	in.RoleChanger = actor
	return s.UpdateProfile(ctx, in)
}

// DeleteUser removes an account and everything it owns. The target is
// fetched without a visibility scope so that the deletion rules, not the
// listing rules, decide the outcome: a manager deleting an admin is refused
// with a role-protection denial rather than a not-found.
func (s *AccountService) DeleteUser(ctx context.Context, actor *models.User, id uint) error {
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteUser(actor, target); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

func actorID(actor *models.User) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}
