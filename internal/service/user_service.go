package service

import (
	"context"
	"errors"
	"log/slog"

	"recipehub/internal/apperr"
	"recipehub/internal/authz"
	"recipehub/internal/broadcast"
	"recipehub/internal/dto"
	"recipehub/internal/middleware/auth"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	// UpdateProfile edits the caller's own profile.
	UpdateProfile(ctx context.Context, caller *authz.Identity, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error)
	// Super-admin operations.
	ListUsers(ctx context.Context, caller *authz.Identity) ([]dto.UserResponse, error)
	UpdateUserRole(ctx context.Context, caller *authz.Identity, userID, newRole string) (*dto.UserResponse, error)
	UpdateUserProfile(ctx context.Context, caller *authz.Identity, userID string, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error)
	CreateTeamMember(ctx context.Context, caller *authz.Identity, req *dto.CreateTeamMemberRequest, image *dto.Upload) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, caller *authz.Identity, userID string) error
	// PublicTeam lists super admins with limited public fields.
	PublicTeam(ctx context.Context) ([]dto.PublicTeamMember, error)
}

type userService struct {
	userRepo         repository.UserRepository
	recipeRepo       repository.RecipeRepository
	ratingRepo       repository.RatingRepository
	refreshTokenRepo repository.RefreshTokenRepository
	blobs            storage.BlobStore
	publisher        broadcast.Publisher
	logger           *slog.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
	ratingRepo repository.RatingRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	blobs storage.BlobStore,
	publisher broadcast.Publisher,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:         userRepo,
		recipeRepo:       recipeRepo,
		ratingRepo:       ratingRepo,
		refreshTokenRepo: refreshTokenRepo,
		blobs:            blobs,
		publisher:        publisher,
		logger:           logger,
	}
}

func (s *userService) findUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.FromUser(user, s.blobs.URL), nil
}

func (s *userService) UpdateProfile(ctx context.Context, caller *authz.Identity, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	return s.applyProfileUpdate(ctx, caller.ID, req, image)
}

func (s *userService) UpdateUserProfile(ctx context.Context, caller *authz.Identity, userID string, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if !authz.Allowed(caller, authz.ActionManageUser, false) {
		return nil, apperr.Forbiddenf("only super admins may manage users")
	}
	return s.applyProfileUpdate(ctx, userID, req, image)
}

// applyProfileUpdate edits profile fields and swaps the profile image using
// the write-new-then-release-old protocol.
func (s *userService) applyProfileUpdate(ctx context.Context, userID string, req *dto.UpdateProfileRequest, image *dto.Upload) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.GithubLink != nil {
		user.GithubLink = *req.GithubLink
	}

	var oldKey *string
	if image != nil {
		newKey, err := s.blobs.Put(ctx, "profiles", image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
		oldKey = user.ProfileImage
		user.ProfileImage = &newKey
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if image != nil && user.ProfileImage != nil {
			if delErr := s.blobs.Delete(ctx, *user.ProfileImage); delErr != nil {
				s.logger.Error("failed to clean up blob after aborted save", "key", *user.ProfileImage, "error", delErr)
			}
		}
		return nil, err
	}
	if oldKey != nil {
		if err := s.blobs.Delete(ctx, *oldKey); err != nil {
			s.logger.Error("failed to release replaced blob", "key", *oldKey, "error", err)
		}
	}

	resp := dto.FromUser(user, s.blobs.URL)
	s.publisher.Publish(broadcast.NewUserEvent(broadcast.ActionProfileUpdate, resp))
	return resp, nil
}

func (s *userService) ListUsers(ctx context.Context, caller *authz.Identity) ([]dto.UserResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if !authz.Allowed(caller, authz.ActionListUsers, false) {
		return nil, apperr.Forbiddenf("only super admins may list users")
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *dto.FromUser(&users[i], s.blobs.URL))
	}
	return out, nil
}

func (s *userService) UpdateUserRole(ctx context.Context, caller *authz.Identity, userID, newRole string) (*dto.UserResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if !authz.Allowed(caller, authz.ActionUpdateUserRole, false) {
		return nil, apperr.Forbiddenf("only super admins may change roles")
	}
	if !authz.ValidRoleName(newRole) {
		return nil, apperr.Invalidf("invalid role %q", newRole)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = newRole
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := dto.FromUser(user, s.blobs.URL)
	s.publisher.Publish(broadcast.NewUserEvent(broadcast.ActionRoleUpdate, resp))
	return resp, nil
}

func (s *userService) CreateTeamMember(ctx context.Context, caller *authz.Identity, req *dto.CreateTeamMemberRequest, image *dto.Upload) (*dto.UserResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if !authz.Allowed(caller, authz.ActionManageUser, false) {
		return nil, apperr.Forbiddenf("only super admins may create team members")
	}

	role := req.Role
	if role == "" {
		role = authz.RoleSuperAdmin.String()
	}
	if !authz.ValidRoleName(role) {
		return nil, apperr.Invalidf("invalid role %q", role)
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Invalidf("username already in use")
	}
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Invalidf("email already in use")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         uuid.New().String(),
		Username:   req.Username,
		Email:      req.Email,
		Password:   hashedPassword,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       role,
		Bio:        req.Bio,
		GithubLink: req.GithubLink,
	}

	if image != nil {
		key, err := s.blobs.Put(ctx, "profiles", image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = &key
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if user.ProfileImage != nil {
			if delErr := s.blobs.Delete(ctx, *user.ProfileImage); delErr != nil {
				s.logger.Error("failed to clean up blob after aborted create", "key", *user.ProfileImage, "error", delErr)
			}
		}
		return nil, err
	}

	resp := dto.FromUser(user, s.blobs.URL)
	s.publisher.Publish(broadcast.NewUserEvent(broadcast.ActionCreateTeamMember, resp))
	return resp, nil
}

// DeleteUser removes an identity and everything it owns: ratings, authored
// recipes (with their image blobs), refresh tokens, and the profile image.
// A super admin deleting their own account is refused.
func (s *userService) DeleteUser(ctx context.Context, caller *authz.Identity, userID string) error {
	if caller == nil {
		return apperr.Unauthenticatedf("authentication required")
	}
	if !authz.Allowed(caller, authz.ActionDeleteUser, false) {
		return apperr.Forbiddenf("only super admins may delete users")
	}
	if caller.ID == userID {
		return apperr.Conflictf("cannot delete your own account")
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	snapshot := dto.FromUser(user, s.blobs.URL)

	if err := s.ratingRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	recipes, err := s.recipeRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return err
	}
	for i := range recipes {
		if err := s.recipeRepo.Delete(ctx, recipes[i].ID); err != nil {
			return err
		}
		if recipes[i].Image != nil {
			if err := s.blobs.Delete(ctx, *recipes[i].Image); err != nil {
				s.logger.Error("failed to release blob of deleted recipe", "key", *recipes[i].Image, "error", err)
			}
		}
	}

	if err := s.refreshTokenRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	if user.ProfileImage != nil {
		if err := s.blobs.Delete(ctx, *user.ProfileImage); err != nil {
			s.logger.Error("failed to release profile image blob", "key", *user.ProfileImage, "error", err)
		}
	}

	s.publisher.Publish(broadcast.NewUserEvent(broadcast.ActionDeleteUser, snapshot))
	return nil
}

func (s *userService) PublicTeam(ctx context.Context) ([]dto.PublicTeamMember, error) {
	admins, err := s.userRepo.ListByRole(ctx, authz.RoleSuperAdmin.String())
	if err != nil {
		return nil, err
	}
	out := make([]dto.PublicTeamMember, 0, len(admins))
	for i := range admins {
		out = append(out, *dto.FromUserToPublicTeamMember(&admins[i], s.blobs.URL))
	}
	return out, nil
}
