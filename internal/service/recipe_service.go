package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"recipehub/internal/apperr"
	"recipehub/internal/authz"
	"recipehub/internal/broadcast"
	"recipehub/internal/dto"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/storage"

	"gorm.io/gorm"
)

type RecipeService interface {
	Create(ctx context.Context, caller *authz.Identity, req *dto.CreateRecipeRequest) (*dto.RecipeResponse, error)
	List(ctx context.Context, viewer *authz.Identity) ([]dto.RecipeResponse, error)
	Get(ctx context.Context, viewer *authz.Identity, id int64) (*dto.RecipeResponse, error)
	Update(ctx context.Context, caller *authz.Identity, id int64, req *dto.UpdateRecipeRequest, image *dto.Upload) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, caller *authz.Identity, id int64) error
	Approve(ctx context.Context, caller *authz.Identity, id int64) (*dto.RecipeResponse, error)
	Decline(ctx context.Context, caller *authz.Identity, id int64) (*dto.RecipeResponse, error)
	ToggleSignature(ctx context.Context, caller *authz.Identity, id int64) (*dto.RecipeResponse, error)
	UpdatePhoto(ctx context.Context, caller *authz.Identity, id int64, image *dto.Upload) (*dto.RecipeResponse, error)
}

type recipeService struct {
	recipeRepo repository.RecipeRepository
	blobs      storage.BlobStore
	publisher  broadcast.Publisher
	logger     *slog.Logger
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	blobs storage.BlobStore,
	publisher broadcast.Publisher,
	logger *slog.Logger,
) RecipeService {
	return &recipeService{
		recipeRepo: recipeRepo,
		blobs:      blobs,
		publisher:  publisher,
		logger:     logger,
	}
}

// get loads a recipe through the viewer's visibility predicate. A recipe
// outside the predicate reads as absent, never as forbidden.
func (s *recipeService) get(ctx context.Context, viewer *authz.Identity, id int64) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id, viewer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("recipe not found")
		}
		return nil, err
	}
	return recipe, nil
}

// Create submits a new recipe. Recipes from admins and super admins are
// approved on creation; everyone else starts pending moderation.
func (s *recipeService) Create(ctx context.Context, caller *authz.Identity, req *dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Invalidf("title is required")
	}

	status := models.StatusPending
	if caller.Role.AtLeast(authz.RoleAdmin) {
		status = models.StatusApproved
	}

	servings := req.Servings
	if servings <= 0 {
		servings = 2
	}

	recipe := &models.Recipe{
		Title:       req.Title,
		Description: req.Description,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
		Servings:    servings,
		AuthorID:    caller.ID,
		Status:      status,
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}

	// Reload with author and ratings for the response and broadcast payload.
	created, err := s.get(ctx, caller, recipe.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.FromRecipe(created, caller, s.blobs.URL)
	s.publisher.Publish(broadcast.NewRecipeEvent(broadcast.ActionCreate, resp))
	return resp, nil
}

func (s *recipeService) List(ctx context.Context, viewer *authz.Identity) ([]dto.RecipeResponse, error) {
	recipes, err := s.recipeRepo.List(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return dto.FromRecipes(recipes, viewer, s.blobs.URL), nil
}

func (s *recipeService) Get(ctx context.Context, viewer *authz.Identity, id int64) (*dto.RecipeResponse, error) {
	recipe, err := s.get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return dto.FromRecipe(recipe, viewer, s.blobs.URL), nil
}

// Update edits recipe fields and optionally replaces the image. The new blob
// is written first and the old one released only after the record commits, so
// a failed write never leaves the record pointing at a missing blob.
func (s *recipeService) Update(ctx context.Context, caller *authz.Identity, id int64, req *dto.UpdateRecipeRequest, image *dto.Upload) (*dto.RecipeResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	recipe, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(caller, authz.ActionUpdateRecipe, caller.IsOwner(recipe.AuthorID)) {
		return nil, apperr.Forbiddenf("you may not edit this recipe")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperr.Invalidf("title cannot be empty")
		}
		recipe.Title = *req.Title
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Ingredients != nil {
		recipe.Ingredients = *req.Ingredients
	}
	if req.Steps != nil {
		recipe.Steps = *req.Steps
	}
	if req.Servings != nil {
		if *req.Servings <= 0 {
			return nil, apperr.Invalidf("servings must be positive")
		}
		recipe.Servings = *req.Servings
	}

	if err := s.swapImageAndSave(ctx, recipe, image); err != nil {
		return nil, err
	}

	updated, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromRecipe(updated, caller, s.blobs.URL)
	s.publisher.Publish(broadcast.NewRecipeEvent(broadcast.ActionUpdate, resp))
	return resp, nil
}

// swapImageAndSave persists the recipe, attaching the new image first and
// releasing the previous blob only once the save has committed.
func (s *recipeService) swapImageAndSave(ctx context.Context, recipe *models.Recipe, image *dto.Upload) error {
	var oldKey *string
	if image != nil {
		newKey, err := s.blobs.Put(ctx, "recipes", image.Filename, image.Reader)
		if err != nil {
			return err
		}
		oldKey = recipe.Image
		recipe.Image = &newKey
	}

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		if recipe.Image != nil && image != nil {
			if delErr := s.blobs.Delete(ctx, *recipe.Image); delErr != nil {
				s.logger.Error("failed to clean up blob after aborted save", "key", *recipe.Image, "error", delErr)
			}
		}
		recipe.Image = oldKey
		return err
	}

	if oldKey != nil {
		if err := s.blobs.Delete(ctx, *oldKey); err != nil {
			s.logger.Error("failed to release replaced blob", "key", *oldKey, "error", err)
		}
	}
	return nil
}

// Delete removes a recipe, broadcasting its last rendered state. The snapshot
// is taken before the row goes away since there is nothing left to serialize
// afterwards.
func (s *recipeService) Delete(ctx context.Context, caller *authz.Identity, id int64) error {
	if caller == nil {
		return apperr.Unauthenticatedf("authentication required")
	}
	recipe, err := s.get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !authz.Allowed(caller, authz.ActionDeleteRecipe, caller.IsOwner(recipe.AuthorID)) {
		return apperr.Forbiddenf("you may not delete this recipe")
	}

	snapshot := dto.FromRecipe(recipe, caller, s.blobs.URL)

	if err := s.recipeRepo.Delete(ctx, recipe.ID); err != nil {
		return err
	}
	if recipe.Image != nil {
		if err := s.blobs.Delete(ctx, *recipe.Image); err != nil {
			s.logger.Error("failed to release blob of deleted recipe", "key", *recipe.Image, "error", err)
		}
	}

	s.publisher.Publish(broadcast.NewRecipeEvent(broadcast.ActionDelete, snapshot))
	return nil
}

// Approve moves a recipe to approved. Re-approving is allowed; moderation
// decisions are re-assignable, not append-only.
func (s *recipeService) Approve(ctx context.Context, caller *authz.Identity, id int64) (*dto.RecipeResponse, error) {
	return s.moderate(ctx, caller, id, models.StatusApproved, authz.ActionApproveRecipe, broadcast.ActionApprove)
}

// Decline moves a recipe to declined.
func (s *recipeService) Decline(ctx context.Context, caller *authz.Identity, id int64) (*dto.RecipeResponse, error) {
	return s.moderate(ctx, caller, id, models.StatusDeclined, authz.ActionDeclineRecipe, broadcast.ActionDecline)
}

func (s *recipeService) moderate(ctx context.Context, caller *authz.Identity, id int64, status string, action authz.Action, event broadcast.Action) (*dto.RecipeResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	// The role gate comes first: moderation is refused outright rather than
	// hidden behind visibility.
	if !authz.Allowed(caller, action, false) {
		return nil, apperr.Forbiddenf("only admins may moderate recipes")
	}

	recipe, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	recipe.Status = status
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}

	resp := dto.FromRecipe(recipe, caller, s.blobs.URL)
	s.publisher.Publish(broadcast.NewRecipeEvent(event, resp))
	return resp, nil
}

// ToggleSignature flips the signature flag. Authors tag their own recipes;
// only super admins may tag anyone's.
func (s *recipeService) ToggleSignature(ctx context.Context, caller *authz.Identity, id int64) (*dto.RecipeResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	recipe, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(caller, authz.ActionToggleSignature, caller.IsOwner(recipe.AuthorID)) {
		return nil, apperr.Forbiddenf("you may only tag your own recipes as signature")
	}

	recipe.IsSignature = !recipe.IsSignature
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}

	resp := dto.FromRecipe(recipe, caller, s.blobs.URL)
	s.publisher.Publish(broadcast.NewRecipeEvent(broadcast.ActionSignatureToggle, resp))
	return resp, nil
}

// UpdatePhoto replaces the recipe image through the dedicated endpoint, with
// the same ownership guard as signature tagging.
func (s *recipeService) UpdatePhoto(ctx context.Context, caller *authz.Identity, id int64, image *dto.Upload) (*dto.RecipeResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if image == nil {
		return nil, apperr.Invalidf("no image file provided")
	}
	recipe, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(caller, authz.ActionUpdatePhoto, caller.IsOwner(recipe.AuthorID)) {
		return nil, apperr.Forbiddenf("you may only update photos of your own recipes")
	}

	if err := s.swapImageAndSave(ctx, recipe, image); err != nil {
		return nil, err
	}

	updated, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromRecipe(updated, caller, s.blobs.URL)
	s.publisher.Publish(broadcast.NewRecipeEvent(broadcast.ActionPhotoUpdate, resp))
	return resp, nil
}
