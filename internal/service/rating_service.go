package service

import (
	"context"
	"errors"

	"recipehub/internal/apperr"
	"recipehub/internal/authz"
	"recipehub/internal/broadcast"
	"recipehub/internal/dto"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/storage"

	"gorm.io/gorm"
)

type RatingService interface {
	// Rate records the caller's score for a recipe, overwriting any previous
	// score from the same caller.
	Rate(ctx context.Context, caller *authz.Identity, recipeID int64, score int) (*dto.RatingResponse, error)
	// ListRatings returns every rating on a recipe, newest first, if the
	// recipe is visible to the viewer.
	ListRatings(ctx context.Context, viewer *authz.Identity, recipeID int64) ([]dto.RatingResponse, error)
	AverageRating(ctx context.Context, recipeID int64) (float64, error)
	RatingCount(ctx context.Context, recipeID int64) (int64, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	recipeRepo repository.RecipeRepository
	blobs      storage.BlobStore
	publisher  broadcast.Publisher
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	recipeRepo repository.RecipeRepository,
	blobs storage.BlobStore,
	publisher broadcast.Publisher,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		recipeRepo: recipeRepo,
		blobs:      blobs,
		publisher:  publisher,
	}
}

func (s *ratingService) Rate(ctx context.Context, caller *authz.Identity, recipeID int64, score int) (*dto.RatingResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if score < 1 || score > 5 {
		return nil, apperr.Invalidf("score must be between 1 and 5")
	}

	// The recipe must exist within the caller's visibility.
	if _, err := s.recipeRepo.GetByID(ctx, recipeID, caller); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("recipe not found")
		}
		return nil, err
	}

	rating := &models.Rating{
		RecipeID: recipeID,
		UserID:   caller.ID,
		Score:    score,
	}
	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, err
	}

	// Reload for the user association and the authoritative timestamps.
	stored, err := s.ratingRepo.GetByRecipeAndUser(ctx, recipeID, caller.ID)
	if err != nil {
		return nil, err
	}

	// Broadcast the recipe with its new aggregate, not just the rating row.
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID, caller)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(broadcast.NewRecipeEvent(broadcast.ActionRate, dto.FromRecipe(recipe, caller, s.blobs.URL)))

	return dto.FromRating(stored, s.blobs.URL), nil
}

func (s *ratingService) ListRatings(ctx context.Context, viewer *authz.Identity, recipeID int64) ([]dto.RatingResponse, error) {
	if _, err := s.recipeRepo.GetByID(ctx, recipeID, viewer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("recipe not found")
		}
		return nil, err
	}

	ratings, err := s.ratingRepo.ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		out = append(out, *dto.FromRating(&ratings[i], s.blobs.URL))
	}
	return out, nil
}

// AverageRating returns the arithmetic mean of all scores for the recipe,
// or 0 when it has none.
func (s *ratingService) AverageRating(ctx context.Context, recipeID int64) (float64, error) {
	return s.ratingRepo.Average(ctx, recipeID)
}

func (s *ratingService) RatingCount(ctx context.Context, recipeID int64) (int64, error) {
	return s.ratingRepo.Count(ctx, recipeID)
}
