package service

import (
	"context"
	"log/slog"

	"recipehub/internal/apperr"
	"recipehub/internal/authz"
	"recipehub/internal/broadcast"
	"recipehub/internal/cache"
	"recipehub/internal/dto"
	"recipehub/internal/repository"
	"recipehub/internal/storage"
)

const (
	homepageCacheKey = "homepage:anonymous"

	topDishesLimit       = 3
	signatureDishesLimit = 6
	recentRecipesLimit   = 6
)

type HomepageService interface {
	// GetHomepage builds the public homepage aggregate. The anonymous
	// rendering is cached; authenticated viewers always get a fresh build
	// because user_rating differs per viewer.
	GetHomepage(ctx context.Context, viewer *authz.Identity) (*dto.HomepagePayload, error)
	UpdateHomepage(ctx context.Context, caller *authz.Identity, req *dto.UpdateHomepageRequest, image *dto.Upload) (*dto.HomepageContentResponse, error)
}

type homepageService struct {
	homepageRepo repository.HomepageRepository
	recipeRepo   repository.RecipeRepository
	blobs        storage.BlobStore
	publisher    broadcast.Publisher
	cache        *cache.Cache
	logger       *slog.Logger
}

func NewHomepageService(
	homepageRepo repository.HomepageRepository,
	recipeRepo repository.RecipeRepository,
	blobs storage.BlobStore,
	publisher broadcast.Publisher,
	c *cache.Cache,
	logger *slog.Logger,
) HomepageService {
	return &homepageService{
		homepageRepo: homepageRepo,
		recipeRepo:   recipeRepo,
		blobs:        blobs,
		publisher:    publisher,
		cache:        c,
		logger:       logger,
	}
}

func (s *homepageService) GetHomepage(ctx context.Context, viewer *authz.Identity) (*dto.HomepagePayload, error) {
	if viewer == nil {
		var cached dto.HomepagePayload
		if s.cache.GetJSON(ctx, homepageCacheKey, &cached) {
			return &cached, nil
		}
	}

	content, err := s.homepageRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	// Hall of fame is the top of the same ranking as top dishes.
	topDishes, err := s.recipeRepo.TopRated(ctx, topDishesLimit)
	if err != nil {
		return nil, err
	}
	signature, err := s.recipeRepo.Signature(ctx, signatureDishesLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.recipeRepo.Recent(ctx, recentRecipesLimit)
	if err != nil {
		return nil, err
	}

	payload := &dto.HomepagePayload{
		HomepageContent: dto.FromHomepageContent(content, s.blobs.URL),
		TopDishes:       dto.FromRecipes(topDishes, viewer, s.blobs.URL),
		SignatureDishes: dto.FromRecipes(signature, viewer, s.blobs.URL),
		RecentRecipes:   dto.FromRecipes(recent, viewer, s.blobs.URL),
	}
	if len(payload.TopDishes) > 0 {
		payload.HallOfFame = &payload.TopDishes[0]
	}

	if viewer == nil {
		s.cache.SetJSON(ctx, homepageCacheKey, payload)
	}
	return payload, nil
}

func (s *homepageService) UpdateHomepage(ctx context.Context, caller *authz.Identity, req *dto.UpdateHomepageRequest, image *dto.Upload) (*dto.HomepageContentResponse, error) {
	if caller == nil {
		return nil, apperr.Unauthenticatedf("authentication required")
	}
	if !authz.Allowed(caller, authz.ActionEditHomepage, false) {
		return nil, apperr.Forbiddenf("only super admins may edit the homepage")
	}

	content, err := s.homepageRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	if req.WelcomeMessage != nil {
		content.WelcomeMessage = *req.WelcomeMessage
	}

	var oldKey *string
	if image != nil {
		newKey, err := s.blobs.Put(ctx, "homepage", image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
		oldKey = content.Image
		content.Image = &newKey
	}

	if err := s.homepageRepo.Update(ctx, content); err != nil {
		if image != nil && content.Image != nil {
			if delErr := s.blobs.Delete(ctx, *content.Image); delErr != nil {
				s.logger.Error("failed to clean up blob after aborted save", "key", *content.Image, "error", delErr)
			}
		}
		return nil, err
	}
	if oldKey != nil {
		if err := s.blobs.Delete(ctx, *oldKey); err != nil {
			s.logger.Error("failed to release replaced blob", "key", *oldKey, "error", err)
		}
	}

	s.cache.Delete(ctx, homepageCacheKey)

	resp := dto.FromHomepageContent(content, s.blobs.URL)
	s.publisher.Publish(broadcast.NewHomepageEvent(resp))
	return resp, nil
}
