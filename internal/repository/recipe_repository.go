package repository

import (
	"context"

	"recipehub/internal/authz"
	"recipehub/internal/models"

	"gorm.io/gorm"
)

// VisibleTo is the visibility predicate as a reusable gorm scope. It is
// applied identically to list and single-item reads so a recipe outside the
// viewer's scope is indistinguishable from a missing one.
//   - anonymous: approved only
//   - user: approved, plus their own in any status
//   - admin / super_admin: unrestricted
func VisibleTo(viewer *authz.Identity) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case viewer == nil:
			return db.Where("recipes.status = ?", models.StatusApproved)
		case viewer.Role.AtLeast(authz.RoleAdmin):
			return db
		default:
			return db.Where("recipes.status = ? OR recipes.author_id = ?", models.StatusApproved, viewer.ID)
		}
	}
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id int64, viewer *authz.Identity) (*models.Recipe, error)
	List(ctx context.Context, viewer *authz.Identity) ([]models.Recipe, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id int64) error

	// Homepage projections over approved recipes.
	TopRated(ctx context.Context, limit int) ([]models.Recipe, error)
	Signature(ctx context.Context, limit int) ([]models.Recipe, error)
	Recent(ctx context.Context, limit int) ([]models.Recipe, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Preload("Ratings").
		Preload("Ratings.User")
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64, viewer *authz.Identity) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.withAssociations(ctx).
		Scopes(VisibleTo(viewer)).
		First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, viewer *authz.Identity) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.withAssociations(ctx).
		Scopes(VisibleTo(viewer)).
		Order("recipes.created_at DESC").
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Save(recipe).Error
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Recipe{}, id).Error
}

// TopRated orders approved recipes by average score, breaking ties toward the
// lowest id so the ranking is deterministic. Unrated recipes count as 0.
func (r *recipeRepository) TopRated(ctx context.Context, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.withAssociations(ctx).
		Select("recipes.*, COALESCE(AVG(ratings.score), 0) AS avg_score").
		Joins("LEFT JOIN ratings ON ratings.recipe_id = recipes.id").
		Where("recipes.status = ?", models.StatusApproved).
		Group("recipes.id").
		Order("avg_score DESC, recipes.id ASC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Signature(ctx context.Context, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.withAssociations(ctx).
		Where("recipes.status = ? AND recipes.is_signature = ?", models.StatusApproved, true).
		Order("recipes.created_at DESC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Recent(ctx context.Context, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.withAssociations(ctx).
		Where("recipes.status = ?", models.StatusApproved).
		Order("recipes.created_at DESC").
		Limit(limit).
		Find(&recipes).Error
	return recipes, err
}
