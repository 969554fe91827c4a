package repository

import (
	"context"

	"recipehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	// Upsert inserts the rating or, if one exists for (recipe, user),
	// overwrites its score. Atomic at the store via the composite unique
	// index, so concurrent calls serialize to the last committed score.
	Upsert(ctx context.Context, rating *models.Rating) error
	GetByRecipeAndUser(ctx context.Context, recipeID int64, userID string) (*models.Rating, error)
	ListByRecipe(ctx context.Context, recipeID int64) ([]models.Rating, error)
	Average(ctx context.Context, recipeID int64) (float64, error)
	Count(ctx context.Context, recipeID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Create(rating).Error
}

func (r *ratingRepository) GetByRecipeAndUser(ctx context.Context, recipeID int64, userID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Preload("User").
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) ListByRecipe(ctx context.Context, recipeID int64) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Preload("User").
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) Average(ctx context.Context, recipeID int64) (float64, error) {
	var avg struct {
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) as average").
		Where("recipe_id = ?", recipeID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg.Average, nil
}

func (r *ratingRepository) Count(ctx context.Context, recipeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error
	return count, err
}

func (r *ratingRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Rating{}).Error
}
