package repository

import (
	"context"

	"recipehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultWelcomeMessage = "Welcome to the kitchen. Pull up a chair — the food is hot and the love is hotter."

type HomepageRepository interface {
	// GetOrCreate returns the singleton homepage row, materializing it with
	// defaults on first access. The conflict-ignoring insert keeps concurrent
	// first reads from racing a duplicate singleton into existence.
	GetOrCreate(ctx context.Context) (*models.HomepageContent, error)
	Update(ctx context.Context, content *models.HomepageContent) error
}

type homepageRepository struct {
	db *gorm.DB
}

func NewHomepageRepository(db *gorm.DB) HomepageRepository {
	return &homepageRepository{db: db}
}

func (r *homepageRepository) GetOrCreate(ctx context.Context) (*models.HomepageContent, error) {
	seed := models.HomepageContent{
		ID:             models.HomepageContentID,
		WelcomeMessage: defaultWelcomeMessage,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var content models.HomepageContent
	if err := r.db.WithContext(ctx).First(&content, models.HomepageContentID).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *homepageRepository) Update(ctx context.Context, content *models.HomepageContent) error {
	return r.db.WithContext(ctx).Save(content).Error
}
