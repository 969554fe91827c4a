package models

import "time"

// Rating holds one score per (recipe, user). The composite unique index is
// what makes the upsert in the repository race-safe.
type Rating struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;uniqueIndex:idx_ratings_recipe_user"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_recipe_user"`
	Score     int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 5"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `json:"recipe,omitempty" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (Rating) TableName() string {
	return "ratings"
}
