package dto

import (
	"time"

	"recipehub/internal/authz"
	"recipehub/internal/models"
)

// RatingResponse is one rating row nested in a recipe payload.
type RatingResponse struct {
	ID        int64         `json:"id"`
	User      *UserResponse `json:"user"`
	Score     int           `json:"score"`
	CreatedAt time.Time     `json:"created_at"`
}

func FromRating(rating *models.Rating, resolve URLFunc) *RatingResponse {
	return &RatingResponse{
		ID:        rating.ID,
		User:      FromUser(&rating.User, resolve),
		Score:     rating.Score,
		CreatedAt: rating.CreatedAt,
	}
}

// RecipeResponse is the full recipe representation. AverageRating is derived
// from the loaded ratings and defaults to 0 when there are none. UserRating
// is only populated for authenticated viewers.
type RecipeResponse struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Ingredients   []string         `json:"ingredients"`
	Steps         string           `json:"steps"`
	Servings      int              `json:"servings"`
	Image         *string          `json:"image"`
	Author        *UserResponse    `json:"author"`
	Status        string           `json:"status"`
	IsSignature   bool             `json:"is_signature"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Ratings       []RatingResponse `json:"ratings"`
	AverageRating float64          `json:"average_rating"`
	TotalRatings  int              `json:"total_ratings"`
	UserRating    *int             `json:"user_rating"`
}

func FromRecipe(recipe *models.Recipe, viewer *authz.Identity, resolve URLFunc) *RecipeResponse {
	resp := &RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		Description: recipe.Description,
		Ingredients: recipe.Ingredients,
		Steps:       recipe.Steps,
		Servings:    recipe.Servings,
		Author:      FromUser(&recipe.Author, resolve),
		Status:      recipe.Status,
		IsSignature: recipe.IsSignature,
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
		Ratings:     make([]RatingResponse, 0, len(recipe.Ratings)),
	}
	if resp.Ingredients == nil {
		resp.Ingredients = []string{}
	}
	if recipe.Image != nil {
		url := resolve(*recipe.Image)
		resp.Image = &url
	}

	sum := 0
	for i := range recipe.Ratings {
		rating := &recipe.Ratings[i]
		resp.Ratings = append(resp.Ratings, *FromRating(rating, resolve))
		sum += rating.Score
		if viewer != nil && rating.UserID == viewer.ID {
			score := rating.Score
			resp.UserRating = &score
		}
	}
	resp.TotalRatings = len(recipe.Ratings)
	if resp.TotalRatings > 0 {
		resp.AverageRating = float64(sum) / float64(resp.TotalRatings)
	}
	return resp
}

func FromRecipes(recipes []models.Recipe, viewer *authz.Identity, resolve URLFunc) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, *FromRecipe(&recipes[i], viewer, resolve))
	}
	return out
}

// CreateRecipeRequest submits a new recipe.
type CreateRecipeRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       string   `json:"steps"`
	Servings    int      `json:"servings"`
}

// UpdateRecipeRequest carries partial recipe updates; nil fields are left
// untouched.
type UpdateRecipeRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Ingredients *[]string `json:"ingredients"`
	Steps       *string   `json:"steps"`
	Servings    *int      `json:"servings"`
}

// RateRequest scores a recipe 1-5.
type RateRequest struct {
	Score int `json:"score" binding:"required"`
}
