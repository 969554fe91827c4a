package dto

import (
	"recipehub/internal/models"
)

type HomepageContentResponse struct {
	ID             int64   `json:"id"`
	WelcomeMessage string  `json:"welcome_message"`
	Image          *string `json:"image"`
}

func FromHomepageContent(content *models.HomepageContent, resolve URLFunc) *HomepageContentResponse {
	resp := &HomepageContentResponse{
		ID:             content.ID,
		WelcomeMessage: content.WelcomeMessage,
	}
	if content.Image != nil {
		url := resolve(*content.Image)
		resp.Image = &url
	}
	return resp
}

// HomepagePayload is the public homepage aggregate.
type HomepagePayload struct {
	HomepageContent *HomepageContentResponse `json:"homepage_content"`
	HallOfFame      *RecipeResponse          `json:"hall_of_fame"`
	TopDishes       []RecipeResponse         `json:"top_dishes"`
	SignatureDishes []RecipeResponse         `json:"signature_dishes"`
	RecentRecipes   []RecipeResponse         `json:"recent_recipes"`
}

// UpdateHomepageRequest updates the singleton homepage record.
type UpdateHomepageRequest struct {
	WelcomeMessage *string `form:"welcome_message" json:"welcome_message"`
}
