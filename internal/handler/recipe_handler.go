package handler

import (
	"net/http"
	"strconv"
	"strings"

	"recipehub/internal/dto"
	"recipehub/internal/middleware"
	"recipehub/internal/service"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipeService service.RecipeService
	ratingService service.RatingService
}

func NewRecipeHandler(recipeService service.RecipeService, ratingService service.RatingService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		ratingService: ratingService,
	}
}

// RegisterRoutes registers the recipe routes. Reads resolve an optional
// identity so the visibility policy knows who is asking; writes require one.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/:id", h.Get)
		recipes.GET("/:id/ratings", h.ListRatings)
		recipes.POST("", authRequired, h.Create)
		recipes.PUT("/:id", authRequired, h.Update)
		recipes.DELETE("/:id", authRequired, h.Delete)
		recipes.POST("/:id/rate", authRequired, h.Rate)
		recipes.POST("/:id/approve", authRequired, h.Approve)
		recipes.POST("/:id/decline", authRequired, h.Decline)
		recipes.POST("/:id/signature", authRequired, h.ToggleSignature)
		recipes.PUT("/:id/photo", authRequired, h.UpdatePhoto)
	}
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe ID"})
		return 0, false
	}
	return id, true
}

// List returns every recipe the caller is allowed to see.
// GET /api/recipes
func (h *RecipeHandler) List(c *gin.Context) {
	recipes, err := h.recipeService.List(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// Get returns a single recipe if it is visible to the caller.
// GET /api/recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Create submits a new recipe.
// POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var req dto.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.Identity(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// Update applies a partial edit. JSON bodies carry field changes only;
// multipart bodies may additionally replace the image.
// PUT /api/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	req, image, err := parseRecipeUpdate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), middleware.Identity(c), id, req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func parseRecipeUpdate(c *gin.Context) (*dto.UpdateRecipeRequest, *dto.Upload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req dto.UpdateRecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	req := &dto.UpdateRecipeRequest{}
	if v, set := c.GetPostForm("title"); set {
		req.Title = &v
	}
	if v, set := c.GetPostForm("description"); set {
		req.Description = &v
	}
	if v, set := c.GetPostForm("steps"); set {
		req.Steps = &v
	}
	if v, set := c.GetPostForm("servings"); set {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, err
		}
		req.Servings = &n
	}
	if vs, set := c.GetPostFormArray("ingredients"); set {
		req.Ingredients = &vs
	}

	image, err := formUpload(c, "image")
	if err != nil {
		return nil, nil, err
	}
	return req, image, nil
}

// Delete removes a recipe and its image.
// DELETE /api/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}

// Rate records the caller's score for a recipe. Re-rating overwrites the
// previous score.
// POST /api/recipes/:id/rate
func (h *RecipeHandler) Rate(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := h.ratingService.Rate(c.Request.Context(), middleware.Identity(c), id, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

// ListRatings returns all ratings on a recipe, newest first. Visibility
// follows the recipe itself.
// GET /api/recipes/:id/ratings
func (h *RecipeHandler) ListRatings(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	ratings, err := h.ratingService.ListRatings(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// Approve publishes a pending recipe.
// POST /api/recipes/:id/approve
func (h *RecipeHandler) Approve(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Approve(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Decline rejects a recipe.
// POST /api/recipes/:id/decline
func (h *RecipeHandler) Decline(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Decline(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// ToggleSignature flips the signature flag on a recipe.
// POST /api/recipes/:id/signature
func (h *RecipeHandler) ToggleSignature(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.ToggleSignature(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// UpdatePhoto replaces a recipe's image.
// PUT /api/recipes/:id/photo
func (h *RecipeHandler) UpdatePhoto(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	image, err := formUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdatePhoto(c.Request.Context(), middleware.Identity(c), id, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
