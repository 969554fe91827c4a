package handler

import (
	"net/http"

	"recipehub/internal/dto"
	"recipehub/internal/middleware"
	"recipehub/internal/service"

	"github.com/gin-gonic/gin"
)

type HomepageHandler struct {
	homepageService service.HomepageService
}

func NewHomepageHandler(homepageService service.HomepageService) *HomepageHandler {
	return &HomepageHandler{homepageService: homepageService}
}

func (h *HomepageHandler) RegisterRoutes(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	router.GET("/homepage", h.Get)
	router.PUT("/homepage", authRequired, h.Update)
}

// Get returns the homepage aggregate: editable content plus the ranked
// recipe sections.
// GET /api/homepage
func (h *HomepageHandler) Get(c *gin.Context) {
	payload, err := h.homepageService.GetHomepage(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// Update edits the homepage welcome message and image.
// PUT /api/homepage
func (h *HomepageHandler) Update(c *gin.Context) {
	var req dto.UpdateHomepageRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, err := formUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.homepageService.UpdateHomepage(c.Request.Context(), middleware.Identity(c), &req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}
