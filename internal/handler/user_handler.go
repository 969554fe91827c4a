package handler

import (
	"net/http"

	"recipehub/internal/dto"
	"recipehub/internal/middleware"
	"recipehub/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user management and team routes. The management
// routes are super-admin only; enforcement lives in the service layer.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	users := router.Group("/users", authRequired)
	{
		users.GET("", h.List)
		users.PUT("/:id/role", h.UpdateRole)
		users.PUT("/:id", h.UpdateProfile)
		users.DELETE("/:id", h.Delete)
	}

	team := router.Group("/team")
	{
		team.GET("/public", h.PublicTeam)
		team.POST("", authRequired, h.CreateMember)
	}
}

// List returns every account.
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateRole changes a user's role.
// PUT /api/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateUserRole(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile edits another user's profile.
// PUT /api/users/:id
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, err := formUpload(c, "profile_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateUserProfile(c.Request.Context(), middleware.Identity(c), c.Param("id"), &req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes an account together with its recipes and ratings.
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// CreateMember provisions a new team account.
// POST /api/team
func (h *UserHandler) CreateMember(c *gin.Context) {
	var req dto.CreateTeamMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	image, err := formUpload(c, "profile_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.CreateTeamMember(c.Request.Context(), middleware.Identity(c), &req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// PublicTeam lists team members with public fields only.
// GET /api/team/public
func (h *UserHandler) PublicTeam(c *gin.Context) {
	members, err := h.userService.PublicTeam(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
