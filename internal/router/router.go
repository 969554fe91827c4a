package router

import (
	"log/slog"
	"net/http"

	"recipehub/internal/broadcast"
	"recipehub/internal/config"
	"recipehub/internal/handler"
	"recipehub/internal/middleware"
	"recipehub/internal/service"

	"github.com/gin-gonic/gin"
)

// Dependencies collects everything the router needs to wire routes.
type Dependencies struct {
	Config          *config.Config
	AuthService     service.AuthService
	AuthHandler     *handler.AuthHandler
	RecipeHandler   *handler.RecipeHandler
	UserHandler     *handler.UserHandler
	HomepageHandler *handler.HomepageHandler
	Hub             *broadcast.Hub
	MediaDir        string
	Logger          *slog.Logger
}

// New builds the gin engine with all routes registered.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))
	router.Use(cors(deps.Config.CORSOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"subscribers": deps.Hub.SubscriberCount(),
		})
	})

	// Uploaded media is served straight off disk.
	if deps.MediaDir != "" {
		router.Static(deps.Config.MediaURL, deps.MediaDir)
	}

	authRequired := middleware.AuthRequired(deps.AuthService)
	authOptional := middleware.AuthOptional(deps.AuthService)
	rateLimited := middleware.NewRateLimiter(deps.Config.AuthRateLimit, deps.Config.AuthRateBurst).Middleware()

	api := router.Group("/api", authOptional)
	{
		deps.AuthHandler.RegisterRoutes(api, authRequired, rateLimited)
		deps.RecipeHandler.RegisterRoutes(api, authRequired)
		deps.UserHandler.RegisterRoutes(api, authRequired)
		deps.HomepageHandler.RegisterRoutes(api, authRequired)
	}

	router.GET("/ws", broadcast.ServeWS(deps.Hub, deps.Config.CORSOrigins, deps.Logger))

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
		)
	}
}

func cors(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
