package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickai/quickai-golang/internal/handlers"
	"github.com/quickai/quickai-golang/internal/middleware"
)

// CORSMiddleware tells the browser the configured frontend origin may
// send authenticated requests to us.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, corsOrigin string) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(corsOrigin))

	// --- Liveness Probe (Public) ---
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "server is live!")
	})

	api := router.Group("/api")
	{
		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Public Pricing ---
		api.GET("/plans", h.GetPlans)

		// --- AI Action Routes (Login + Entitlement Required) ---
		// Every paid action resolves the caller's plan and working
		// usage count before the handler's own gate check runs.
		ai := api.Group("/ai")
		ai.Use(middleware.AuthMiddleware())
		ai.Use(middleware.EntitlementMiddleware(h.Resolver))
		{
			ai.POST("/generate-article", h.GenerateArticle)
			ai.POST("/generate-blog-title", h.GenerateBlogTitle)
			ai.POST("/generate-image", h.GenerateImage)
			ai.POST("/remove-background", h.RemoveBackground)
			ai.POST("/remove-object", h.RemoveObject)
			ai.POST("/resume-review", h.ResumeReview)
		}

		// --- Creation Routes (Login Required) ---
		user := api.Group("/user")
		user.Use(middleware.AuthMiddleware())
		{
			user.GET("/get-user-creation", h.GetUserCreations)
			user.GET("/get-published-creation", h.GetPublishedCreations)
			user.POST("/toggle-publish-creation", h.TogglePublishCreation)
			user.GET("/plan", h.GetMyPlan)
		}
	}

	return router
}
