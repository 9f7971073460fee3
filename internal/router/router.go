package router

import (
	"github.com/gin-gonic/gin"

	"github.com/hpatel/profilesync-backend/config"
	"github.com/hpatel/profilesync-backend/internal/app/controller"
	"github.com/hpatel/profilesync-backend/internal/middleware"
)

type Router struct {
	profileController     *controller.ProfileController
	paymentController     *controller.PaymentController
	identityController    *controller.IdentityController
	transactionController *controller.TransactionController
	wsController          *controller.WSController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	profileController *controller.ProfileController,
	paymentController *controller.PaymentController,
	identityController *controller.IdentityController,
	transactionController *controller.TransactionController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		profileController:     profileController,
		paymentController:     paymentController,
		identityController:    identityController,
		transactionController: transactionController,
		wsController:          wsController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Profile sync API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		profiles := v1.Group("/profiles", r.authMiddleware.Authenticate())
		{
			profiles.GET("", r.profileController.ListProfiles)
			profiles.POST("", r.profileController.SubmitProfile)
			profiles.PATCH("/:id", r.profileController.UpdateProfile)
			profiles.DELETE("/:id", r.profileController.DeleteProfile)
		}

		payments := v1.Group("/payments", r.authMiddleware.Authenticate())
		{
			payments.POST("/checkout-success", r.paymentController.CheckoutSuccess)
			payments.POST("/resume", r.paymentController.Resume)
			payments.GET("/state", r.paymentController.WorkflowState)
			payments.DELETE("/draft", r.paymentController.AbandonDraft)
		}

		identity := v1.Group("/identity", r.authMiddleware.Authenticate())
		{
			identity.GET("", r.identityController.GetIdentity)
			identity.PUT("", r.identityController.PutIdentity)
			identity.PATCH("", r.identityController.PatchIdentity)
		}

		transactions := v1.Group("/transactions", r.authMiddleware.Authenticate())
		{
			transactions.GET("", r.transactionController.ListTransactions)
			transactions.GET("/export", r.transactionController.ExportTransactions)
		}

		v1.GET("/ws", r.authMiddleware.Authenticate(), r.wsController.Connect)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
