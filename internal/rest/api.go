package rest

import (
	"github.com/dfryer1193/imgstash/images/application"
	"github.com/dfryer1193/imgstash/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewApi registers the authenticated /api routes on the router
func NewApi(router *gin.Engine, svc *application.ImageService, verifier middleware.TokenVerifier) {
	h := NewImagesHandler(svc)

	apiGroup := router.Group("/api", middleware.Auth(verifier))
	{
		apiGroup.GET("/images", h.GetImages)
		apiGroup.POST("/images", h.PostImage)
		apiGroup.PUT("/images/:id", h.PutImage)
		apiGroup.DELETE("/images/:id", h.DeleteImage)

		apiGroup.GET("/user", GetUser)
	}
}
