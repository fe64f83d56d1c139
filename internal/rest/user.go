package rest

import (
	"net/http"

	"github.com/dfryer1193/imgstash/api"
	"github.com/dfryer1193/imgstash/internal/middleware"
	"github.com/gin-gonic/gin"
)

// GetUser handles GET /api/user, echoing the identity the auth provider
// resolved for this request
func GetUser(c *gin.Context) {
	c.JSON(http.StatusOK, api.User{ID: middleware.UserID(c)})
}
