// api/router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chittoorhealth/api/controller"
	"github.com/chittoorhealth/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	jwtSecret string,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret))

	controllers.Resident.RegisterRoutes(api)
	controllers.Analytics.RegisterRoutes(api)
	controllers.Export.RegisterRoutes(api)

	return router
}
