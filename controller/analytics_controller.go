// api/controller/analytics_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chittoorhealth/api/access"
	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/service"
	"github.com/chittoorhealth/api/util"
)

type AnalyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AnalyticsController) RegisterRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("/overview", ac.Overview)
		analytics.GET("/mandals/:mandal", ac.MandalAnalytics)
		analytics.GET("/secretariats", ac.AccessibleSecretariats)
	}
}

// Overview endpoint
func (ac *AnalyticsController) Overview(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	overview, err := ac.analyticsService.Overview(c, identity)
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// MandalAnalytics endpoint
func (ac *AnalyticsController) MandalAnalytics(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	analytics, err := ac.analyticsService.MandalAnalytics(c, identity, c.Param("mandal"))
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// AccessibleSecretariats endpoint returns the secretariats the caller is
// explicitly restricted to. Empty for admins and mandal officers.
func (ac *AnalyticsController) AccessibleSecretariats(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	secretariats, err := access.AccessibleSecretariats(identity, c.Query("mandal"))
	if err != nil {
		respondAnalyticsError(c, err)
		return
	}
	if secretariats == nil {
		secretariats = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"secretariats": secretariats})
}

func respondAnalyticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, health_errors.ErrMalformedAssignment):
		util.RespondWithError(c, http.StatusForbidden, "Malformed secretariat assignment", err)
	case errors.Is(err, health_errors.ErrInvalidRole):
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, health_errors.ErrDatabaseOperation):
		util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to compute analytics", health_errors.ErrInternalServer)
	}
}
