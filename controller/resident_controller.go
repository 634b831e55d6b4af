// api/controller/resident_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/service"
	"github.com/chittoorhealth/api/util"
	helper_util "github.com/chittoorhealth/api/util/helper"
)

type ResidentController struct {
	residentService service.IResidentService
}

func NewResidentController(residentService service.IResidentService) *ResidentController {
	return &ResidentController{
		residentService: residentService,
	}
}

// RegisterRoutes registers the API routes
func (rc *ResidentController) RegisterRoutes(r *gin.RouterGroup) {
	residents := r.Group("/residents")
	{
		residents.POST("", rc.CreateResident)
		residents.PUT("/:id", rc.UpdateResident)
		residents.DELETE("/:id", rc.DeleteResident)
		residents.GET("/:id", rc.GetResident)
		residents.GET("", rc.ListResidents)
		residents.POST("/search", rc.SearchResidents)
	}
}

// CreateResident endpoint
func (rc *ResidentController) CreateResident(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	var resident model.Resident
	if err := c.ShouldBindJSON(&resident); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid resident data", health_errors.ErrInvalidResidentData)
		return
	}

	created, err := rc.residentService.CreateResident(c, resident, identity)
	if err != nil {
		respondResidentError(c, err, "Failed to create resident")
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateResident endpoint
func (rc *ResidentController) UpdateResident(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	var resident model.Resident
	if err := c.ShouldBindJSON(&resident); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid resident data", err)
		return
	}
	resident.ID = c.Param("id")

	updated, err := rc.residentService.UpdateResident(c, resident, identity)
	if err != nil {
		respondResidentError(c, err, "Failed to update resident")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteResident endpoint
func (rc *ResidentController) DeleteResident(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := rc.residentService.DeleteResident(c, c.Param("id"), identity); err != nil {
		respondResidentError(c, err, "Failed to delete resident")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetResident endpoint
func (rc *ResidentController) GetResident(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	resident, err := rc.residentService.GetResident(c, c.Param("id"), identity)
	if err != nil {
		respondResidentError(c, err, "Failed to get resident")
		return
	}

	c.JSON(http.StatusOK, resident)
}

// ListResidents endpoint
func (rc *ResidentController) ListResidents(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", health_errors.ErrInvalidPagination)
		return
	}

	residents, err := rc.residentService.ListResidents(c, identity, limit, offset)
	if err != nil {
		respondResidentError(c, err, "Failed to list residents")
		return
	}

	c.JSON(http.StatusOK, residents)
}

// SearchResidents endpoint
func (rc *ResidentController) SearchResidents(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	var criteria model.ResidentSearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search criteria", health_errors.ErrInvalidSearchCriteria)
		return
	}

	residents, err := rc.residentService.SearchResidents(c, identity, criteria)
	if err != nil {
		respondResidentError(c, err, "Failed to search residents")
		return
	}

	c.JSON(http.StatusOK, residents)
}

func respondResidentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, health_errors.ErrResidentNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Resident not found", err)
	case errors.Is(err, health_errors.ErrForbidden):
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, health_errors.ErrMalformedAssignment):
		util.RespondWithError(c, http.StatusForbidden, "Malformed secretariat assignment", err)
	case errors.Is(err, health_errors.ErrInvalidResidentData):
		util.RespondWithError(c, http.StatusBadRequest, "Invalid resident data", err)
	case errors.Is(err, health_errors.ErrDatabaseOperation):
		util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, health_errors.ErrInternalServer)
	}
}
