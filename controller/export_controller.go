// api/controller/export_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	health_errors "github.com/chittoorhealth/api/errors"
	"github.com/chittoorhealth/api/export"
	logger "github.com/chittoorhealth/api/logging"
	"github.com/chittoorhealth/api/model"
	"github.com/chittoorhealth/api/service"
	"github.com/chittoorhealth/api/util"
)

type ExportController struct {
	exportService service.IExportService
	streamer      *export.Streamer
}

func NewExportController(exportService service.IExportService, streamer *export.Streamer) *ExportController {
	return &ExportController{
		exportService: exportService,
		streamer:      streamer,
	}
}

// RegisterRoutes registers the API routes
func (ec *ExportController) RegisterRoutes(r *gin.RouterGroup) {
	exports := r.Group("/exports")
	{
		exports.POST("", ec.StartExport)
		exports.GET("/:id/status", ec.GetStatus)
		exports.GET("/:id/stream", ec.StreamProgress)
	}
}

// StartExport kicks off an export job and returns its id immediately.
func (ec *ExportController) StartExport(c *gin.Context) {
	identity, err := util.IdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	jobID, err := ec.exportService.StartExport(c, identity)
	if err != nil {
		switch {
		case errors.Is(err, health_errors.ErrMalformedAssignment):
			util.RespondWithError(c, http.StatusForbidden, "Malformed secretariat assignment", err)
		case errors.Is(err, health_errors.ErrExportJobConflict), errors.Is(err, health_errors.ErrExportLockHeld):
			util.RespondWithError(c, http.StatusConflict, "Export job already exists", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to start export", health_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// GetStatus returns one progress snapshot for polling clients.
func (ec *ExportController) GetStatus(c *gin.Context) {
	if _, err := util.IdentityFromContext(c); err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	progress, ok := ec.exportService.GetStatus(c.Param("id"))
	if !ok {
		util.RespondWithError(c, http.StatusNotFound, "Export job not found", health_errors.ErrExportJobNotFound)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// StreamProgress watches an export job over Server-Sent Events. Each message
// is one JSON snapshot framed as "data: <json>\n\n"; a terminal snapshot is
// always followed by connection close. Authorization is settled before the
// stream is opened; after that, failures only ever end this one connection.
func (ec *ExportController) StreamProgress(c *gin.Context) {
	if _, err := util.IdentityFromContext(c); err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	jobID := c.Param("id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	emitter := export.EmitterFunc(func(snapshot model.ExportProgress) error {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})

	// c.Request.Context() is cancelled the moment the client goes away, so
	// the streamer observes disconnects without waiting for its next tick.
	state := ec.streamer.Run(c.Request.Context(), jobID, emitter)
	logger.Debug("Export stream closed",
		zap.String("jobID", jobID),
		zap.String("state", state.String()))
}
