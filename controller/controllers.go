// api/controller/controllers.go
package controller

import (
	"github.com/chittoorhealth/api/export"
	"github.com/chittoorhealth/api/service"
)

// Controllers bundles every controller for route registration.
type Controllers struct {
	Resident  *ResidentController
	Analytics *AnalyticsController
	Export    *ExportController
}

func InitializeControllers(services *service.Services, streamer *export.Streamer) *Controllers {
	return &Controllers{
		Resident:  NewResidentController(services.Resident),
		Analytics: NewAnalyticsController(services.Analytics),
		Export:    NewExportController(services.Export, streamer),
	}
}
