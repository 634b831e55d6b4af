// api/service/services.go
package service

// Services bundles the service layer for the composition root.
type Services struct {
	Resident  IResidentService
	Analytics IAnalyticsService
	Export    IExportService
}
