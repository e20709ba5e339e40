package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Punctuality summary for one employee
	GetEmployeeStatistics(w http.ResponseWriter, r *http.Request)

	// Company-wide punctuality
	GetFleetStatistics(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetEmployeeStatistics handles GET /attendance/statistics/{employeeID}.
// "me" resolves to the caller.
func (h *reportHandlerImpl) GetEmployeeStatistics(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "me" {
		employeeID = ""
	}

	req := report.StatisticsRequest{
		EmployeeID: employeeID,
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	result, err := h.reportService.EmployeeStatistics(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetFleetStatistics handles GET /attendance/statistics
func (h *reportHandlerImpl) GetFleetStatistics(w http.ResponseWriter, r *http.Request) {
	req := report.StatisticsRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := h.reportService.FleetStatistics(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
