package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	ConfirmPending(w http.ResponseWriter, r *http.Request)
	CancelPending(w http.ResponseWriter, r *http.Request)
	CheckPattern(w http.ResponseWriter, r *http.Request)
	GetState(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	SubmitJustification(w http.ResponseWriter, r *http.Request)
	ResolveJustification(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Punch handles POST /attendance/punch. The body is multipart: a 'data' JSON
// field and a 'photo' file. A missing photo is reported by the service as a
// camera failure, not as a bad request.
func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	var req attendance.PunchRequest

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(attendance.MaxPhotoSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	// Get JSON data from 'data' field
	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return
	}

	if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
		slog.Error("Failed to unmarshal JSON data", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	default:
		defer file.Close()
		// One byte over the limit is enough for Validate to reject it.
		photo, err := io.ReadAll(io.LimitReader(file, attendance.MaxPhotoSize+1))
		if err != nil {
			slog.Error("Failed to read punch photo", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		req.Photo = photo
		req.PhotoFilename = fileHeader.Filename
	}

	result, err := h.attendanceService.RegisterPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	switch {
	case result.Status == attendance.PunchStatusPendingConfirmation:
		response.Accepted(w, result.Pending.Message, result)
	case result.Kind == attendance.PunchEntry:
		response.Created(w, "Entry recorded", result)
	default:
		response.SuccessWithMessage(w, "Exit recorded", result)
	}
}

// ConfirmPending handles POST /attendance/pending/{token}/confirm
func (h *attendanceHandlerImpl) ConfirmPending(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result, err := h.attendanceService.ConfirmPunch(r.Context(), token)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Kind == attendance.PunchEntry {
		response.Created(w, "Entry recorded", result)
		return
	}
	response.SuccessWithMessage(w, "Exit recorded", result)
}

// CancelPending handles POST /attendance/pending/{token}/cancel
func (h *attendanceHandlerImpl) CancelPending(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.attendanceService.CancelPunch(r.Context(), token); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch cancelled", nil)
}

// CheckPattern handles GET /attendance/pattern
func (h *attendanceHandlerImpl) CheckPattern(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.CheckPattern(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetState handles GET /attendance/state
func (h *attendanceHandlerImpl) GetState(w http.ResponseWriter, r *http.Request) {
	req := attendance.ShiftStateRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Date:       r.URL.Query().Get("date"),
	}

	result, err := h.attendanceService.GetShiftState(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List handles GET /attendance/shifts
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := attendance.ShiftFilter{}

	optional := map[string]**string{
		"employee_id":         &filter.EmployeeID,
		"employee_name":       &filter.EmployeeName,
		"date":                &filter.Date,
		"start_date":          &filter.StartDate,
		"end_date":            &filter.EndDate,
		"tier":                &filter.Tier,
		"justification_state": &filter.JustificationState,
	}
	for key, dst := range optional {
		if v := query.Get(key); v != "" {
			*dst = &v
		}
	}

	if openOnly, err := strconv.ParseBool(query.Get("open_only")); err == nil {
		filter.OpenOnly = openOnly
	}

	// Pagination
	page := 1
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	// Sorting
	filter.SortBy = query.Get("sort_by")
	filter.SortOrder = query.Get("sort_order")

	result, err := h.attendanceService.ListShifts(ctx, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get handles GET /attendance/shifts/{id}
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.GetShift(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update handles PUT /attendance/shifts/{id}
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated", result)
}

// Delete handles DELETE /attendance/shifts/{id}
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.attendanceService.DeleteShift(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift deleted", nil)
}

// SubmitJustification handles POST /attendance/shifts/{id}/justification
func (h *attendanceHandlerImpl) SubmitJustification(w http.ResponseWriter, r *http.Request) {
	var req attendance.SubmitJustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.SubmitJustification(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Justification submitted", result)
}

// ResolveJustification handles POST /attendance/shifts/{id}/justification/resolve
func (h *attendanceHandlerImpl) ResolveJustification(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResolveJustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.ResolveJustification(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Justification "+string(req.Decision), result)
}
