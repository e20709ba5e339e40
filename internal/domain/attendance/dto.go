package attendance

import (
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

const MaxPhotoSize = 10 << 20 // 10MB

// PunchRequest is one employee punch. Entry or exit is decided by the service.
type PunchRequest struct {
	EmployeeID  string   `json:"employee_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	SensorError *string  `json:"sensor_error,omitempty"` // e.g. location_denied, camera_timeout

	Photo         []byte `json:"-"`
	PhotoFilename string `json:"-"`
}

// SensorFailure returns the device-side failure carried by the request, if any.
// It is checked before Validate so a denied sensor is reported as retryable.
func (r *PunchRequest) SensorFailure() error {
	if r.SensorError != nil && *r.SensorError != "" {
		sensor := SensorLocation
		if strings.HasPrefix(*r.SensorError, "camera") {
			sensor = SensorCamera
		}
		return &SensorUnavailableError{Sensor: sensor, Reason: *r.SensorError}
	}
	if r.Latitude == nil || r.Longitude == nil {
		return &SensorUnavailableError{Sensor: SensorLocation, Reason: "no coordinate received"}
	}
	if len(r.Photo) == 0 {
		return &SensorUnavailableError{Sensor: SensorCamera, Reason: "no photo received"}
	}
	return nil
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if r.Accuracy != nil && *r.Accuracy < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy",
			Message: "accuracy must not be negative",
		})
	}

	ext := strings.ToLower(filepath.Ext(r.PhotoFilename))
	if len(r.Photo) > 0 {
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			errs = append(errs, validator.ValidationError{
				Field:   "photo",
				Message: "invalid file type: only jpg, jpeg, png allowed",
			})
		} else if len(r.Photo) > MaxPhotoSize {
			errs = append(errs, validator.ValidationError{
				Field:   "photo",
				Message: "punch photo size must not exceed 10MB",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PunchStatus string

const (
	PunchStatusRecorded            PunchStatus = "recorded"
	PunchStatusPendingConfirmation PunchStatus = "pending_confirmation"
)

type PunchResponse struct {
	Status     PunchStatus           `json:"status"`
	Kind       PunchKind             `json:"kind,omitempty"`
	State      ShiftState            `json:"state,omitempty"`
	Shift      *ShiftResponse        `json:"shift,omitempty"`
	Compliance *ComplianceResponse   `json:"compliance,omitempty"`
	Geofence   *GeofenceResponse     `json:"geofence,omitempty"`
	Pending    *PendingPunchResponse `json:"pending,omitempty"`
}

type ComplianceResponse struct {
	MinutesLate  int    `json:"minutes_late"`
	Tier         string `json:"tier"`
	EarlyWarning bool   `json:"early_warning"`
}

type GeofenceResponse struct {
	LocationName   string  `json:"location_name"`
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   int     `json:"radius_meters"`
	Message        string  `json:"message"`
}

type PendingPunchResponse struct {
	Token         string `json:"token"`
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	OpenShiftID   string `json:"open_shift_id,omitempty"`
	OpenShiftDate string `json:"open_shift_date,omitempty"`
	ExpiresAt     string `json:"expires_at"`
}

// ========================================
// SHIFT DTOs
// ========================================

type ShiftResponse struct {
	ID                 string   `json:"id"`
	EmployeeID         string   `json:"employee_id"`
	EmployeeName       string   `json:"employee_name,omitempty"`
	Date               string   `json:"date"`
	EntryTime          *string  `json:"entry_time,omitempty"`
	ExitTime           *string  `json:"exit_time,omitempty"`
	EntryLatitude      *float64 `json:"entry_latitude,omitempty"`
	EntryLongitude     *float64 `json:"entry_longitude,omitempty"`
	ExitLatitude       *float64 `json:"exit_latitude,omitempty"`
	ExitLongitude      *float64 `json:"exit_longitude,omitempty"`
	EntryPhotoURL      *string  `json:"entry_photo_url,omitempty"`
	ExitPhotoURL       *string  `json:"exit_photo_url,omitempty"`
	WorkingHours       *float64 `json:"working_hours,omitempty"`
	MinutesLate        int      `json:"minutes_late"`
	Tier               string   `json:"tier,omitempty"`
	EarlyWarning       bool     `json:"early_warning"`
	JustificationState string   `json:"justification_state"`
	Observations       *string  `json:"observations,omitempty"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

type PatternCheckResponse struct {
	NeedsAlert    bool   `json:"needs_alert"`
	Kind          string `json:"kind,omitempty"`
	Message       string `json:"message,omitempty"`
	OpenShiftID   string `json:"open_shift_id,omitempty"`
	OpenShiftDate string `json:"open_shift_date,omitempty"`
}

type ShiftStateRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"` // YYYY-MM-DD, defaults to today
}

func (r *ShiftStateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != "" {
		if _, valid := validator.IsValidDate(r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftStateResponse struct {
	EmployeeID string                `json:"employee_id"`
	Date       string                `json:"date"`
	State      ShiftState            `json:"state"`
	OpenShift  *ShiftResponse        `json:"open_shift,omitempty"`
	Shifts     []ShiftResponse       `json:"shifts"`
	Pattern    *PatternCheckResponse `json:"pattern,omitempty"`
	CanPunch   bool                  `json:"can_punch"`
	NextPunch  PunchKind             `json:"next_punch"`
	Message    string                `json:"message"`
}

type ShiftFilter struct {
	// Search & Filter
	EmployeeID         *string `json:"employee_id,omitempty"`
	EmployeeName       *string `json:"employee_name,omitempty"`
	Date               *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate          *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate            *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Tier               *string `json:"tier,omitempty"`
	JustificationState *string `json:"justification_state,omitempty"`
	OpenOnly           bool    `json:"open_only,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, entry_time, exit_time, minutes_late
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *ShiftFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Tier != nil && !validator.IsInSlice(*f.Tier, TierValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "tier",
			Message: "tier must be one of: " + strings.Join(TierValues, ", "),
		})
	}

	if f.JustificationState != nil {
		valid := []string{string(JustificationNone), string(JustificationPending), string(JustificationApproved), string(JustificationRejected)}
		if !validator.IsInSlice(*f.JustificationState, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "justification_state",
				Message: "justification_state must be one of: " + strings.Join(valid, ", "),
			})
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "entry_time", "exit_time", "minutes_late"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, employee_name, entry_time, exit_time, minutes_late",
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListShiftResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Shifts     []ShiftResponse `json:"shifts"`
}

// ========================================
// ADMINISTRATIVE DTOs
// ========================================

// UpdateShiftRequest is the administrative override of a shift. Any change
// must be justified; the justification is stamped into the observations.
type UpdateShiftRequest struct {
	ID            string  `json:"-"`
	EntryTime     *string `json:"entry_time,omitempty"` // HH:MM[:SS] or YYYY-MM-DD HH:MM:SS
	ExitTime      *string `json:"exit_time,omitempty"`
	Tier          *string `json:"tier,omitempty"`
	Justification string  `json:"justification"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Justification) {
		errs = append(errs, validator.ValidationError{
			Field:   "justification",
			Message: "justification is required for manual changes",
		})
	}

	if r.EntryTime == nil && r.ExitTime == nil && r.Tier == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_time",
			Message: "at least one of entry_time, exit_time or tier must be provided",
		})
	}

	for field, value := range map[string]*string{"entry_time": r.EntryTime, "exit_time": r.ExitTime} {
		if value != nil {
			if _, ok := validator.ParseClockOrDateTime(*value); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be HH:MM, HH:MM:SS or YYYY-MM-DD HH:MM:SS",
				})
			}
		}
	}

	if r.Tier != nil && !validator.IsInSlice(*r.Tier, TierValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "tier",
			Message: "tier must be one of: " + strings.Join(TierValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SubmitJustificationRequest is the employee explaining a late or missing punch.
type SubmitJustificationRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *SubmitJustificationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "justification reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type JustificationDecision string

const (
	DecisionApprove JustificationDecision = "approved"
	DecisionReject  JustificationDecision = "rejected"
)

// ResolveJustificationRequest is the manager decision on a justification.
type ResolveJustificationRequest struct {
	ID       string                `json:"-"`
	Decision JustificationDecision `json:"decision"`
	Notes    *string               `json:"notes,omitempty"`
}

func (r *ResolveJustificationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Decision != DecisionApprove && r.Decision != DecisionReject {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: approved, rejected",
		})
	}

	if r.Decision == DecisionReject && (r.Notes == nil || validator.IsEmpty(*r.Notes)) {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes are required when rejecting a justification",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
