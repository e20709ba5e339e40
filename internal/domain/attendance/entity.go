package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// ShiftRecord pairs one entry punch with its exit punch. A record is created
// by the entry and completed once by the exit.
type ShiftRecord struct {
	ID                 string
	EmployeeID         string
	CompanyID          string
	Date               time.Time
	EntryTime          *time.Time
	EntryLocation      *geo.Point
	EntryPhotoURL      *string
	ExitTime           *time.Time
	ExitLocation       *geo.Point
	ExitPhotoURL       *string
	MinutesLate        int
	Tier               Tier
	JustificationState JustificationState
	Observations       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	EmployeeName *string
}

// IsOpen reports whether the record has an entry and still waits for its exit.
func (r ShiftRecord) IsOpen() bool {
	return r.EntryTime != nil && r.ExitTime == nil
}

// IsComplete reports whether both punches are recorded.
func (r ShiftRecord) IsComplete() bool {
	return r.EntryTime != nil && r.ExitTime != nil
}

// ShiftState is the per (employee, date) classifier state.
type ShiftState string

const (
	StateNoEntry       ShiftState = "NO_ENTRY"
	StateEntryRecorded ShiftState = "ENTRY_RECORDED"
	StateComplete      ShiftState = "COMPLETE"
)

// StateOf derives the state from the day's records, oldest first.
func StateOf(records []ShiftRecord) ShiftState {
	if len(records) == 0 {
		return StateNoEntry
	}
	for _, r := range records {
		if r.IsOpen() {
			return StateEntryRecorded
		}
	}
	return StateComplete
}

// Tier is the compliance band of an entry, or the leave/absence label that
// replaces it.
type Tier string

const (
	TierOnTime       Tier = "a_tiempo"
	TierEarlyWarning Tier = "alerta_temprana"
	TierYellow       Tier = "amarillo"
	TierRed          Tier = "rojo"

	TierVacation     Tier = "vacaciones"
	TierMedicalLeave Tier = "licencia_medica"
	TierPermit       Tier = "permiso"
	TierAbsent       Tier = "ausente"
)

var TierValues = []string{
	string(TierOnTime),
	string(TierEarlyWarning),
	string(TierYellow),
	string(TierRed),
	string(TierVacation),
	string(TierMedicalLeave),
	string(TierPermit),
	string(TierAbsent),
}

// IsLeave reports whether the tier comes from a leave state instead of the clock.
func (t Tier) IsLeave() bool {
	return t == TierVacation || t == TierMedicalLeave || t == TierPermit
}

type JustificationState string

const (
	JustificationNone     JustificationState = "none"
	JustificationPending  JustificationState = "pending"
	JustificationApproved JustificationState = "approved"
	JustificationRejected JustificationState = "rejected"
)

// Resolved reports whether a manager already decided on the justification.
func (s JustificationState) Resolved() bool {
	return s == JustificationApproved || s == JustificationRejected
}

type PunchKind string

const (
	PunchEntry PunchKind = "entry"
	PunchExit  PunchKind = "exit"
)

type PatternKind string

const (
	PatternMissingExit PatternKind = "missing_exit"
)

// PatternCheck is the outcome of the cross-day anomaly detector.
type PatternCheck struct {
	NeedsAlert bool
	Kind       PatternKind
	Message    string
	OpenShift  *ShiftRecord
}

// PendingPunch is a punch held back by the anomaly detector until the
// employee confirms or cancels it.
type PendingPunch struct {
	Token         string
	EmployeeID    string
	CompanyID     string
	ActorUserID   string
	Date          time.Time
	PunchedAt     time.Time
	Location      geo.Point
	Accuracy      *float64
	Photo         []byte
	PhotoFilename string
	Check         PatternCheck
	ExpiresAt     time.Time
}
