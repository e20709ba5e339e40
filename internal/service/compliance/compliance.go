// Package compliance turns an entry time and a schedule into a punctuality
// tier. Everything here is pure.
package compliance

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

// Upper bounds (inclusive) of each lateness band, in minutes.
const (
	EarlyWarningMaxMinutes = 5
	YellowMaxMinutes       = 15
)

type Result struct {
	MinutesLate  int
	Tier         attendance.Tier
	EarlyWarning bool
}

// MinutesLate returns the whole minutes actual is past scheduled, never negative.
func MinutesLate(actual, scheduled time.Time) int {
	diff := actual.Sub(scheduled).Minutes()
	if diff <= 0 {
		return 0
	}
	return int(math.Floor(diff))
}

// TierFor maps lateness to its band. An active leave state wins over the clock.
func TierFor(minutesLate int, state leave.State) attendance.Tier {
	switch state {
	case leave.StateVacation:
		return attendance.TierVacation
	case leave.StateMedicalLeave:
		return attendance.TierMedicalLeave
	case leave.StatePermit:
		return attendance.TierPermit
	}

	switch {
	case minutesLate <= 0:
		return attendance.TierOnTime
	case minutesLate <= EarlyWarningMaxMinutes:
		return attendance.TierEarlyWarning
	case minutesLate <= YellowMaxMinutes:
		return attendance.TierYellow
	default:
		return attendance.TierRed
	}
}

// Classify evaluates one entry punch against its scheduled time.
func Classify(actual, scheduled time.Time, state leave.State) Result {
	if state.Active() {
		return Result{Tier: TierFor(0, state)}
	}
	minutes := MinutesLate(actual, scheduled)
	tier := TierFor(minutes, leave.StateNone)
	return Result{
		MinutesLate:  minutes,
		Tier:         tier,
		EarlyWarning: tier == attendance.TierEarlyWarning,
	}
}

// DayTier is the tier reported for a date: the first record's tier, the
// leave tier, or absent when there is nothing at all.
func DayTier(records []attendance.ShiftRecord, state leave.State) attendance.Tier {
	if state.Active() {
		return TierFor(0, state)
	}
	for _, r := range records {
		if r.EntryTime != nil {
			if r.Tier != "" {
				return r.Tier
			}
			return TierFor(r.MinutesLate, leave.StateNone)
		}
	}
	return attendance.TierAbsent
}

// StampObservation prepends an audit line to the existing observations.
func StampObservation(actor string, at time.Time, text string, existing *string) string {
	if actor == "" {
		actor = "system"
	}
	line := "[" + at.Format("2006-01-02 15:04") + " " + actor + "] " + strings.TrimSpace(text)
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return line
	}
	return line + "\n" + *existing
}
