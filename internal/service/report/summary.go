package report

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
)

const dateLayout = "2006-01-02"

// WeekdayCalendar treats Monday to Friday as workdays, minus listed holidays.
type WeekdayCalendar struct {
	holidays map[string]struct{}
}

func NewWeekdayCalendar(holidays ...time.Time) *WeekdayCalendar {
	c := &WeekdayCalendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[h.Format(dateLayout)] = struct{}{}
	}
	return c
}

func (c *WeekdayCalendar) IsWorkday(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[date.Format(dateLayout)]
	return !holiday
}

// Summarize rolls one employee's records up over rng. Workdays after until
// are not counted as absences yet; dates in onLeave count as leave instead.
func Summarize(records []attendance.ShiftRecord, rng report.DateRange, cal report.Calendar, until time.Time, onLeave map[string]bool) report.Summary {
	// The earliest entry of each date carries that day's tardiness.
	first := make(map[string]attendance.ShiftRecord)
	seen := make(map[string]bool)
	justified := make(map[string]bool)
	for _, r := range records {
		key := r.Date.Format(dateLayout)
		seen[key] = true
		if r.JustificationState == attendance.JustificationApproved {
			justified[key] = true
		}
		if r.EntryTime == nil {
			continue
		}
		if cur, ok := first[key]; !ok || r.EntryTime.Before(*cur.EntryTime) {
			first[key] = r
		}
	}

	var s report.Summary
	var lateMinutes int
	for key, r := range first {
		s.TotalDays++
		if r.MinutesLate > 0 {
			s.LateDays++
			lateMinutes += r.MinutesLate
		} else {
			s.OnTimeDays++
		}
		if r.Tier == attendance.TierEarlyWarning {
			s.EarlyWarningDays++
		}
		if justified[key] {
			s.JustifiedDays++
		}
	}

	for _, day := range rng.Days() {
		if day.After(until) || !cal.IsWorkday(day) {
			continue
		}
		key := day.Format(dateLayout)
		if seen[key] {
			continue
		}
		if onLeave[key] {
			s.LeaveDays++
			continue
		}
		s.Absences++
	}

	if s.LateDays > 0 {
		s.AvgLateMinutes = roundTenth(float64(lateMinutes) / float64(s.LateDays))
	}
	s.PunctualityPercent = PunctualityPercent(s.OnTimeDays, s.TotalDays)
	return s
}

// PunctualityPercent is round(100 * onTime / total), 0 when total is 0.
func PunctualityPercent(onTime, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(onTime) / float64(total)))
}

// FleetPunctuality is the unweighted mean of per-employee percents.
func FleetPunctuality(percents []int) float64 {
	if len(percents) == 0 {
		return 0
	}
	var sum int
	for _, p := range percents {
		sum += p
	}
	return roundTenth(float64(sum) / float64(len(percents)))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
