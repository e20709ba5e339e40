package compliance

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
)

// Schedule is the expected working day of an employee, as clock times.
type Schedule struct {
	Entry string // HH:MM
	Exit  string
}

// EntryOn returns the scheduled entry instant on date, in loc.
func (s Schedule) EntryOn(date time.Time, loc *time.Location) (time.Time, error) {
	return clockOn(s.Entry, date, loc)
}

// ExitOn returns the scheduled exit instant on date, in loc.
func (s Schedule) ExitOn(date time.Time, loc *time.Location) (time.Time, error) {
	return clockOn(s.Exit, date, loc)
}

func clockOn(clock string, date time.Time, loc *time.Location) (time.Time, error) {
	t, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

func parseClock(clock string) (time.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid clock %q", clock)
}

type ScheduleConfig struct {
	AdminTitleMatch string
	AdminEntry      string
	AdminExit       string
	DefaultEntry    string
	DefaultExit     string
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		AdminTitleMatch: "administrativ",
		AdminEntry:      "09:00",
		AdminExit:       "17:30",
		DefaultEntry:    "08:00",
		DefaultExit:     "17:00",
	}
}

// ScheduleResolver picks the schedule an entry is evaluated against.
//
// Employees without a configured schedule fall back on a job title match:
// titles containing AdminTitleMatch get the administrative hours. The rule is
// kept for compatibility with existing data and every fallback is logged so
// the owners can fill in the missing schedules.
type ScheduleResolver struct {
	cfg ScheduleConfig
}

func NewScheduleResolver(cfg ScheduleConfig) *ScheduleResolver {
	def := DefaultScheduleConfig()
	if cfg.AdminEntry == "" {
		cfg.AdminEntry = def.AdminEntry
	}
	if cfg.AdminExit == "" {
		cfg.AdminExit = def.AdminExit
	}
	if cfg.DefaultEntry == "" {
		cfg.DefaultEntry = def.DefaultEntry
	}
	if cfg.DefaultExit == "" {
		cfg.DefaultExit = def.DefaultExit
	}
	return &ScheduleResolver{cfg: cfg}
}

// Resolve returns the schedule and whether it came from the fallback rule.
func (r *ScheduleResolver) Resolve(emp employee.Employee) (Schedule, bool) {
	if emp.HasSchedule() {
		return Schedule{Entry: *emp.ScheduledEntry, Exit: *emp.ScheduledExit}, false
	}

	schedule := Schedule{Entry: r.cfg.DefaultEntry, Exit: r.cfg.DefaultExit}
	match := strings.ToLower(strings.TrimSpace(r.cfg.AdminTitleMatch))
	if match != "" && strings.Contains(strings.ToLower(emp.JobTitle), match) {
		schedule = Schedule{Entry: r.cfg.AdminEntry, Exit: r.cfg.AdminExit}
	}

	// Partially configured employees keep the end they have.
	if emp.ScheduledEntry != nil {
		schedule.Entry = *emp.ScheduledEntry
	}
	if emp.ScheduledExit != nil {
		schedule.Exit = *emp.ScheduledExit
	}

	slog.Warn("employee has no schedule, using job title fallback",
		"employee_id", emp.ID,
		"job_title", emp.JobTitle,
		"entry", schedule.Entry,
		"exit", schedule.Exit,
	)
	return schedule, true
}
