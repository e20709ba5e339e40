package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/google/uuid"
)

// memShifts is an in-memory ShiftRecordRepository. Transactions are emulated
// by memTx with snapshot and restore.
type memShifts struct {
	mu        sync.Mutex
	records   map[string]attendance.ShiftRecord
	failOn    map[string]error
	lockCalls int
}

func newMemShifts() *memShifts {
	return &memShifts{
		records: make(map[string]attendance.ShiftRecord),
		failOn:  make(map[string]error),
	}
}

func (m *memShifts) fail(op string) error {
	if err, ok := m.failOn[op]; ok {
		return err
	}
	return nil
}

func (m *memShifts) all() []attendance.ShiftRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attendance.ShiftRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sortRecords(out)
	return out
}

func (m *memShifts) put(r attendance.ShiftRecord) attendance.ShiftRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	m.records[r.ID] = r
	return r
}

func sortRecords(rs []attendance.ShiftRecord) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Date.Equal(rs[j].Date) {
			return rs[i].Date.Before(rs[j].Date)
		}
		if rs[i].EntryTime != nil && rs[j].EntryTime != nil && !rs[i].EntryTime.Equal(*rs[j].EntryTime) {
			return rs[i].EntryTime.Before(*rs[j].EntryTime)
		}
		return rs[i].ID < rs[j].ID
	})
}

func (m *memShifts) LockEmployee(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockCalls++
	return m.fail("lock")
}

func (m *memShifts) Create(_ context.Context, r attendance.ShiftRecord) (attendance.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("create"); err != nil {
		return attendance.ShiftRecord{}, err
	}
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.records[r.ID] = r
	return r, nil
}

func (m *memShifts) GetByID(_ context.Context, id, companyID string) (attendance.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.CompanyID != companyID {
		return attendance.ShiftRecord{}, attendance.ErrShiftNotFound
	}
	return r, nil
}

func (m *memShifts) filter(pred func(attendance.ShiftRecord) bool) []attendance.ShiftRecord {
	var out []attendance.ShiftRecord
	for _, r := range m.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	sortRecords(out)
	return out
}

func (m *memShifts) FindOpenOnDate(_ context.Context, employeeID string, date time.Time) (*attendance.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("find"); err != nil {
		return nil, err
	}
	open := m.filter(func(r attendance.ShiftRecord) bool {
		return r.EmployeeID == employeeID && r.Date.Equal(date) && r.IsOpen()
	})
	if len(open) == 0 {
		return nil, nil
	}
	latest := open[len(open)-1]
	return &latest, nil
}

func (m *memShifts) FindLatestOpenBefore(_ context.Context, employeeID string, date time.Time) (*attendance.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	open := m.filter(func(r attendance.ShiftRecord) bool {
		return r.EmployeeID == employeeID && r.Date.Before(date) && r.IsOpen()
	})
	if len(open) == 0 {
		return nil, nil
	}
	latest := open[len(open)-1]
	return &latest, nil
}

func (m *memShifts) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]attendance.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r attendance.ShiftRecord) bool {
		return r.EmployeeID == employeeID && r.Date.Equal(date)
	}), nil
}

func (m *memShifts) CountByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (int, error) {
	rs, err := m.ListByEmployeeAndDate(ctx, employeeID, date)
	return len(rs), err
}

func (m *memShifts) ListByEmployeeInRange(_ context.Context, employeeID string, start, end time.Time) ([]attendance.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(r attendance.ShiftRecord) bool {
		return r.EmployeeID == employeeID && !r.Date.Before(start) && !r.Date.After(end)
	}), nil
}

func (m *memShifts) Update(_ context.Context, r attendance.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("update"); err != nil {
		return err
	}
	if _, ok := m.records[r.ID]; !ok {
		return attendance.ErrShiftNotFound
	}
	m.records[r.ID] = r
	return nil
}

func (m *memShifts) Delete(_ context.Context, id, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.CompanyID != companyID {
		return attendance.ErrShiftNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memShifts) List(_ context.Context, f attendance.ShiftFilter, companyID string) ([]attendance.ShiftRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filter(func(r attendance.ShiftRecord) bool {
		return r.CompanyID == companyID && (f.EmployeeID == nil || r.EmployeeID == *f.EmployeeID)
	})
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+f.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

var (
	_ attendance.ShiftRecordRepository = (*memShifts)(nil)
	_ employee.EmployeeRepository      = memEmployees{}
	_ location.WorkLocationRepository  = memLocations{}
	_ leave.StateRepository            = (*memLeave)(nil)
)

// memTx emulates a transaction over memShifts: state is restored when fn fails.
type memTx struct {
	shifts *memShifts
}

func (t memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.shifts.mu.Lock()
	snapshot := make(map[string]attendance.ShiftRecord, len(t.shifts.records))
	for k, v := range t.shifts.records {
		snapshot[k] = v
	}
	t.shifts.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.shifts.mu.Lock()
		t.shifts.records = snapshot
		t.shifts.mu.Unlock()
		return err
	}
	return nil
}

type memEmployees map[string]employee.Employee

func (f memEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f memEmployees) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f {
		if e.CompanyID == companyID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

type memLocations map[string]location.WorkLocation

func (f memLocations) GetByID(_ context.Context, id string) (location.WorkLocation, error) {
	l, ok := f[id]
	if !ok {
		return location.WorkLocation{}, location.ErrLocationNotFound
	}
	return l, nil
}

func (f memLocations) ListActive(_ context.Context, companyID string) ([]location.WorkLocation, error) {
	var out []location.WorkLocation
	for _, l := range f {
		if l.CompanyID == companyID && l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

type memLeave struct {
	mu     sync.Mutex
	states map[string]leave.State
}

func (m *memLeave) set(employeeID string, date time.Time, s leave.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = make(map[string]leave.State)
	}
	m.states[employeeID+"|"+date.Format("2006-01-02")] = s
}

func (m *memLeave) GetStateOn(_ context.Context, employeeID string, date time.Time) (leave.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[employeeID+"|"+date.Format("2006-01-02")]; ok {
		return s, nil
	}
	return leave.StateNone, nil
}

type memPhotos struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	failing  bool
}

func (p *memPhotos) UploadPunchPhoto(_ context.Context, employeeID string, date time.Time, kind string, _ []byte, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return "", errors.New("storage offline")
	}
	path := fmt.Sprintf("attendance/%s/%s-%s-%d.jpg", date.Format("2006-01-02"), employeeID, kind, len(p.uploaded))
	p.uploaded = append(p.uploaded, path)
	return path, nil
}

func (p *memPhotos) DeletePhoto(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, path)
	return nil
}

func (p *memPhotos) PhotoURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "http://localhost/uploads/" + path, nil
}

func (p *memPhotos) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.uploaded), len(p.deleted)
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// interleavingShifts runs afterRead once, right after the first GetByID
// returns. It stands in for a punch landing between a read and a write.
type interleavingShifts struct {
	*memShifts
	once      sync.Once
	afterRead func()
}

func (s *interleavingShifts) GetByID(ctx context.Context, id, companyID string) (attendance.ShiftRecord, error) {
	r, err := s.memShifts.GetByID(ctx, id, companyID)
	s.once.Do(func() {
		if s.afterRead != nil {
			s.afterRead()
		}
	})
	return r, err
}

// failingLocations fails every lookup.
type failingLocations struct {
	err error
}

func (f failingLocations) GetByID(_ context.Context, _ string) (location.WorkLocation, error) {
	return location.WorkLocation{}, f.err
}

func (f failingLocations) ListActive(_ context.Context, _ string) ([]location.WorkLocation, error) {
	return nil, f.err
}
