package attendance

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const DefaultPendingTTL = 5 * time.Minute

// PendingStore holds punches waiting for confirmation, keyed by token. An
// employee has at most one pending punch; proposing a new one replaces it.
//
// The cache runs without a janitor goroutine. Expired items are never
// returned by Get and are swept on every Put.
type PendingStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewPendingStore(ttl time.Duration, now func() time.Time) *PendingStore {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	if now == nil {
		now = time.Now
	}
	return &PendingStore{
		cache: cache.New(ttl, 0),
		ttl:   ttl,
		now:   now,
	}
}

func employeeKey(employeeID string) string {
	return "employee:" + employeeID
}

// Put assigns a token and expiry to p and stores it.
func (s *PendingStore) Put(p attendance.PendingPunch) attendance.PendingPunch {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.DeleteExpired()
	if old, ok := s.cache.Get(employeeKey(p.EmployeeID)); ok {
		s.cache.Delete(old.(string))
	}

	p.Token = uuid.New().String()
	p.ExpiresAt = s.now().Add(s.ttl)
	s.cache.Set(p.Token, p, s.ttl)
	s.cache.Set(employeeKey(p.EmployeeID), p.Token, s.ttl)
	return p
}

// Peek returns the pending punch without removing it.
func (s *PendingStore) Peek(token string) (attendance.PendingPunch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(token)
}

// Take removes and returns the pending punch. Only one caller can take a token.
func (s *PendingStore) Take(token string) (attendance.PendingPunch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.get(token)
	if !ok {
		return attendance.PendingPunch{}, false
	}
	s.remove(p)
	return p, true
}

// Restore puts back a punch taken by Take, keeping its token and expiry.
// Already expired punches are dropped.
func (s *PendingStore) Restore(p attendance.PendingPunch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := p.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return
	}
	if _, ok := s.cache.Get(employeeKey(p.EmployeeID)); ok {
		// A newer proposal exists.
		return
	}
	s.cache.Set(p.Token, p, remaining)
	s.cache.Set(employeeKey(p.EmployeeID), p.Token, remaining)
}

func (s *PendingStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.get(token); ok {
		s.remove(p)
	}
}

// Len returns the number of live pending punches.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.DeleteExpired()
	return s.cache.ItemCount() / 2
}

func (s *PendingStore) get(token string) (attendance.PendingPunch, bool) {
	v, ok := s.cache.Get(token)
	if !ok {
		return attendance.PendingPunch{}, false
	}
	p, ok := v.(attendance.PendingPunch)
	if !ok || !s.now().Before(p.ExpiresAt) {
		return attendance.PendingPunch{}, false
	}
	return p, true
}

func (s *PendingStore) remove(p attendance.PendingPunch) {
	s.cache.Delete(p.Token)
	if current, ok := s.cache.Get(employeeKey(p.EmployeeID)); ok && current.(string) == p.Token {
		s.cache.Delete(employeeKey(p.EmployeeID))
	}
}
