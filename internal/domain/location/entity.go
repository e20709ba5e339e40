package location

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// DefaultRadiusMeters is the tolerance applied when a location has none set.
const DefaultRadiusMeters = 100

// WorkLocation is a geofenced zone where employees may punch.
type WorkLocation struct {
	ID           string
	CompanyID    string
	Name         string
	Address      *string
	Center       geo.Point
	RadiusMeters *int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EffectiveRadius returns the configured radius, or fallback when unset.
func (l WorkLocation) EffectiveRadius(fallback int) int {
	if l.RadiusMeters == nil || *l.RadiusMeters <= 0 {
		if fallback <= 0 {
			return DefaultRadiusMeters
		}
		return fallback
	}
	return *l.RadiusMeters
}
