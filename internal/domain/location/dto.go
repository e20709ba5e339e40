package location

type NearestLocationResponse struct {
	LocationID     string  `json:"location_id"`
	LocationName   string  `json:"location_name"`
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   int     `json:"radius_meters"`
	Inside         bool    `json:"inside"`
}

// ValidationResult is the geofence verdict for one coordinate.
type ValidationResult struct {
	IsValid        bool
	Message        string
	DistanceMeters float64
	RadiusMeters   int
	Location       WorkLocation
}
