package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

type LocationHandler interface {
	Nearest(w http.ResponseWriter, r *http.Request)
}

type locationHandlerImpl struct {
	geofenceService location.GeofenceService
}

func NewLocationHandler(geofenceService location.GeofenceService) LocationHandler {
	return &locationHandlerImpl{
		geofenceService: geofenceService,
	}
}

// Nearest handles GET /locations/nearest?lat=..&lng=..
func (h *locationHandlerImpl) Nearest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		response.BadRequest(w, "invalid lat parameter", nil)
		return
	}

	lng, err := strconv.ParseFloat(query.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		response.BadRequest(w, "invalid lng parameter", nil)
		return
	}

	result, err := h.geofenceService.NearestLocation(r.Context(), geo.Point{Latitude: lat, Longitude: lng})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
