package usecases

import (
	"errors"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// CoordinateForm is the pair of manual latitude/longitude inputs.
type CoordinateForm struct {
	Latitude  string
	Longitude string
}

// Submit validates the inputs and, on success, adds a marker to store and
// clears both fields. On failure neither the store nor the form changes.
func (f *CoordinateForm) Submit(store *MarkerStore) (domain.Marker, error) {
	p, err := domain.ParseCoordinates(f.Latitude, f.Longitude)
	if err != nil {
		return domain.Marker{}, err
	}
	markers := store.Add(p.Lat, p.Lng)
	f.Latitude, f.Longitude = "", ""
	return markers[len(markers)-1], nil
}

// InputNotice converts a validation error into the message shown to the user.
func InputNotice(err error) domain.Notice {
	if errors.Is(err, domain.ErrRange) {
		return domain.Notice{
			Level:   domain.NoticeError,
			Title:   "Invalid Coordinates",
			Message: "Latitude must be between -90 and 90, and longitude between -180 and 180",
		}
	}
	return domain.Notice{
		Level:   domain.NoticeError,
		Title:   "Invalid Input",
		Message: "Please enter valid numbers for latitude and longitude",
	}
}
