package form

import (
	"fmt"
	"strconv"

	"github.com/project-amenities/backend/internal/models"
)

// Landmark field names accepted by SetField.
const (
	FieldLandmarkID  = "landmarkId"
	FieldDistance    = "distance"
	FieldDescription = "description"
)

// LandmarkPicker is the landmark and location sub-form.
type LandmarkPicker struct {
	Landmark models.Landmark `json:"landmark"`
	MapOpen  bool            `json:"mapOpen"`
}

// SetField assigns a landmark field from its text value. The landmark id is
// parsed as an integer; coordinates can only change through PickLocation.
func (p *LandmarkPicker) SetField(name, value string) error {
	switch name {
	case FieldLandmarkID:
		id, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("landmark id %q: %w", value, ErrInvalidValue)
		}
		p.Landmark.LandmarkID = id
	case FieldDistance:
		p.Landmark.Distance = value
	case FieldDescription:
		p.Landmark.Description = value
	default:
		return fmt.Errorf("landmark field %q: %w", name, ErrUnknownField)
	}
	return nil
}

// PickLocation overwrites the coordinates only.
func (p *LandmarkPicker) PickLocation(lat, lon float64) {
	p.Landmark.Latitude = lat
	p.Landmark.Longitude = lon
}

// ToggleMap opens or closes the location picker. Coordinates are committed on
// pick, so closing never reverts anything.
func (p *LandmarkPicker) ToggleMap() {
	p.MapOpen = !p.MapOpen
}

// Complete reports whether distance and description are both filled in.
func (p LandmarkPicker) Complete() bool {
	return p.Landmark.Distance != "" && p.Landmark.Description != ""
}
