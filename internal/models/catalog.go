package models

// LandmarkOption is an entry of the landmark catalog.
type LandmarkOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Default landmark values used when a form starts empty.
const (
	DefaultLandmarkID = 1
	DefaultLatitude   = 18.5233
	DefaultLongitude  = 73.8553
)

var amenityLabels = []string{
	"School in vicinity",
	"Adjoining Metro Station",
	"Peaceful Vicinity",
	"Near City Center",
	"Safe & Secure Locality",
	"Desperate Sale",
	"Breakthrough Price",
	"Quick Deal",
	"Investment Opportunity",
	"High Rental Yield",
	"Affordable",
	"Reputed Builder",
	"Well Ventilated",
	"Fully Renovated",
	"Vastu Compliant",
	"Spacious",
	"Ample Parking",
	"Free Hold",
	"Gated Society",
	"Tasteful Interior",
	"Prime Location",
	"Luxury Lifestyle",
	"Well Maintained",
	"Plenty of Sunlight",
	"Newly Built",
	"Family",
	"Bachelors",
	"Females Only",
}

var landmarkCatalog = []LandmarkOption{
	{ID: 1, Name: "Yellowstone National Park"},
	{ID: 2, Name: "Grand Canyon National Park"},
	{ID: 3, Name: "Yosemite National Park"},
	{ID: 4, Name: "Zion National Park"},
	{ID: 5, Name: "Acadia National Park"},
}

// AmenityCatalog returns a fresh copy of the amenity catalog with nothing selected.
func AmenityCatalog() []Amenity {
	amenities := make([]Amenity, len(amenityLabels))
	for i, label := range amenityLabels {
		amenities[i] = Amenity{ID: i + 1, Label: label}
	}
	return amenities
}

// LandmarkCatalog returns a copy of the landmark catalog.
func LandmarkCatalog() []LandmarkOption {
	return append([]LandmarkOption(nil), landmarkCatalog...)
}

// IsKnownLandmark reports whether id references a catalog landmark.
func IsKnownLandmark(id int) bool {
	for _, l := range landmarkCatalog {
		if l.ID == id {
			return true
		}
	}
	return false
}

// DefaultLandmark returns the landmark record a new form starts with.
func DefaultLandmark() Landmark {
	return Landmark{
		LandmarkID: DefaultLandmarkID,
		Latitude:   DefaultLatitude,
		Longitude:  DefaultLongitude,
	}
}
