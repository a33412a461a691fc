// Package models contains the data models for the application.
package models

// StorageKey is the fixed key the submitted form document is persisted under.
const StorageKey = "amenitiesFormData"

// Amenity is a selectable project feature tag.
type Amenity struct {
	ID       int    `json:"id"`
	Label    string `json:"text"`
	Selected bool   `json:"selected"`
}

// SourceFile is the transient handle of an uploaded image. It only lives for
// the duration of a form session and is never persisted.
type SourceFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	PreviewKey  string `json:"previewKey"`
}

// Image is an uploaded project image with its preview URL.
type Image struct {
	ID          string      `json:"id"`
	Source      *SourceFile `json:"-"`
	URL         string      `json:"url"`
	Description string      `json:"description" validate:"required"`
	IsPrimary   bool        `json:"isPrimary"`
}

// ReraState holds the RERA registration decision and registration numbers.
// A nil IsRegistered means the user has not decided yet.
type ReraState struct {
	IsRegistered *bool    `json:"isRegistered"`
	Numbers      []string `json:"numbers" validate:"omitempty,dive,alphanum"`
}

// Registered reports whether the project was declared as RERA registered.
func (r ReraState) Registered() bool {
	return r.IsRegistered != nil && *r.IsRegistered
}

// Decided reports whether a registration decision has been made.
func (r ReraState) Decided() bool {
	return r.IsRegistered != nil
}

// Landmark describes the project's proximity to a catalog landmark.
type Landmark struct {
	LandmarkID  int     `json:"landmarkId" validate:"landmark"`
	Distance    string  `json:"distance" validate:"required,numeric"`
	Description string  `json:"description" validate:"required"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// FormDocument is the aggregate unit of persistence and validation.
type FormDocument struct {
	Amenities []Amenity `json:"amenities" validate:"anyselected"`
	Images    []Image   `json:"images" validate:"min=1,anyprimary,dive"`
	URLs      []string  `json:"urls" validate:"omitempty,dive,profileurl"`
	Rera      ReraState `json:"rera"`
	Landmark  Landmark  `json:"landmark"`
}

// FieldError is a single validation failure addressed by a dotted field path,
// e.g. "images.0.description".
type FieldError struct {
	FieldPath string `json:"field"`
	Message   string `json:"message"`
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
