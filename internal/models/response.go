package models

// ErrorResponse represents an error response from the API.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// DraftView is the client-facing state of a form session.
type DraftView struct {
	SessionID  string            `json:"sessionId"`
	Document   FormDocument      `json:"document"`
	URLSlots   []URLSlot         `json:"urlSlots"`
	URLErrors  []string          `json:"urlErrors"`
	ReraErrors []string          `json:"reraErrors"`
	MapOpen    bool              `json:"mapOpen"`
	Errors     map[string]string `json:"errors"`
	Progress   int               `json:"progress"`
}

// URLSlot labels a position of the URL list.
type URLSlot struct {
	Title       string `json:"title"`
	Placeholder string `json:"placeholder"`
}

// DraftResponse wraps a draft view in the API response.
type DraftResponse struct {
	Data DraftView `json:"data"`
}

// DocumentResponse wraps a persisted form document in the API response.
type DocumentResponse struct {
	Data FormDocument `json:"data"`
}

// ProgressResponse reports form completion.
type ProgressResponse struct {
	Progress int `json:"progress"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	Message string       `json:"message"`
	Data    FormDocument `json:"data"`
}

// AmenitiesResponse wraps the amenity catalog.
type AmenitiesResponse struct {
	Data []Amenity `json:"data"`
}

// LandmarksResponse wraps the landmark catalog.
type LandmarksResponse struct {
	Data []LandmarkOption `json:"data"`
}
