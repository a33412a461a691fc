package models

// DescriptionRequest sets an image description. An empty string clears it.
type DescriptionRequest struct {
	Description *string `json:"description" binding:"required"`
}

// ValueRequest writes a single text value into a URL, RERA number or
// landmark field.
type ValueRequest struct {
	Value *string `json:"value" binding:"required"`
}

// RegistrationRequest records whether the project is RERA registered.
type RegistrationRequest struct {
	IsRegistered *bool `json:"isRegistered" binding:"required"`
}

// LocationRequest carries a location picked on the map.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}
