package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

func message(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "anyselected":
		return "At least one amenity must be selected"
	case "anyprimary":
		return "At least one image must be set as primary"
	case "profileurl":
		return "Invalid URL format"
	case "landmark":
		return "Landmark must be selected from the list"
	case "alphanum":
		return "RERA Number must contain only alphanumeric characters"
	case "reradecision":
		return "Please specify whether the project is RERA registered"
	case "reranumbers":
		return "If RERA is registered, at least one RERA number is required"
	case "numeric":
		return "Distance must be a number"
	case "gte", "lte":
		return "Coordinates are out of range"
	case "min":
		if path == "images" {
			return "At least one image is required"
		}
		return "Too short"
	case "required":
		switch {
		case path == "landmark.distance":
			return "Distance is required"
		case path == "landmark.description":
			return "Landmark description is required"
		case strings.HasPrefix(path, "images."):
			return "Image description is required"
		}
		return "This field is required"
	default:
		return "Invalid value"
	}
}
