// Package validation checks a whole form document and reports every violation
// as a dotted field path with a message.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/project-amenities/backend/internal/form"
	"github.com/project-amenities/backend/internal/models"
)

// FieldErrors is the result of validating a document. It is empty when the
// document is valid.
type FieldErrors []models.FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.FieldPath + ": " + e.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Map returns the errors keyed by field path. The first message reported for
// a path wins.
func (fe FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		if _, ok := m[e.FieldPath]; !ok {
			m[e.FieldPath] = e.Message
		}
	}
	return m
}

// Validator validates form documents.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the form rules registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("anyselected", validateAnySelected)
	_ = v.RegisterValidation("anyprimary", validateAnyPrimary)
	_ = v.RegisterValidation("profileurl", validateProfileURL)
	_ = v.RegisterValidation("landmark", validateLandmark)
	v.RegisterStructValidation(validateRera, models.FormDocument{})

	return &Validator{v: v}
}

// Validate checks doc and returns every violation found.
func (val *Validator) Validate(doc *models.FormDocument) FieldErrors {
	err := val.v.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{FieldPath: "", Message: err.Error()}}
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		out = append(out, models.FieldError{
			FieldPath: path,
			Message:   message(path, fe),
		})
	}
	return out
}

// fieldPath turns "FormDocument.images[0].description" into
// "images.0.description".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	r := strings.NewReplacer("[", ".", "]", "")
	return r.Replace(namespace)
}

func validateAnySelected(fl validator.FieldLevel) bool {
	amenities, ok := fl.Field().Interface().([]models.Amenity)
	return ok && form.AmenityList(amenities).AnySelected()
}

func validateAnyPrimary(fl validator.FieldLevel) bool {
	images, ok := fl.Field().Interface().([]models.Image)
	return ok && form.ImageCollection(images).HasPrimary()
}

func validateProfileURL(fl validator.FieldLevel) bool {
	return form.ProfileURLPattern.MatchString(fl.Field().String())
}

func validateLandmark(fl validator.FieldLevel) bool {
	return models.IsKnownLandmark(int(fl.Field().Int()))
}

// validateRera requires a decision and, for registered projects, at least
// one registration number.
func validateRera(sl validator.StructLevel) {
	doc := sl.Current().Interface().(models.FormDocument)
	switch {
	case !doc.Rera.Decided():
		sl.ReportError(doc.Rera, "rera", "Rera", "reradecision", "")
	case doc.Rera.Registered() && len(doc.Rera.Numbers) == 0:
		sl.ReportError(doc.Rera, "rera", "Rera", "reranumbers", "")
	}
}
