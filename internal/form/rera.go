package form

import (
	"fmt"
	"regexp"

	"github.com/project-amenities/backend/internal/models"
)

// ReraNumberPattern accepts alphanumeric registration numbers only.
var ReraNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

const invalidReraMessage = "Invalid RERA Number! Only alphanumeric characters are allowed."

// Rera is the RERA registration sub-form.
type Rera struct {
	State  models.ReraState `json:"state"`
	Errors []string         `json:"errors"`
}

// NewRera returns the sub-form for state with no errors recorded.
func NewRera(state models.ReraState) Rera {
	numbers := append([]string{}, state.Numbers...)
	return Rera{
		State:  models.ReraState{IsRegistered: state.IsRegistered, Numbers: numbers},
		Errors: make([]string, len(numbers)),
	}
}

// Select records the registration decision. Choosing registered seeds one
// empty number slot if none exist; choosing not registered drops all numbers
// and their errors.
func (r *Rera) Select(registered bool) {
	r.State.IsRegistered = models.BoolPtr(registered)
	if !registered {
		r.State.Numbers = []string{}
		r.Errors = []string{}
		return
	}
	if len(r.State.Numbers) == 0 {
		r.State.Numbers = []string{""}
		r.Errors = []string{""}
	}
}

// Set writes a registration number at index and records whether it is
// alphanumeric. An invalid value is still written.
func (r *Rera) Set(index int, value string) error {
	if index < 0 || index >= len(r.State.Numbers) {
		return fmt.Errorf("rera slot %d: %w", index, ErrIndexOutOfRange)
	}
	r.State.Numbers[index] = value
	for len(r.Errors) < len(r.State.Numbers) {
		r.Errors = append(r.Errors, "")
	}
	if ReraNumberPattern.MatchString(value) {
		r.Errors[index] = ""
	} else {
		r.Errors[index] = invalidReraMessage
	}
	return nil
}

// AddField appends an empty number slot. It reports false once MaxInputs is
// reached.
func (r *Rera) AddField() bool {
	if len(r.State.Numbers) >= MaxInputs {
		return false
	}
	r.State.Numbers = append(r.State.Numbers, "")
	r.Errors = append(r.Errors, "")
	return true
}
