package form

import (
	"fmt"
	"regexp"

	"github.com/project-amenities/backend/internal/models"
)

// MaxInputs bounds the number of URL and RERA number slots.
const MaxInputs = 3

// ProfileURLPattern allow-lists YouTube, LinkedIn and GitHub profile URLs.
var ProfileURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/|linkedin\.com/in/|github\.com/)`)

const invalidURLMessage = "Invalid URL! Only YouTube, LinkedIn, and GitHub URLs are allowed."

var urlSlots = []models.URLSlot{
	{Title: "YouTube URL", Placeholder: "https://www.youtube.com/watch?v=example"},
	{Title: "LinkedIn URL", Placeholder: "https://www.linkedin.com/in/example"},
	{Title: "GitHub URL", Placeholder: "https://github.com/example"},
}

// URLList is the append-only list of profile URLs with per-slot errors.
type URLList struct {
	Values []string `json:"values"`
	Errors []string `json:"errors"`
}

// NewURLList returns a list holding values with no errors recorded.
func NewURLList(values []string) URLList {
	return URLList{
		Values: append([]string{}, values...),
		Errors: make([]string, len(values)),
	}
}

// Set writes value at index and records whether it is an allowed URL.
// An invalid value is still written.
func (l *URLList) Set(index int, value string) error {
	if index < 0 || index >= len(l.Values) {
		return fmt.Errorf("url slot %d: %w", index, ErrIndexOutOfRange)
	}
	l.Values[index] = value
	l.fitErrors()
	if ProfileURLPattern.MatchString(value) {
		l.Errors[index] = ""
	} else {
		l.Errors[index] = invalidURLMessage
	}
	return nil
}

// AddField appends an empty slot. It reports false once MaxInputs is reached.
func (l *URLList) AddField() bool {
	if len(l.Values) >= MaxInputs {
		return false
	}
	l.Values = append(l.Values, "")
	l.fitErrors()
	return true
}

// Slots returns the label of every current slot.
func (l URLList) Slots() []models.URLSlot {
	slots := make([]models.URLSlot, len(l.Values))
	for i := range l.Values {
		if i < len(urlSlots) {
			slots[i] = urlSlots[i]
			continue
		}
		slots[i] = models.URLSlot{Title: fmt.Sprintf("URL %d", i+1), Placeholder: "Enter URL"}
	}
	return slots
}

func (l *URLList) fitErrors() {
	for len(l.Errors) < len(l.Values) {
		l.Errors = append(l.Errors, "")
	}
}
