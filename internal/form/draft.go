// Package form holds the in-progress state of the project amenities form and
// the reducers applied to it on every user interaction.
package form

import (
	"encoding/json"

	"github.com/project-amenities/backend/internal/models"
)

// progressChecks is the number of completion checks behind Progress.
const progressChecks = 5

// Draft is the canonical state of one form session. Each sub-form only
// changes its own part of it.
type Draft struct {
	ID        string                       `json:"id"`
	Amenities AmenityList                  `json:"amenities"`
	Images    ImageCollection              `json:"images"`
	Handles   map[string]models.SourceFile `json:"handles"`
	URLs      URLList                      `json:"urls"`
	Rera      Rera                         `json:"rera"`
	Landmark  LandmarkPicker               `json:"landmark"`
	Errors    map[string]string            `json:"errors"`
}

// NewDraft returns a draft seeded with the amenity catalog and the default
// landmark.
func NewDraft(id string) *Draft {
	return &Draft{
		ID:        id,
		Amenities: models.AmenityCatalog(),
		Images:    ImageCollection{},
		Handles:   map[string]models.SourceFile{},
		URLs:      NewURLList(nil),
		Rera:      NewRera(models.ReraState{Numbers: []string{}}),
		Landmark:  LandmarkPicker{Landmark: models.DefaultLandmark()},
		Errors:    map[string]string{},
	}
}

// Restore replaces every part of the draft with a previously persisted
// document. Restored images carry no source handle.
func (d *Draft) Restore(doc *models.FormDocument) {
	d.Amenities = append(AmenityList{}, doc.Amenities...)
	d.Images = append(ImageCollection{}, doc.Images...)
	for i := range d.Images {
		d.Images[i].Source = nil
	}
	d.Handles = map[string]models.SourceFile{}
	d.URLs = NewURLList(doc.URLs)
	d.Rera = NewRera(doc.Rera)
	if doc.Landmark == (models.Landmark{}) {
		d.Landmark = LandmarkPicker{Landmark: models.DefaultLandmark()}
	} else {
		d.Landmark = LandmarkPicker{Landmark: doc.Landmark}
	}
	d.Errors = map[string]string{}
}

// AddImages appends uploads to the image collection and keeps their handles.
func (d *Draft) AddImages(uploads []Upload) {
	d.Images = d.Images.Add(uploads)
	if d.Handles == nil {
		d.Handles = map[string]models.SourceFile{}
	}
	for _, img := range d.Images[len(d.Images)-len(uploads):] {
		d.Handles[img.ID] = *img.Source
	}
}

// RemoveImage drops an image and returns its source handle, if it had one.
func (d *Draft) RemoveImage(id string) (*models.SourceFile, error) {
	images, removed, err := d.Images.Remove(id)
	if err != nil {
		return nil, err
	}
	d.Images = images
	delete(d.Handles, id)
	return removed.Source, nil
}

// SourceFiles returns every transient handle held by the draft.
func (d *Draft) SourceFiles() []models.SourceFile {
	files := make([]models.SourceFile, 0, len(d.Handles))
	for _, img := range d.Images {
		if src, ok := d.Handles[img.ID]; ok {
			files = append(files, src)
		}
	}
	return files
}

// Progress returns the completion percentage: 0, 20, 40, 60, 80 or 100.
func (d *Draft) Progress() int {
	completed := 0
	if d.Amenities.AnySelected() {
		completed++
	}
	if d.Images.HasPrimary() {
		completed++
	}
	if len(d.URLs.Values) > 0 {
		completed++
	}
	if d.Rera.State.Decided() {
		completed++
	}
	if d.Landmark.Complete() {
		completed++
	}
	return completed * 100 / progressChecks
}

// Document assembles the form document. RERA numbers are dropped unless the
// project is declared registered.
func (d *Draft) Document() models.FormDocument {
	numbers := []string{}
	if d.Rera.State.Registered() {
		numbers = append(numbers, d.Rera.State.Numbers...)
	}
	return models.FormDocument{
		Amenities: append([]models.Amenity{}, d.Amenities...),
		Images:    append([]models.Image{}, d.Images...),
		URLs:      append([]string{}, d.URLs.Values...),
		Rera: models.ReraState{
			IsRegistered: d.Rera.State.IsRegistered,
			Numbers:      numbers,
		},
		Landmark: d.Landmark.Landmark,
	}
}

// SetErrors replaces the whole error map.
func (d *Draft) SetErrors(errs map[string]string) {
	if errs == nil {
		errs = map[string]string{}
	}
	d.Errors = errs
}

// View renders the client-facing state of the draft.
func (d *Draft) View() models.DraftView {
	return models.DraftView{
		SessionID:  d.ID,
		Document:   d.Document(),
		URLSlots:   d.URLs.Slots(),
		URLErrors:  append([]string{}, d.URLs.Errors...),
		ReraErrors: append([]string{}, d.Rera.Errors...),
		MapOpen:    d.Landmark.MapOpen,
		Errors:     d.Errors,
		Progress:   d.Progress(),
	}
}

// UnmarshalJSON decodes a draft and reattaches image handles.
func (d *Draft) UnmarshalJSON(data []byte) error {
	type draftAlias Draft
	var alias draftAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*d = Draft(alias)
	if d.Handles == nil {
		d.Handles = map[string]models.SourceFile{}
	}
	if d.Errors == nil {
		d.Errors = map[string]string{}
	}
	for i, img := range d.Images {
		if src, ok := d.Handles[img.ID]; ok {
			src := src
			d.Images[i].Source = &src
		}
	}
	return nil
}
