package form

import "github.com/project-amenities/backend/internal/models"

// AmenityList is the amenity selection of a form.
type AmenityList []models.Amenity

// Toggle flips the selection of the amenity with the given id.
// Unknown ids leave the list unchanged.
func (l AmenityList) Toggle(id int) AmenityList {
	next := make(AmenityList, len(l))
	for i, a := range l {
		if a.ID == id {
			a.Selected = !a.Selected
		}
		next[i] = a
	}
	return next
}

// ToggleAll unselects every amenity when all of them are selected and
// selects every amenity otherwise.
func (l AmenityList) ToggleAll() AmenityList {
	selected := !l.AllSelected()
	next := make(AmenityList, len(l))
	for i, a := range l {
		a.Selected = selected
		next[i] = a
	}
	return next
}

// AllSelected reports whether every amenity is selected. An empty list counts
// as all selected.
func (l AmenityList) AllSelected() bool {
	for _, a := range l {
		if !a.Selected {
			return false
		}
	}
	return true
}

// AnySelected reports whether at least one amenity is selected.
func (l AmenityList) AnySelected() bool {
	for _, a := range l {
		if a.Selected {
			return true
		}
	}
	return false
}
