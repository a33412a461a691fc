package form

import (
	"github.com/google/uuid"

	"github.com/project-amenities/backend/internal/models"
)

// Upload is a freshly stored file waiting to become an Image.
type Upload struct {
	Source models.SourceFile
	URL    string
}

// ImageCollection is the ordered list of images of a form.
type ImageCollection []models.Image

// Add appends one image per upload. Only the first image added to an empty
// collection becomes primary.
func (c ImageCollection) Add(uploads []Upload) ImageCollection {
	wasEmpty := len(c) == 0
	next := make(ImageCollection, len(c), len(c)+len(uploads))
	copy(next, c)
	for i, u := range uploads {
		source := u.Source
		next = append(next, models.Image{
			ID:        uuid.New().String(),
			Source:    &source,
			URL:       u.URL,
			IsPrimary: wasEmpty && i == 0,
		})
	}
	return next
}

// SetDescription updates the description of the image with the given id.
func (c ImageCollection) SetDescription(id, text string) (ImageCollection, error) {
	idx := c.index(id)
	if idx < 0 {
		return c, ErrImageNotFound
	}
	next := c.clone()
	next[idx].Description = text
	return next, nil
}

// SetPrimary marks the image with the given id as primary and clears the flag
// on every other image.
func (c ImageCollection) SetPrimary(id string) (ImageCollection, error) {
	if c.index(id) < 0 {
		return c, ErrImageNotFound
	}
	next := c.clone()
	for i := range next {
		next[i].IsPrimary = next[i].ID == id
	}
	return next, nil
}

// Remove deletes the image with the given id and returns it so its preview
// can be released. The primary flag is not moved to another image.
func (c ImageCollection) Remove(id string) (ImageCollection, models.Image, error) {
	idx := c.index(id)
	if idx < 0 {
		return c, models.Image{}, ErrImageNotFound
	}
	removed := c[idx]
	next := make(ImageCollection, 0, len(c)-1)
	next = append(next, c[:idx]...)
	next = append(next, c[idx+1:]...)
	return next, removed, nil
}

// HasPrimary reports whether an image is marked as primary.
func (c ImageCollection) HasPrimary() bool {
	for _, img := range c {
		if img.IsPrimary {
			return true
		}
	}
	return false
}

func (c ImageCollection) index(id string) int {
	for i, img := range c {
		if img.ID == id {
			return i
		}
	}
	return -1
}

func (c ImageCollection) clone() ImageCollection {
	next := make(ImageCollection, len(c))
	copy(next, c)
	return next
}
