// Package service coordinates form sessions: it restores and persists the
// form document and applies every interaction to the session's draft.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/cache"
	"github.com/project-amenities/backend/internal/database"
	"github.com/project-amenities/backend/internal/form"
	"github.com/project-amenities/backend/internal/models"
	"github.com/project-amenities/backend/internal/preview"
	"github.com/project-amenities/backend/internal/validation"
)

// FileUpload is an image file received from the client.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// sweepBatch bounds the previews revoked by one sweep.
const sweepBatch = 100

// FormService owns the canonical draft of every open form session.
type FormService struct {
	repo      database.Repository
	docs      cache.DocumentCache
	drafts    cache.DraftStore
	previews  preview.Store
	index     cache.PreviewIndex
	validator *validation.Validator
	logger    *zap.Logger
	now       func() time.Time

	// Interactions on one session are applied one at a time.
	locks *sessionLocks
}

// NewFormService creates a new form service.
func NewFormService(
	repo database.Repository,
	docs cache.DocumentCache,
	drafts cache.DraftStore,
	previews preview.Store,
	index cache.PreviewIndex,
	validator *validation.Validator,
	logger *zap.Logger,
) *FormService {
	return &FormService{
		repo:      repo,
		docs:      docs,
		drafts:    drafts,
		previews:  previews,
		index:     index,
		validator: validator,
		logger:    logger,
		now:       time.Now,
		locks:     newSessionLocks(),
	}
}

// Open starts a new form session pre-filled with the last submitted document.
func (s *FormService) Open(ctx context.Context) (*models.DraftView, error) {
	draft := form.NewDraft(uuid.New().String())
	s.restore(ctx, draft)

	if err := s.drafts.Put(ctx, draft); err != nil {
		s.logger.Error("Failed to store new draft", zap.Error(err))
		return nil, fmt.Errorf("failed to open form session: %w", err)
	}

	s.logger.Info("Opened form session", zap.String("session", draft.ID))
	view := draft.View()
	return &view, nil
}

// restore fills draft from the persisted document. Failures are logged and
// leave the defaults in place.
func (s *FormService) restore(ctx context.Context, draft *form.Draft) {
	doc, err := s.docs.Get(ctx)
	if err == nil && doc != nil {
		draft.Restore(doc)
		return
	}

	doc, err = s.repo.Load(ctx)
	if err != nil {
		var decodeErr *database.DecodeError
		if errors.As(err, &decodeErr) {
			s.logger.Warn("Ignoring unreadable saved form document", zap.Error(err))
		} else {
			s.logger.Error("Failed to restore saved form document", zap.Error(err))
		}
		return
	}
	if doc == nil {
		return
	}

	draft.Restore(doc)
	_ = s.docs.Set(ctx, doc)
}

// Get returns the current state of a session.
func (s *FormService) Get(ctx context.Context, id string) (*models.DraftView, error) {
	return s.mutate(ctx, id, nil)
}

// Close ends a session and releases every image preview it still holds.
func (s *FormService) Close(ctx context.Context, id string) error {
	defer s.locks.acquire(id)()

	draft, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		return err
	}

	for _, src := range draft.SourceFiles() {
		s.revoke(ctx, src)
	}

	s.logger.Info("Closed form session", zap.String("session", id))
	return nil
}

// Progress returns the completion percentage of a session.
func (s *FormService) Progress(ctx context.Context, id string) (int, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return view.Progress, nil
}

// ToggleAmenity flips the selection of one amenity.
func (s *FormService) ToggleAmenity(ctx context.Context, id string, amenityID int) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.Amenities = d.Amenities.Toggle(amenityID)
		return nil
	})
}

// ToggleAllAmenities selects all amenities, or unselects them all when every
// amenity is already selected.
func (s *FormService) ToggleAllAmenities(ctx context.Context, id string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.Amenities = d.Amenities.ToggleAll()
		return nil
	})
}

// AddImages stores a preview for every file and appends them as images.
func (s *FormService) AddImages(ctx context.Context, id string, files []FileUpload) (*models.DraftView, error) {
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return nil, fmt.Errorf("%s: %w", f.Name, ErrUnsupportedFile)
		}
	}

	var created []form.Upload
	view, err := s.mutate(ctx, id, func(d *form.Draft) error {
		uploads := make([]form.Upload, 0, len(files))
		for _, f := range files {
			p, err := s.previews.Create(ctx, f.Name, f.ContentType, f.Reader, f.Size)
			if err != nil {
				for _, u := range uploads {
					s.revoke(ctx, u.Source)
				}
				return fmt.Errorf("failed to store %s: %w", f.Name, err)
			}
			// Tracked before the draft is written so a failed write still
			// leaves the preview to the sweeper.
			if err := s.index.Track(ctx, p.Key); err != nil {
				s.logger.Warn("Failed to track image preview", zap.String("key", p.Key), zap.Error(err))
			}
			uploads = append(uploads, form.Upload{
				Source: models.SourceFile{
					Name:        f.Name,
					ContentType: f.ContentType,
					Size:        f.Size,
					PreviewKey:  p.Key,
				},
				URL: p.URL,
			})
		}
		d.AddImages(uploads)
		created = uploads
		return nil
	})
	if err != nil {
		// The draft write failed after the previews were stored.
		for _, u := range created {
			s.revoke(ctx, u.Source)
		}
		return nil, err
	}
	return view, nil
}

// SetImageDescription updates the description of an image.
func (s *FormService) SetImageDescription(ctx context.Context, id, imageID, text string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		images, err := d.Images.SetDescription(imageID, text)
		if err != nil {
			return err
		}
		d.Images = images
		return nil
	})
}

// SetPrimaryImage makes an image the only primary image.
func (s *FormService) SetPrimaryImage(ctx context.Context, id, imageID string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		images, err := d.Images.SetPrimary(imageID)
		if err != nil {
			return err
		}
		d.Images = images
		return nil
	})
}

// RemoveImage removes an image and releases its preview.
func (s *FormService) RemoveImage(ctx context.Context, id, imageID string) (*models.DraftView, error) {
	var released *models.SourceFile
	view, err := s.mutate(ctx, id, func(d *form.Draft) error {
		src, err := d.RemoveImage(imageID)
		released = src
		return err
	})
	if err != nil {
		return nil, err
	}
	if released != nil {
		s.revoke(ctx, *released)
	}
	return view, nil
}

// SetURL writes a URL slot.
func (s *FormService) SetURL(ctx context.Context, id string, index int, value string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		return d.URLs.Set(index, value)
	})
}

// AddURLField appends an empty URL slot; past the limit it changes nothing.
func (s *FormService) AddURLField(ctx context.Context, id string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.URLs.AddField()
		return nil
	})
}

// SelectRera records the RERA registration decision.
func (s *FormService) SelectRera(ctx context.Context, id string, registered bool) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.Rera.Select(registered)
		return nil
	})
}

// SetReraNumber writes a RERA number slot.
func (s *FormService) SetReraNumber(ctx context.Context, id string, index int, value string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		return d.Rera.Set(index, value)
	})
}

// AddReraField appends an empty RERA number slot; past the limit it changes nothing.
func (s *FormService) AddReraField(ctx context.Context, id string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.Rera.AddField()
		return nil
	})
}

// SetLandmarkField assigns one landmark field.
func (s *FormService) SetLandmarkField(ctx context.Context, id, name, value string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		return d.Landmark.SetField(name, value)
	})
}

// PickLocation sets the landmark coordinates.
func (s *FormService) PickLocation(ctx context.Context, id string, lat, lon float64) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.Landmark.PickLocation(lat, lon)
		return nil
	})
}

// ToggleMap opens or closes the location picker.
func (s *FormService) ToggleMap(ctx context.Context, id string) (*models.DraftView, error) {
	return s.mutate(ctx, id, func(d *form.Draft) error {
		d.Landmark.ToggleMap()
		return nil
	})
}

// Preview is not implemented; it only checks that the session exists.
func (s *FormService) Preview(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return ErrPreviewUnavailable
}

// Submit validates the session's document and persists it. A rejected
// document replaces the session's field errors and is not persisted.
func (s *FormService) Submit(ctx context.Context, id string) (*models.FormDocument, error) {
	defer s.locks.acquire(id)()

	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := draft.Document()
	if errs := s.validator.Validate(&doc); len(errs) > 0 {
		draft.SetErrors(errs.Map())
		if err := s.drafts.Put(ctx, draft); err != nil {
			s.logger.Error("Failed to store field errors", zap.String("session", id), zap.Error(err))
		}
		s.logger.Info("Form submission rejected",
			zap.String("session", id),
			zap.Int("violations", len(errs)),
		)
		return nil, &ValidationError{Fields: errs}
	}

	if err := s.repo.Save(ctx, &doc); err != nil {
		s.logger.Error("Failed to persist form document", zap.String("session", id), zap.Error(err))
		return nil, fmt.Errorf("failed to submit form: %w", err)
	}
	if err := s.docs.Set(ctx, &doc); err != nil {
		// A cached copy of the previous document must not outlive the save.
		if err := s.docs.Invalidate(ctx); err != nil {
			s.logger.Error("Failed to invalidate cached form document", zap.Error(err))
		}
	}

	draft.SetErrors(nil)
	if err := s.drafts.Put(ctx, draft); err != nil {
		s.logger.Error("Failed to clear field errors", zap.String("session", id), zap.Error(err))
	}

	s.logger.Info("Form submitted", zap.String("session", id))
	return &doc, nil
}

// Document returns the last submitted document.
func (s *FormService) Document(ctx context.Context) (*models.FormDocument, error) {
	if doc, err := s.docs.Get(ctx); err == nil && doc != nil {
		return doc, nil
	}

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	_ = s.docs.Set(ctx, doc)
	return doc, nil
}

// mutate applies fn to the session's draft and stores the result. A nil fn
// only reads the draft.
func (s *FormService) mutate(ctx context.Context, id string, fn func(*form.Draft) error) (*models.DraftView, error) {
	defer s.locks.acquire(id)()

	draft, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if fn != nil {
		if err := fn(draft); err != nil {
			return nil, err
		}
		if err := s.drafts.Put(ctx, draft); err != nil {
			s.logger.Error("Failed to store draft", zap.String("session", id), zap.Error(err))
			return nil, err
		}
	}

	view := draft.View()
	return &view, nil
}

func (s *FormService) load(ctx context.Context, id string) (*form.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load draft", zap.String("session", id), zap.Error(err))
		return nil, err
	}
	if draft == nil {
		return nil, ErrSessionNotFound
	}
	return draft, nil
}

// revoke releases a preview. A preview that could not be revoked stays in the
// index and is retried by the sweeper.
func (s *FormService) revoke(ctx context.Context, src models.SourceFile) {
	if src.PreviewKey == "" {
		return
	}
	if !s.revokeKey(ctx, src.PreviewKey) {
		return
	}
	if err := s.index.Untrack(ctx, src.PreviewKey); err != nil {
		s.logger.Warn("Failed to untrack image preview", zap.String("key", src.PreviewKey), zap.Error(err))
	}
}

func (s *FormService) revokeKey(ctx context.Context, key string) bool {
	err := s.previews.Revoke(ctx, key)
	if err != nil && !errors.Is(err, preview.ErrNotFound) {
		s.logger.Warn("Failed to revoke image preview", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SweepPreviews revokes the previews of drafts that expired without being
// closed and returns how many were released.
func (s *FormService) SweepPreviews(ctx context.Context) (int, error) {
	keys, err := s.index.Expired(ctx, s.now(), sweepBatch)
	if err != nil {
		return 0, err
	}

	var released []string
	for _, key := range keys {
		if s.revokeKey(ctx, key) {
			released = append(released, key)
		}
	}
	if err := s.index.Untrack(ctx, released...); err != nil {
		return 0, err
	}

	if len(released) > 0 {
		s.logger.Info("Swept expired image previews", zap.Int("count", len(released)))
	}
	return len(released), nil
}

// RunSweeper calls SweepPreviews every interval until ctx is done.
func (s *FormService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepPreviews(ctx); err != nil {
				s.logger.Error("Failed to sweep image previews", zap.Error(err))
			}
		}
	}
}
