// Package handler provides the HTTP handlers for the project amenities form.
package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/form"
	"github.com/project-amenities/backend/internal/models"
	"github.com/project-amenities/backend/internal/preview"
	"github.com/project-amenities/backend/internal/service"
)

const (
	validationMessage = "Please check for any empty fields"
	unexpectedMessage = "An unexpected error occurred"
	submittedMessage  = "Form submitted successfully"
)

// UploadLimits bounds image uploads.
type UploadLimits struct {
	// FileBytes is the largest accepted image.
	FileBytes int64
	// RequestBytes is the largest accepted upload request body.
	RequestBytes int64
}

// Handler provides HTTP handlers for form sessions.
type Handler struct {
	forms    *service.FormService
	previews preview.Store
	limits   UploadLimits
	logger   *zap.Logger
}

// NewHandler creates a new form handler.
func NewHandler(forms *service.FormService, previews preview.Store, limits UploadLimits, logger *zap.Logger) *Handler {
	return &Handler{
		forms:    forms,
		previews: previews,
		limits:   limits,
		logger:   logger,
	}
}

// RegisterRoutes registers the handler routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog/amenities", h.Amenities)
	rg.GET("/catalog/landmarks", h.Landmarks)
	rg.GET("/previews/*key", h.ServePreview)

	forms := rg.Group("/forms")
	forms.GET("/document", h.Document)
	forms.POST("/sessions", h.Open)

	s := forms.Group("/sessions/:id")
	s.GET("", h.Get)
	s.DELETE("", h.Close)
	s.GET("/progress", h.Progress)
	s.POST("/amenities/toggle-all", h.ToggleAllAmenities)
	s.POST("/amenities/:amenityId/toggle", h.ToggleAmenity)
	s.POST("/images", h.AddImages)
	s.PUT("/images/:imageId/description", h.SetImageDescription)
	s.POST("/images/:imageId/primary", h.SetPrimaryImage)
	s.DELETE("/images/:imageId", h.RemoveImage)
	s.POST("/urls", h.AddURLField)
	s.PUT("/urls/:index", h.SetURL)
	s.PUT("/rera/registration", h.SelectRera)
	s.POST("/rera/numbers", h.AddReraField)
	s.PUT("/rera/numbers/:index", h.SetReraNumber)
	s.PUT("/landmark/fields/:name", h.SetLandmarkField)
	s.POST("/landmark/location", h.PickLocation)
	s.POST("/landmark/map", h.ToggleMap)
	s.POST("/preview", h.Preview)
	s.POST("/submit", h.Submit)
}

// Amenities returns the amenity catalog.
func (h *Handler) Amenities(c *gin.Context) {
	c.JSON(http.StatusOK, models.AmenitiesResponse{Data: models.AmenityCatalog()})
}

// Landmarks returns the landmark catalog.
func (h *Handler) Landmarks(c *gin.Context) {
	c.JSON(http.StatusOK, models.LandmarksResponse{Data: models.LandmarkCatalog()})
}

// Document handles retrieving the last submitted form document.
// @Summary Get submitted document
// @Description Retrieve the last successfully submitted amenities form
// @Tags forms
// @Produce json
// @Success 200 {object} models.DocumentResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/forms/document [get]
func (h *Handler) Document(c *gin.Context) {
	doc, err := h.forms.Document(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DocumentResponse{Data: *doc})
}

// Open handles starting a form session.
// @Summary Open form session
// @Description Start a form session pre-filled with the last submitted document
// @Tags forms
// @Produce json
// @Success 201 {object} models.DraftResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions [post]
func (h *Handler) Open(c *gin.Context) {
	view, err := h.forms.Open(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.DraftResponse{Data: *view})
}

// Get returns the current state of a session.
func (h *Handler) Get(c *gin.Context) {
	view, err := h.forms.Get(c.Request.Context(), c.Param("id"))
	h.writeView(c, view, err)
}

// Close ends a session.
func (h *Handler) Close(c *gin.Context) {
	if err := h.forms.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Progress returns the completion percentage of a session.
func (h *Handler) Progress(c *gin.Context) {
	progress, err := h.forms.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ProgressResponse{Progress: progress})
}

// ToggleAmenity flips the selection of one amenity.
// @Summary Toggle amenity
// @Tags amenities
// @Produce json
// @Param id path string true "Session ID"
// @Param amenityId path int true "Amenity ID"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/amenities/{amenityId}/toggle [post]
func (h *Handler) ToggleAmenity(c *gin.Context) {
	amenityID, err := strconv.Atoi(c.Param("amenityId"))
	if err != nil {
		h.badRequest(c, "amenity id must be an integer")
		return
	}
	view, err := h.forms.ToggleAmenity(c.Request.Context(), c.Param("id"), amenityID)
	h.writeView(c, view, err)
}

// ToggleAllAmenities selects every amenity, or clears them all when every
// amenity is already selected.
// @Summary Toggle all amenities
// @Tags amenities
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.DraftResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/amenities/toggle-all [post]
func (h *Handler) ToggleAllAmenities(c *gin.Context) {
	view, err := h.forms.ToggleAllAmenities(c.Request.Context(), c.Param("id"))
	h.writeView(c, view, err)
}

// AddImages handles image uploads. Dropped and browsed files arrive the same
// way, as the multipart field "files".
// @Summary Upload images
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/images [post]
func (h *Handler) AddImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limits.RequestBytes)

	mf, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "request_too_large",
			Message: fmt.Sprintf("upload exceeds the maximum request size of %d bytes", tooLarge.Limit),
		})
		return
	}
	if err != nil {
		h.logger.Warn("Invalid image upload", zap.Error(err))
		h.badRequest(c, "expected a multipart form")
		return
	}

	headers := mf.File["files"]
	if len(headers) == 0 {
		h.badRequest(c, "no files were uploaded")
		return
	}

	uploads := make([]service.FileUpload, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, fh := range headers {
		if fh.Size > h.limits.FileBytes {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("%s exceeds the maximum size of %d bytes", fh.Filename, h.limits.FileBytes),
			})
			return
		}

		f, err := fh.Open()
		if err != nil {
			h.writeError(c, err)
			return
		}
		opened = append(opened, f)

		uploads = append(uploads, service.FileUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	view, err := h.forms.AddImages(c.Request.Context(), c.Param("id"), uploads)
	h.writeView(c, view, err)
}

// SetImageDescription updates the description of an image.
// @Summary Set image description
// @Tags images
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param imageId path string true "Image ID"
// @Param body body models.DescriptionRequest true "Description"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/images/{imageId}/description [put]
func (h *Handler) SetImageDescription(c *gin.Context) {
	var req models.DescriptionRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.forms.SetImageDescription(c.Request.Context(), c.Param("id"), c.Param("imageId"), *req.Description)
	h.writeView(c, view, err)
}

// SetPrimaryImage makes an image the only primary image.
// @Summary Set primary image
// @Tags images
// @Produce json
// @Param id path string true "Session ID"
// @Param imageId path string true "Image ID"
// @Success 200 {object} models.DraftResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/images/{imageId}/primary [post]
func (h *Handler) SetPrimaryImage(c *gin.Context) {
	view, err := h.forms.SetPrimaryImage(c.Request.Context(), c.Param("id"), c.Param("imageId"))
	h.writeView(c, view, err)
}

// RemoveImage removes an image and releases its preview.
// @Summary Remove image
// @Tags images
// @Produce json
// @Param id path string true "Session ID"
// @Param imageId path string true "Image ID"
// @Success 200 {object} models.DraftResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/images/{imageId} [delete]
func (h *Handler) RemoveImage(c *gin.Context) {
	view, err := h.forms.RemoveImage(c.Request.Context(), c.Param("id"), c.Param("imageId"))
	h.writeView(c, view, err)
}

// AddURLField appends an empty URL slot.
func (h *Handler) AddURLField(c *gin.Context) {
	view, err := h.forms.AddURLField(c.Request.Context(), c.Param("id"))
	h.writeView(c, view, err)
}

// SetURL writes a URL slot and reports whether it is an allowed profile URL.
// @Summary Set URL
// @Tags urls
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Slot index"
// @Param body body models.ValueRequest true "URL"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/urls/{index} [put]
func (h *Handler) SetURL(c *gin.Context) {
	index, ok := h.index(c)
	if !ok {
		return
	}
	var req models.ValueRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.forms.SetURL(c.Request.Context(), c.Param("id"), index, *req.Value)
	h.writeView(c, view, err)
}

// SelectRera records whether the project is RERA registered.
// @Summary Select RERA registration
// @Tags rera
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body models.RegistrationRequest true "Decision"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/rera/registration [put]
func (h *Handler) SelectRera(c *gin.Context) {
	var req models.RegistrationRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.forms.SelectRera(c.Request.Context(), c.Param("id"), *req.IsRegistered)
	h.writeView(c, view, err)
}

// AddReraField appends an empty RERA number slot.
func (h *Handler) AddReraField(c *gin.Context) {
	view, err := h.forms.AddReraField(c.Request.Context(), c.Param("id"))
	h.writeView(c, view, err)
}

// SetReraNumber writes a RERA number slot.
// @Summary Set RERA number
// @Tags rera
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Slot index"
// @Param body body models.ValueRequest true "RERA number"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/rera/numbers/{index} [put]
func (h *Handler) SetReraNumber(c *gin.Context) {
	index, ok := h.index(c)
	if !ok {
		return
	}
	var req models.ValueRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.forms.SetReraNumber(c.Request.Context(), c.Param("id"), index, *req.Value)
	h.writeView(c, view, err)
}

// SetLandmarkField assigns landmarkId, distance or description.
// @Summary Set landmark field
// @Tags landmark
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param name path string true "Field name"
// @Param body body models.ValueRequest true "Value"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/landmark/fields/{name} [put]
func (h *Handler) SetLandmarkField(c *gin.Context) {
	var req models.ValueRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.forms.SetLandmarkField(c.Request.Context(), c.Param("id"), c.Param("name"), *req.Value)
	h.writeView(c, view, err)
}

// PickLocation sets the landmark coordinates chosen on the map.
// @Summary Pick location
// @Tags landmark
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body models.LocationRequest true "Coordinates"
// @Success 200 {object} models.DraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/landmark/location [post]
func (h *Handler) PickLocation(c *gin.Context) {
	var req models.LocationRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.forms.PickLocation(c.Request.Context(), c.Param("id"), *req.Latitude, *req.Longitude)
	h.writeView(c, view, err)
}

// ToggleMap opens or closes the location picker.
func (h *Handler) ToggleMap(c *gin.Context) {
	view, err := h.forms.ToggleMap(c.Request.Context(), c.Param("id"))
	h.writeView(c, view, err)
}

// Preview is not implemented and always answers 501 for an open session.
func (h *Handler) Preview(c *gin.Context) {
	h.writeError(c, h.forms.Preview(c.Request.Context(), c.Param("id")))
}

// Submit handles validating and persisting a session's document.
// @Summary Submit form
// @Description Validate the whole document and persist it on success
// @Tags forms
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SubmitResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/forms/sessions/{id}/submit [post]
func (h *Handler) Submit(c *gin.Context) {
	doc, err := h.forms.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SubmitResponse{Message: submittedMessage, Data: *doc})
}

// ServePreview streams an uploaded image preview.
func (h *Handler) ServePreview(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	rc, contentType, err := h.previews.Open(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("Invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		h.badRequest(c, err.Error())
		return false
	}
	return true
}

func (h *Handler) index(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.badRequest(c, "index must be an integer")
		return 0, false
	}
	return index, true
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

func (h *Handler) writeView(c *gin.Context, view *models.DraftView, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DraftResponse{Data: *view})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "validation_failed",
			Message: validationMessage,
			Fields:  verr.Fields.Map(),
		})
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, form.ErrImageNotFound),
		errors.Is(err, preview.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, form.ErrIndexOutOfRange),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrInvalidValue),
		errors.Is(err, service.ErrUnsupportedFile):
		h.badRequest(c, err.Error())
	case errors.Is(err, service.ErrPreviewUnavailable):
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{
			Error:   "not_implemented",
			Message: err.Error(),
		})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: unexpectedMessage,
		})
	}
}
