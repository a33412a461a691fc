package database

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/config"
	"github.com/project-amenities/backend/internal/models"
)

func TestDecodeError_Unwrap(t *testing.T) {
	var doc models.FormDocument
	cause := json.Unmarshal([]byte(`{"amenities": "not a list"}`), &doc)
	assert.Error(t, cause)

	err := error(&DecodeError{Err: cause})

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to decode stored form document")
}

func TestNewPostgresRepository_InvalidURL(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "::not a url::"}

	repo, err := NewPostgresRepository(cfg, zap.NewNop())

	assert.Nil(t, repo)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database URL")
}
