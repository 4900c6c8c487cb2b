package services

import (
	"errors"

	"stockroom/internal/models"
	"stockroom/internal/repositories"
)

var (
	ErrNotFound          = repositories.ErrNotFound
	ErrInsufficientStock = repositories.ErrInsufficientStock
	ErrInvalidAdjustment = models.ErrInvalidAdjustment
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownView       = errors.New("unknown list view")
	ErrValidation        = errors.New("validation failed")
)
