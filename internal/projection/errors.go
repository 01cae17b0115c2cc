package projection

import (
	"errors"

	"github.com/rupamthxt/vectraproj/internal/umap"
)

var (
	ErrMalformedRequest  = errors.New("malformed request")
	ErrMissingEmbeddings = errors.New("embeddings field is required")
	ErrEmptyEmbeddings   = errors.New("embeddings must not be empty")
	ErrMissingID         = errors.New("item is missing a string or numeric id")
	ErrMissingVector     = errors.New("item is missing its embedding")
	ErrNonNumeric        = errors.New("embedding must contain only numbers")
	ErrDimensionMismatch = errors.New("embeddings have inconsistent dimensions")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrTooManyItems      = errors.New("too many embeddings")
)

var validationErrors = []error{
	ErrMalformedRequest,
	ErrMissingEmbeddings,
	ErrEmptyEmbeddings,
	ErrMissingID,
	ErrMissingVector,
	ErrNonNumeric,
	ErrDimensionMismatch,
	ErrInvalidParameter,
	ErrTooManyItems,
	umap.ErrInvalidConfig,
	umap.ErrUnknownMetric,
}

// IsValidation reports whether err was caused by the request itself
// rather than by the projection engine.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
