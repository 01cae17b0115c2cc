package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rupamthxt/vectraproj/internal/projection"
)

var errEmptyEmbedding = errors.New("empty embedding")

// ParseEmbedding decodes the text form of a stored embedding. Both the
// pgvector literal "[0.1,0.2]" and a JSON string wrapping it are accepted.
func ParseEmbedding(raw string) (projection.Vector, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		raw = strings.TrimSpace(inner)
	}
	if raw == "" || raw == "[]" {
		return nil, errEmptyEmbedding
	}

	var vec projection.Vector
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, errEmptyEmbedding
	}
	return vec, nil
}
