package projection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Request is the JSON payload accepted on stdin and by the HTTP API.
// Optional fields are pointers so that an explicit zero is distinguishable
// from an absent value.
type Request struct {
	Embeddings  []EmbeddingItem `json:"embeddings"`
	NNeighbors  *int            `json:"n_neighbors,omitempty"`
	MinDist     *float64        `json:"min_dist,omitempty"`
	Metric      *string         `json:"metric,omitempty"`
	NComponents *int            `json:"n_components,omitempty"`

	NEpochs            *int     `json:"n_epochs,omitempty"`
	Spread             *float64 `json:"spread,omitempty"`
	LearningRate       *float64 `json:"learning_rate,omitempty"`
	NegativeSampleRate *float64 `json:"negative_sample_rate,omitempty"`
	LocalConnectivity  *float64 `json:"local_connectivity,omitempty"`
	SetOpMixRatio      *float64 `json:"set_op_mix_ratio,omitempty"`
	RepulsionStrength  *float64 `json:"repulsion_strength,omitempty"`
	Init               *string  `json:"init,omitempty"`
}

type EmbeddingItem struct {
	ID        ID     `json:"id"`
	Embedding Vector `json:"embedding"`
}

// Result is one projected point. Z is only set for 3D projections.
type Result struct {
	ID ID       `json:"id"`
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
	Z  *float64 `json:"z,omitempty"`
}

// ID is a string or numeric identifier kept as raw JSON so it is echoed
// back exactly as received.
type ID json.RawMessage

func StringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID(b)
}

func NumberID(n int64) ID {
	return ID(strconv.AppendInt(nil, n, 10))
}

func (id ID) MarshalJSON() ([]byte, error) {
	if len(id) == 0 {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	*id = append((*id)[:0], bytes.TrimSpace(data)...)
	return nil
}

// Valid reports whether id holds a JSON string or number.
func (id ID) Valid() bool {
	if len(id) == 0 {
		return false
	}
	switch c := id[0]; {
	case c == '"':
		var s string
		return json.Unmarshal(id, &s) == nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		return json.Unmarshal(id, &n) == nil
	}
	return false
}

// String returns the identifier text: the unquoted value for string ids,
// the literal for numeric ones.
func (id ID) String() string {
	if len(id) > 0 && id[0] == '"' {
		var s string
		if err := json.Unmarshal(id, &s); err == nil {
			return s
		}
	}
	return string(id)
}

// Vector is an embedding. Its decoder rejects null elements, which the
// default float decoder would silently turn into zeros.
type Vector []float64

func (v *Vector) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}

	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Vector, len(raw))
	for i, f := range raw {
		if f == nil {
			return fmt.Errorf("element %d is null: %w", i, ErrNonNumeric)
		}
		out[i] = *f
	}
	*v = out
	return nil
}

// Params is a request with every default applied.
type Params struct {
	NNeighbors         int     `json:"n_neighbors"`
	MinDist            float64 `json:"min_dist"`
	Metric             string  `json:"metric"`
	NComponents        int     `json:"n_components"`
	NEpochs            int     `json:"n_epochs"`
	Spread             float64 `json:"spread"`
	LearningRate       float64 `json:"learning_rate"`
	NegativeSampleRate float64 `json:"negative_sample_rate"`
	LocalConnectivity  float64 `json:"local_connectivity"`
	SetOpMixRatio      float64 `json:"set_op_mix_ratio"`
	RepulsionStrength  float64 `json:"repulsion_strength"`
	Init               string  `json:"init"`
}
