package projection

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
)

// Fingerprint identifies a request by its resolved parameters and items.
// Because projection is deterministic, equal fingerprints imply equal
// results, which makes it usable as a cache key.
func (r *Runner) Fingerprint(req *Request) (string, error) {
	if _, err := r.Validate(req.Embeddings); err != nil {
		return "", err
	}
	params, err := r.Resolve(req)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	paramBytes, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	h.Write(paramBytes)

	var buf [8]byte
	for _, item := range req.Embeddings {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(item.ID)))
		h.Write(buf[:4])
		h.Write(item.ID)
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(item.Embedding)))
		h.Write(buf[:4])
		for _, v := range item.Embedding {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
