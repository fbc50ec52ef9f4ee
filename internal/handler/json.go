package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
)

// maxRequestBody caps JSON request bodies at 64 KiB. Chat messages and tool
// inputs are far smaller than this.
const maxRequestBody = 64 << 10

// decodeJSON reads and decodes a JSON request body into dst.
// Unknown fields are rejected so client typos surface as 400s.
func decodeJSON(r *http.Request, dst interface{}) error {
	const op = "handler.decodeJSON"

	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Wrap(err, domain.EINVALID, op, "Invalid request body")
	}
	return nil
}

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
