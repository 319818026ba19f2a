package response

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// APIBase is the path prefix every resource location is built under
const APIBase = "/api/v1"

// JSON writes data as the response body with the given status.
// A nil body still sets the content type so clients can rely on it.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 whose Location header points at the new resource
func Created(w http.ResponseWriter, data any, segments ...string) {
	w.Header().Set("Location", Location(segments...))
	JSON(w, http.StatusCreated, data)
}

// Location joins escaped path segments under APIBase
func Location(segments ...string) string {
	var b strings.Builder
	b.WriteString(APIBase)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
