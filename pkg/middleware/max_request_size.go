package middleware

import (
	"fmt"
	"net/http"

	apperrors "huddle/pkg/errors"
	httputil "huddle/pkg/http"
)

// MaxRequestSize rejects bodies that declare more than limit bytes and caps the
// rest with http.MaxBytesReader so chunked bodies cannot exceed it either.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(
					apperrors.CodeInvalidInput,
					fmt.Sprintf("Request body exceeds %d bytes", limit),
					http.StatusRequestEntityTooLarge,
				))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
