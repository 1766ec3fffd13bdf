// Package site serves the embedded recruiter dashboard page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the dashboard page at / to mux. Paths that match no
// embedded file answer 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
