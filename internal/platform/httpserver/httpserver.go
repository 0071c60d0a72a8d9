package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Timeouts are sized for multipart document
// uploads, which can take a while on slow links; everything else finishes
// well inside them.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
