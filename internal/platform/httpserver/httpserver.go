package httpserver

import (
	"net/http"
	"time"
)

// New builds the portal HTTP server. Request bodies are small JSON documents
// (document uploads go to object storage, only their keys pass through here),
// so the read side is kept tight; the write timeout leaves room for the
// submission retry loop.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
