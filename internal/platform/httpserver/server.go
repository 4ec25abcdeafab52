package httpserver

import (
	"net/http"
	"time"
)

// New returns an http.Server with conservative timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Claim and policy submissions wait for ledger confirmation.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
