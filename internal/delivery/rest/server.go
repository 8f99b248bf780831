// Path: internal/delivery/rest/server.go
package rest

import (
	"context"
	"net/http"
	"time"
)

// Server is the HTTP server for the read-only history API.
type Server struct {
	httpServer *http.Server
}

// NewServer creates and configures a new API server.
func NewServer(port string, service dataService) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(service),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  15 * time.Second,
		},
	}
}

// NewRouter registers the history routes.
func NewRouter(service dataService) http.Handler {
	historyHandlers := NewHistoryHandlers(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/history", historyHandlers.ListHistory)
	mux.HandleFunc("/history/", historyHandlers.GetDay) // Trailing slash handles sub-paths
	return mux
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
