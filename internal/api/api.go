// Package api exposes the webhook receiver: a small HTTP surface that
// bridges platform callbacks and liveness probes onto the command bus.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/petrel-ai/attendant/internal/ipc"
)

// callTimeout bounds every bus call made on behalf of an HTTP request.
const callTimeout = 30 * time.Second

// Server is the webhook receiver.
type Server struct {
	addr string
	bus  *ipc.Bus

	router *mux.Router
	srv    *http.Server

	startTime time.Time
}

// NewServer creates a webhook receiver bridging requests onto bus.
func NewServer(host string, port int, bus *ipc.Bus) *Server {
	s := &Server{
		addr:      fmt.Sprintf("%s:%d", host, port),
		bus:       bus,
		router:    mux.NewRouter(),
		startTime: time.Now(),
	}

	s.router.Use(requestID)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/{platform}", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/{platform}/webhook", s.handleWebhook).Methods(http.MethodPut, http.MethodPost)

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{Addr: s.addr, Handler: s.router}

	log.Printf("[API] serving on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": int(time.Since(s.startTime).Seconds()),
	})
}

// handleStatus probes a platform adapter through the bus.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	platform := mux.Vars(r)["platform"]

	ctx, cancel := context.WithTimeout(r.Context(), callTimeout)
	defer cancel()

	resp, err := s.bus.Call(ctx, platform+"_get_status", platform, nil)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusGatewayTimeout)
		return
	}
	if resp.NotFound {
		writeJSONError(w, "unknown platform", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"status": resp.Body})
}

// handleWebhook forwards a platform callback onto the bus. The JSON body
// must carry a command; the whole body travels as the payload data.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	platform := mux.Vars(r)["platform"]

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	command, _ := data["command"].(string)
	if command == "" {
		writeJSONError(w, "command is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), callTimeout)
	defer cancel()

	resp, err := s.bus.Call(ctx, command, platform, data)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusGatewayTimeout)
		return
	}
	if resp.NotFound {
		writeJSONError(w, "unknown command", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"response": resp.Body})
}

// requestID tags every request so log lines from one request correlate.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		log.Printf("[API] %s %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
