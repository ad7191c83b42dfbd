// Package server exposes watch-mode status over HTTP: health, recent upload
// history, and live upload results via SSE and websocket.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"photopost/internal/storage"
	"photopost/internal/uploader"
)

// Subscriber hands out live upload results. Implemented by *watch.Watcher.
type Subscriber interface {
	Subscribe() (<-chan uploader.Result, func())
}

// Server wraps the HTTP status server for watch mode.
type Server struct {
	addr     string
	store    *storage.Store
	events   Subscriber
	log      *slog.Logger
	server   *http.Server
	upgrader websocket.Upgrader
}

// NewServer creates a status server bound to addr.
func NewServer(addr string, store *storage.Store, events Subscriber, log *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		store:  store,
		events: events,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/uploads", s.handleUploads).Methods("GET")
	r.HandleFunc("/stream", s.handleStream).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down status server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctxShutdown)
	}()

	s.log.Info("status server starting", "addr", s.addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.Recent(100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}

// resultPayload is the wire form of an upload result.
type resultPayload struct {
	ID        string `json:"id"`
	ImagePath string `json:"image_path"`
	Caption   string `json:"caption"`
	MediaID   string `json:"media_id,omitempty"`
	Stage     string `json:"stage"`
	Error     string `json:"error,omitempty"`
}

func toPayload(res uploader.Result) resultPayload {
	p := resultPayload{
		ID:        res.ID,
		ImagePath: res.ImagePath,
		Caption:   res.Caption,
		MediaID:   res.MediaID,
		Stage:     res.Stage,
	}
	if res.Error != nil {
		p.Error = res.Error.Error()
	}
	return p
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	resCh, unsubscribe := s.events.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-r.Context().Done():
			return
		case res, ok := <-resCh:
			if !ok {
				return
			}
			payload, _ := json.Marshal(toPayload(res))
			_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
			flusher.Flush()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	resCh, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case res, ok := <-resCh:
			if !ok {
				return
			}
			if err := conn.WriteJSON(toPayload(res)); err != nil {
				return
			}
		}
	}
}
