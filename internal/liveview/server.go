package liveview

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// Server exposes the websocket endpoint and implements the session's
// Broadcaster. A live view failure never stops detection.
type Server struct {
	hub      *Hub
	port     int
	logger   *logger.Logger
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer creates a live view server on the given port.
func NewServer(port int, log *logger.Logger) *Server {
	return &Server{
		hub:    NewHub(log),
		port:   port,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the hub and the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	go func() {
		s.logger.Info("📺 Live view on ws://localhost:%d/ws", s.port)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Warning("Live view server stopped: %v", err)
		}
	}()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Websocket upgrade failed: %v", err)
		return
	}

	s.hub.Register(conn)

	// Clients only listen; the read loop exists to notice disconnects.
	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastFrame sends an annotated JPEG frame to all viewers.
func (s *Server) BroadcastFrame(jpeg []byte) {
	encoded := base64.StdEncoding.EncodeToString(jpeg)
	msg := fmt.Sprintf(`{"type":"frame","image":"%s"}`, encoded)
	s.hub.Broadcast([]byte(msg))
}

// BroadcastDetections sends decoded records to all viewers.
func (s *Server) BroadcastDetections(records []models.DetectionRecord) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":       "detections",
		"detections": records,
	})
	if err != nil {
		s.logger.Error("Could not marshal detections: %v", err)
		return
	}
	s.hub.Broadcast(payload)
}

// ClientCount reports connected viewers.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}
