package notify

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP requests to notification subscriptions.
type Server struct {
	hub          *Hub
	logger       *zap.Logger
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds the websocket endpoint for hub.
func NewServer(hub *Hub, pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub:          hub,
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWS is the handler for /ws/notifications.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := newSubscriber(uuid.NewString(), conn, s.pingInterval, s.writeTimeout, s.logger, s.hub.Remove)
	s.hub.Add(sub)
	s.logger.Info("notification subscriber connected", zap.String("subscriber_id", sub.ID()))

	go sub.Start()
}
