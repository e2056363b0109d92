package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer = 16
	readLimit  = 4096
	pongWait   = 60 * time.Second
)

// Subscriber is one websocket connection receiving notifications.
type Subscriber struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*Subscriber)
}

func newSubscriber(id string, ws *websocket.Conn, pingInterval, writeTimeout time.Duration, logger *zap.Logger, onClose func(*Subscriber)) *Subscriber {
	return &Subscriber{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

// ID returns the subscriber identifier.
func (s *Subscriber) ID() string {
	return s.id
}

// Start runs the write pump in the background and reads until the peer goes away.
func (s *Subscriber) Start() {
	go s.writePump()
	s.readPump()
}

// readPump only consumes control frames; clients never send data.
func (s *Subscriber) readPump() {
	defer s.Close()
	s.ws.SetReadLimit(readLimit)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			s.logger.Debug("notification subscriber read closed", zap.String("subscriber_id", s.id), zap.Error(err))
			return
		}
	}
}

func (s *Subscriber) writePump() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			_ = s.write(websocket.CloseMessage, []byte{})
			_ = s.ws.Close()
			return
		case msg := <-s.send:
			if err := s.write(websocket.TextMessage, msg); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		}
	}
}

// Send enqueues a message. Full buffers and closed subscribers drop it.
func (s *Subscriber) Send(msg []byte) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.send <- msg:
	default:
		s.logger.Warn("dropping notification, buffer full", zap.String("subscriber_id", s.id))
	}
}

func (s *Subscriber) write(messageType int, data []byte) error {
	_ = s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.ws.WriteMessage(messageType, data)
}

// Close stops the pumps once and unregisters the subscriber.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}
