package hub

import (
	"sync"
	"time"

	"pomodoro/internal/metrics"
	"pomodoro/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(New)

const sendBuffer = 16

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

type Service interface {
	Add(userID string, conn Conn) *Client
	Remove(c *Client)
	Publish(userID string, eventType string, payload any)
	Count() int
	CountFor(userID string) int
}

type Client struct {
	UserID string

	conn Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

// Done is closed once the client has been removed from the hub.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

type service struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	logger  logger.Logger
	metrics metrics.Metrics
}

type Params struct {
	fx.In
	Logger  logger.Logger
	Metrics metrics.Metrics
}

func New(p Params) Service {
	return &service{
		clients: make(map[string]map[*Client]struct{}),
		logger:  p.Logger,
		metrics: p.Metrics,
	}
}

// Add registers conn and starts its writer. The caller keeps reading from the
// connection and calls Remove when the read loop ends.
func (s *service) Add(userID string, conn Conn) *Client {
	c := &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.clients[userID] == nil {
		s.clients[userID] = make(map[*Client]struct{})
	}
	s.clients[userID][c] = struct{}{}
	s.mu.Unlock()

	s.metrics.WebsocketOpened()
	go s.writeLoop(c)

	return c
}

func (s *service) Remove(c *Client) {
	c.once.Do(func() {
		s.mu.Lock()
		if set, ok := s.clients[c.UserID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(s.clients, c.UserID)
			}
		}
		s.mu.Unlock()

		close(c.done)
		c.conn.Close()
		s.metrics.WebsocketClosed()
	})
}

// Publish fans the event out to every connection of userID. A connection
// whose buffer is full is dropped rather than blocking the publisher.
func (s *service) Publish(userID string, eventType string, payload any) {
	e := Event{Type: eventType, Payload: payload, At: time.Now().UTC()}

	s.mu.RLock()
	targets := make([]*Client, 0, len(s.clients[userID]))
	for c := range s.clients[userID] {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- e:
		case <-c.done:
		default:
			s.logger.Warn("dropping slow websocket client", zap.String("user_id", userID))
			s.Remove(c)
		}
	}
}

func (s *service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, set := range s.clients {
		n += len(set)
	}

	return n
}

func (s *service) CountFor(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.clients[userID])
}

func (s *service) writeLoop(c *Client) {
	for {
		select {
		case <-c.done:
			return
		case e := <-c.send:
			if err := c.conn.WriteJSON(e); err != nil {
				s.logger.Debug("websocket write failed", zap.String("user_id", c.UserID), zap.Error(err))
				s.Remove(c)
				return
			}
		}
	}
}
