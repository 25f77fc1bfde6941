package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// EventType represents the type of notification event
type EventType string

const (
	EventConnected           EventType = "connected"
	EventGenerationCompleted EventType = "generation-completed"
	EventGenerationError     EventType = "generation-error"
	EventHistoryChanged      EventType = "history-changed"
	EventGitHubConnected     EventType = "github-connected"
	EventGitHubDisconnected  EventType = "github-disconnected"
)

// Toast is the user-visible part of an event
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"` // "default" or "destructive"
}

// Event represents a notification event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Toast     *Toast    `json:"toast,omitempty"`
	Data      any       `json:"data,omitempty"`

	// Session limits delivery to one browser session; empty means everyone
	Session string `json:"-"`
}

// VisibleTo reports whether the event may be sent to browser session sid
func (e Event) VisibleTo(sid string) bool {
	return e.Session == "" || e.Session == sid
}

// Service manages SSE subscriptions and event broadcasting
type Service struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe creates a new subscription channel.
// Returns the event channel and an unsubscribe function.
func (s *Service) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 10)

	s.mu.Lock()
	if s.closed {
		close(ch)
	} else {
		s.subscribers[ch] = struct{}{}
	}
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// Only close if the channel is still in subscribers map
		if _, exists := s.subscribers[ch]; exists {
			delete(s.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Notify broadcasts an event to all subscribers. Slow subscribers whose
// buffer is full miss the event.
func (s *Service) Notify(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// NotifyGenerationCompleted sends a generation-completed event
func (s *Service) NotifyGenerationCompleted(generationID string, fileCount int) {
	s.Notify(Event{
		Type: EventGenerationCompleted,
		Toast: &Toast{
			Title:       "Código generado",
			Description: fmt.Sprintf("Se han generado %d archivos.", fileCount),
		},
		Data: map[string]interface{}{
			"generationId": generationID,
			"files":        fileCount,
		},
	})
}

// NotifyGenerationError sends a generation-error event. The toast never
// carries the error text; callers log it.
func (s *Service) NotifyGenerationError(err error) {
	description := "Por favor, inténtalo de nuevo."
	if errors.Is(err, context.DeadlineExceeded) {
		description = "La generación tardó demasiado. Por favor, inténtalo de nuevo."
	}
	s.Notify(Event{
		Type: EventGenerationError,
		Toast: &Toast{
			Title:       "Error al generar el código",
			Description: description,
			Variant:     "destructive",
		},
	})
}

// NotifyHistoryChanged sends a history-changed event carrying the active item
func (s *Service) NotifyHistoryChanged(activeID string) {
	s.Notify(Event{
		Type: EventHistoryChanged,
		Data: map[string]interface{}{
			"activeId": activeID,
		},
	})
}

// NotifyGitHubConnected sends a github-connected event to browser session sid
func (s *Service) NotifyGitHubConnected(sid, login string) {
	s.Notify(Event{
		Type:    EventGitHubConnected,
		Session: sid,
		Toast: &Toast{
			Title:       "¡Conexión exitosa!",
			Description: "Conectado como @" + login,
		},
	})
}

// NotifyGitHubDisconnected sends a github-disconnected event to browser
// session sid
func (s *Service) NotifyGitHubDisconnected(sid string) {
	s.Notify(Event{
		Type:    EventGitHubDisconnected,
		Session: sid,
		Toast: &Toast{
			Title:       "Desconectado",
			Description: "Tu cuenta de GitHub ha sido desconectada correctamente.",
		},
	})
}

// Shutdown closes every subscriber channel; later subscriptions receive a
// closed channel
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Event]struct{})
}

// SubscriberCount returns the number of active subscribers
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
