package workspace

import (
	"sync"

	"github.com/yaguaretech/builder/models"
)

// WelcomeMessage seeds every transcript
const WelcomeMessage = "👋 ¡Bienvenido! Estoy aquí para ayudarte a crear aplicaciones web. ¿Qué te gustaría construir hoy?"

// ApologyMessage replaces the answer of a failed generation
const ApologyMessage = "Lo siento, ha ocurrido un error al generar el código. Por favor, inténtalo de nuevo."

// Transcript is the ordered, append-only chat log
type Transcript struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewTranscript creates a transcript holding only the welcome message
func NewTranscript(welcome models.Message) *Transcript {
	return &Transcript{messages: []models.Message{welcome}}
}

// Append adds a message at the end
func (t *Transcript) Append(m models.Message) {
	m.Files = models.CloneFiles(m.Files)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the transcript in order
func (t *Transcript) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Message, len(t.messages))
	for i, m := range t.messages {
		m.Files = models.CloneFiles(m.Files)
		out[i] = m
	}
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
