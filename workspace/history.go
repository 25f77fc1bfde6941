package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yaguaretech/builder/models"
)

// ErrHistoryNotFound is returned when selecting an unknown history item
var ErrHistoryNotFound = errors.New("history item not found")

// History is the append-only list of past generations. At most one item is
// active at a time.
type History struct {
	mu    sync.RWMutex
	items []models.HistoryItem
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{}
}

// Add appends item and makes it the only active one
func (h *History) Add(item models.HistoryItem) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.items {
		h.items[i].IsActive = false
	}
	item = item.Clone()
	item.IsActive = true
	h.items = append(h.items, item)
}

// Select activates the item with id and returns a copy of it
func (h *History) Select(id string) (models.HistoryItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := -1
	for i := range h.items {
		if h.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.HistoryItem{}, fmt.Errorf("%w: %s", ErrHistoryNotFound, id)
	}

	for i := range h.items {
		h.items[i].IsActive = i == idx
	}
	return h.items[idx].Clone(), nil
}

// Items returns copies of all items, oldest first
func (h *History) Items() []models.HistoryItem {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.HistoryItem, len(h.items))
	for i, item := range h.items {
		out[i] = item.Clone()
	}
	return out
}

// Active returns the active item, if any
func (h *History) Active() (models.HistoryItem, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, item := range h.items {
		if item.IsActive {
			return item.Clone(), true
		}
	}
	return models.HistoryItem{}, false
}
