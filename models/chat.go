package models

import "time"

// Sender identifies who authored a transcript message
type Sender string

const (
	SenderUser   Sender = "user"
	SenderSystem Sender = "system"
)

// Message is one entry of the chat transcript. Never edited after creation.
type Message struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Sender    Sender       `json:"sender"`
	Timestamp time.Time    `json:"timestamp"`
	Code      string       `json:"code,omitempty"`
	Files     []FileChange `json:"files,omitempty"`
}

// HistoryItem snapshots one past generation's file set
type HistoryItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Timestamp   time.Time    `json:"timestamp"`
	IsActive    bool         `json:"isActive"`
	Files       []FileChange `json:"files"`
	Explanation string       `json:"explanation,omitempty"`
}

// Clone returns a copy whose file slice is not shared with the receiver
func (h HistoryItem) Clone() HistoryItem {
	h.Files = CloneFiles(h.Files)
	return h
}
