package core

import "encoding/json"

// History is the bounded chat replay buffer. Message bodies are opaque to the
// relay; they are stored and replayed byte-for-byte. When the buffer is full
// the oldest message is evicted first.
type History struct {
	limit    int
	messages []json.RawMessage
}

// DefaultHistoryLimit matches the buffer the launcher UI expects on hello.
const DefaultHistoryLimit = 100

// NewHistory constructs a buffer retaining at most limit messages.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append stores a message, evicting the oldest when over capacity.
func (h *History) Append(msg json.RawMessage) {
	h.messages = append(h.messages, msg)
	if len(h.messages) > h.limit {
		h.messages = h.messages[len(h.messages)-h.limit:]
	}
}

// Snapshot returns the retained messages, oldest first. The returned slice is
// a copy; appends after the call do not affect it.
func (h *History) Snapshot() []json.RawMessage {
	out := make([]json.RawMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	return len(h.messages)
}
