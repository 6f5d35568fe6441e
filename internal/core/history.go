package core

import (
	"sync"

	"github.com/dkeye/commcall/internal/domain"
)

// History is an append-only bounded buffer of chat messages shared by
// every call. Once full the oldest entry is evicted first. Replay to
// newcomers is not room-scoped; see the design notes.
type History struct {
	mu    sync.Mutex
	buf   []domain.ChatMessage
	start int
	count int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]domain.ChatMessage, capacity)}
}

func (h *History) Append(msg domain.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = msg
		h.count++
		return
	}
	// Full: overwrite the head.
	h.buf[h.start] = msg
	h.start = (h.start + 1) % len(h.buf)
}

// Recent returns the last limit messages in chronological order.
func (h *History) Recent(limit int) []domain.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.ChatMessage, 0, n)
	for i := h.count - n; i < h.count; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
