package services

import (
	"sync"

	"github.com/esgdev/amaranth/internal/core/domain"
)

// HistoryObserver receives a snapshot of the history after every
// successful append or clear. Delivery is synchronous, in
// subscription order, on the goroutine performing the mutation.
type HistoryObserver func(turns []domain.ChatTurn)

// ChatHistory is a size-bounded, FIFO-evicting sequence of chat
// turns. All operations are mutually exclusive so appends, clears,
// and snapshots never interleave inconsistently.
type ChatHistory struct {
	mu        sync.Mutex
	turns     []domain.ChatTurn
	maxSize   int
	observers []HistoryObserver
}

// NewChatHistory creates a history bounded to maxSize turns. Sizes
// below one are clamped to one.
func NewChatHistory(maxSize int) *ChatHistory {
	if maxSize < 1 {
		maxSize = 1
	}
	return &ChatHistory{
		turns:   make([]domain.ChatTurn, 0, maxSize),
		maxSize: maxSize,
	}
}

// Append adds a turn, evicting the oldest first when the history is
// full, then notifies observers.
func (h *ChatHistory) Append(turn domain.ChatTurn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.turns) >= h.maxSize {
		h.turns = h.turns[1:]
	}
	h.turns = append(h.turns, turn)
	h.notifyLocked()
}

// Snapshot returns a copy of the current turns, oldest first.
func (h *ChatHistory) Snapshot() []domain.ChatTurn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Clear removes all turns and notifies observers.
func (h *ChatHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = h.turns[:0]
	h.notifyLocked()
}

// Size returns the current number of turns.
func (h *ChatHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Subscribe registers an observer for append and clear notifications.
func (h *ChatHistory) Subscribe(obs HistoryObserver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, obs)
}

func (h *ChatHistory) snapshotLocked() []domain.ChatTurn {
	out := make([]domain.ChatTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *ChatHistory) notifyLocked() {
	for _, obs := range h.observers {
		obs(h.snapshotLocked())
	}
}
