package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esgdev/amaranth/internal/core/domain"
)

func turn(text string) domain.ChatTurn {
	return domain.ChatTurn{Text: text, Role: domain.RoleUser}
}

func TestChatHistory_AppendAndSnapshot(t *testing.T) {
	h := NewChatHistory(5)

	h.Append(turn("one"))
	h.Append(turn("two"))

	snap := h.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "one", snap[0].Text)
	assert.Equal(t, "two", snap[1].Text)
}

func TestChatHistory_EvictsOldestFirst(t *testing.T) {
	const maxSize = 3
	h := NewChatHistory(maxSize)

	for i := 0; i < maxSize+2; i++ {
		h.Append(turn(fmt.Sprintf("turn-%d", i)))
	}

	snap := h.Snapshot()
	require.Len(t, snap, maxSize)
	assert.Equal(t, "turn-2", snap[0].Text)
	assert.Equal(t, "turn-4", snap[2].Text)
}

func TestChatHistory_Clear(t *testing.T) {
	h := NewChatHistory(3)
	h.Append(turn("one"))
	h.Clear()

	assert.Empty(t, h.Snapshot())
	assert.Zero(t, h.Size())
}

func TestChatHistory_ObserverNotifications(t *testing.T) {
	h := NewChatHistory(3)

	var notifications [][]domain.ChatTurn
	h.Subscribe(func(turns []domain.ChatTurn) {
		notifications = append(notifications, turns)
	})

	h.Append(turn("one"))
	h.Append(turn("two"))
	h.Clear()

	// Exactly one notification per append/clear.
	require.Len(t, notifications, 3)
	assert.Len(t, notifications[0], 1)
	assert.Len(t, notifications[1], 2)
	assert.Empty(t, notifications[2])
}

func TestChatHistory_ObserverOrder(t *testing.T) {
	h := NewChatHistory(3)

	var order []string
	h.Subscribe(func([]domain.ChatTurn) { order = append(order, "first") })
	h.Subscribe(func([]domain.ChatTurn) { order = append(order, "second") })

	h.Append(turn("one"))

	require.Equal(t, []string{"first", "second"}, order)
}

func TestChatHistory_SnapshotIsACopy(t *testing.T) {
	h := NewChatHistory(3)
	h.Append(turn("one"))

	snap := h.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "one", h.Snapshot()[0].Text)
}
