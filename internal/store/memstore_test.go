package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchroom/internal/room"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()

	_, ok := m.GetRoom("ABC123")
	assert.False(t, ok)

	m.SaveRoom(&room.Room{Code: "ABC123"})
	got, ok := m.GetRoom("ABC123")
	require.True(t, ok)
	assert.Equal(t, "ABC123", got.Code)
	assert.Len(t, m.Rooms(), 1)

	m.DeleteRoom("ABC123")
	_, ok = m.GetRoom("ABC123")
	assert.False(t, ok)
	assert.Empty(t, m.Rooms())
}
