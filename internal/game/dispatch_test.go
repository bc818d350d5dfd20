package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchroom/internal/event"
)

func TestOnEventDispatchesTypedPayloads(t *testing.T) {
	e, _, reg := newTestEngine(t)

	data, err := json.Marshal(event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})
	require.NoError(t, err)
	e.OnEvent("s1", event.Envelope{Event: event.CreateRoomName, Data: data})

	r, ok := reg.FindByPlayer("s1")
	require.True(t, ok)
	assert.Len(t, r.Players, 1)
}

func TestOnEventDropsMalformedPayload(t *testing.T) {
	e, hub, reg := newTestEngine(t)

	e.OnEvent("s1", event.Envelope{Event: event.CreateRoomName, Data: []byte(`{"profile":`)})

	_, ok := reg.FindByPlayer("s1")
	assert.False(t, ok)
	assert.Empty(t, hub.frames)
}

func TestOnEventIgnoresUnknownEvent(t *testing.T) {
	e, hub, _ := newTestEngine(t)
	e.OnEvent("s1", event.Envelope{Event: "no-such-event", Data: []byte(`{}`)})
	assert.Empty(t, hub.frames)
}

func TestOnConnectGreetsWithSessionID(t *testing.T) {
	e, hub, _ := newTestEngine(t)
	e.OnConnect("s1")

	greets := hub.byAction("connected")
	require.Len(t, greets, 1)
	assert.Equal(t, []string{"s1"}, greets[0].to)
	assert.Equal(t, map[string]string{"sessionId": "s1"}, greets[0].data)
}
