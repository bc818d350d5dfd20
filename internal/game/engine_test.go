package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sketchroom/internal/config"
	"sketchroom/internal/event"
	"sketchroom/internal/monitoring"
	"sketchroom/internal/room"
	"sketchroom/internal/store"
	"sketchroom/internal/words"
)

// frame is one outbound delivery recorded by the fake hub.
type frame struct {
	roomCode string
	action   string
	to       []string // nil means the whole room
	except   string
	data     interface{}
}

type fakeHub struct {
	mu     sync.Mutex
	frames []frame
}

func (f *fakeHub) record(fr frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
}

func (f *fakeHub) Broadcast(roomCode, action string, data interface{}) {
	f.record(frame{roomCode: roomCode, action: action, data: data})
}

func (f *fakeHub) BroadcastExcept(roomCode, sessionID, action string, data interface{}) {
	f.record(frame{roomCode: roomCode, action: action, except: sessionID, data: data})
}

func (f *fakeHub) SendTo(roomCode string, sessionIDs []string, action string, data interface{}) {
	f.record(frame{roomCode: roomCode, action: action, to: sessionIDs, data: data})
}

func (f *fakeHub) SendToSession(sessionID, action string, data interface{}) {
	f.record(frame{action: action, to: []string{sessionID}, data: data})
}

func (f *fakeHub) Join(sessionID, roomCode string)  {}
func (f *fakeHub) Leave(sessionID, roomCode string) {}

func (f *fakeHub) byAction(action string) []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []frame
	for _, fr := range f.frames {
		if fr.action == action {
			out = append(out, fr)
		}
	}
	return out
}

func (f *fakeHub) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeHub, *room.Registry) {
	t.Helper()
	return newTestEngineWith(t, config.Config{
		DefaultLanguage:   "english",
		DefaultMaxPlayers: 8,
		DefaultDrawTime:   10,
		DefaultRounds:     1,
		DefaultHints:      0,
		DefaultWordCount:  3,
		TurnGap:           60, // effectively never fires during a test
		ChooseTime:        60,
	})
}

func newTestEngineWith(t *testing.T, cfg config.Config) (*Engine, *fakeHub, *room.Registry) {
	t.Helper()
	bank, err := words.NewBank()
	require.NoError(t, err)
	reg := room.NewRegistry(store.NewMemoryStore(), cfg, zap.NewNop())
	hub := &fakeHub{}
	e := NewEngine(reg, bank, cfg, hub, monitoring.New(), zap.NewNop())
	t.Cleanup(e.Close)
	return e, hub, reg
}

// setupRoom creates a two-player room with a fixed secret word pool and
// returns it. s1 is the host, s2 joined second.
func setupRoom(t *testing.T, e *Engine, reg *room.Registry, secret string) *room.Room {
	t.Helper()
	e.handleCreateRoom("s1", event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})
	r, ok := reg.FindByPlayer("s1")
	require.True(t, ok)
	e.handleJoinRoom("s2", event.JoinRoom{
		Profile: event.Profile{Name: "bob", Language: "english"},
		Code:    r.Code,
	})
	e.handleSetCustomWords("s1", event.SetCustomWords{RoomCode: r.Code, Words: []string{secret}})
	e.handleSetCustomOnly("s1", event.SetCustomOnly{RoomCode: r.Code, Enabled: true})
	return r
}

func startTurn(t *testing.T, e *Engine, r *room.Room, secret string) (drawer, guesser string) {
	t.Helper()
	r.Lock()
	drawerIDs := r.Drawer.IDs()
	r.Unlock()
	require.Len(t, drawerIDs, 1)
	drawer = drawerIDs[0]
	guesser = "s1"
	if drawer == "s1" {
		guesser = "s2"
	}
	e.handleWordChosen(drawer, event.WordChosen{RoomID: r.Code, Word: secret})
	return drawer, guesser
}

func TestStartGameNeedsTwoPlayers(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	e.handleCreateRoom("s1", event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})
	r, _ := reg.FindByPlayer("s1")

	hub.reset()
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})

	r.Lock()
	assert.False(t, r.IsStarted)
	r.Unlock()

	notices := hub.byAction("message-received")
	require.NotEmpty(t, notices)
	msg := notices[len(notices)-1].data.(room.Message)
	assert.Equal(t, room.KindSystem, msg.Kind)
	assert.Equal(t, []string{"s1"}, notices[len(notices)-1].to, "failure notice goes to the requester only")
}

func TestStartGameOnlyHost(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")

	e.handleStartGame("s2", event.StartGame{RoomID: r.Code})
	r.Lock()
	defer r.Unlock()
	assert.False(t, r.IsStarted, "non-host start is silently ignored")
}

func TestStartGameAssignsLastJoinedAsDrawer(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")

	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})

	r.Lock()
	assert.True(t, r.IsStarted)
	assert.Equal(t, room.PhaseChoosing, r.Phase)
	assert.Equal(t, 1, r.CurrentTurn)
	assert.True(t, r.Drawer.Includes("s2"), "last player in join order draws first")
	r.Unlock()

	offers := hub.byAction("choose-word")
	require.Len(t, offers, 1)
	assert.Equal(t, []string{"s2"}, offers[0].to, "word candidates go to the drawer only")
}

func TestWordChosenRejectedFromNonDrawer(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})

	e.handleWordChosen("s1", event.WordChosen{RoomID: r.Code, Word: "apple"})
	r.Lock()
	defer r.Unlock()
	assert.Equal(t, room.PhaseChoosing, r.Phase)
	assert.Empty(t, r.Word)
}

func TestFullClassicGame(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})

	// Turn 1: s2 draws, s1 guesses.
	drawer, guesser := startTurn(t, e, r, "apple")
	assert.Equal(t, "s2", drawer)

	r.Lock()
	assert.Equal(t, room.PhaseDrawing, r.Phase)
	assert.Equal(t, "apple", r.Word)
	r.Unlock()

	hub.reset()
	e.handleSentMessage(guesser, event.SentMessage{RoomID: r.Code, Content: "apple"})

	found := hub.byAction("message-received")
	require.NotEmpty(t, found)
	sys := found[0].data.(room.Message)
	assert.Equal(t, room.KindSystem, sys.Kind)
	assert.Contains(t, sys.Content, "found the word")

	r.Lock()
	assert.Equal(t, room.PhaseTurnEnd, r.Phase, "all guessers done ends the turn early")
	assert.Equal(t, 100, r.Player("s1").Score)
	assert.Equal(t, 25, r.Player("s2").Score)
	assert.Equal(t, 1, r.CurrentTurn, "round not complete until everyone drew")

	// Turn 2: rotation hands the pen to s1.
	e.beginTurnLocked(r)
	r.Unlock()

	drawer, guesser = startTurn(t, e, r, "apple")
	assert.Equal(t, "s1", drawer)

	hub.reset()
	e.handleSentMessage(guesser, event.SentMessage{RoomID: r.Code, Content: "apple"})

	r.Lock()
	defer r.Unlock()
	assert.Equal(t, room.PhaseGameEnd, r.Phase)
	assert.False(t, r.IsStarted)
	assert.True(t, r.ShowScores)
	assert.Equal(t, 125, r.Player("s1").Score)
	assert.Equal(t, 125, r.Player("s2").Score)

	ends := hub.byAction("game-end")
	require.Len(t, ends, 1)
	winners := ends[0].data.(map[string]interface{})["winners"].([]room.PlayerView)
	require.Len(t, winners, 2)
	assert.Equal(t, "s1", winners[0].ID, "ties break by join order")
}

func TestCloseGuessHintVisibleOnlyToGuesser(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	_, guesser := startTurn(t, e, r, "apple")

	hub.reset()
	e.handleSentMessage(guesser, event.SentMessage{RoomID: r.Code, Content: "aple"})

	msgs := hub.byAction("message-received")
	require.Len(t, msgs, 2, "the public line plus the private hint")
	assert.Nil(t, msgs[0].to, "the close guess itself is public")
	assert.Equal(t, []string{guesser}, msgs[1].to)
	hint := msgs[1].data.(room.Message)
	assert.Equal(t, room.KindSecret, hint.Kind)
	assert.Contains(t, hint.Content, "close")

	r.Lock()
	defer r.Unlock()
	assert.Zero(t, r.Player(guesser).Score, "close guesses score nothing")
}

func TestGuessedPlayerChatIsSecretScoped(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleJoinRoom("s3", event.JoinRoom{
		Profile: event.Profile{Name: "cal", Language: "english"},
		Code:    r.Code,
	})
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	drawer, _ := startTurn(t, e, r, "apple")
	assert.Equal(t, "s3", drawer)

	// s1 solves the word, then chats: only s1, the drawer and other solved
	// players may see the line.
	e.handleSentMessage("s1", event.SentMessage{RoomID: r.Code, Content: "apple"})
	hub.reset()
	e.handleSentMessage("s1", event.SentMessage{RoomID: r.Code, Content: "that was easy"})

	msgs := hub.byAction("message-received")
	require.Len(t, msgs, 1)
	assert.ElementsMatch(t, []string{"s1", "s3"}, msgs[0].to)
	assert.Equal(t, room.KindSecret, msgs[0].data.(room.Message).Kind)
}

func TestDrawerMessagesNeverEvaluated(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	drawer, _ := startTurn(t, e, r, "apple")

	hub.reset()
	e.handleSentMessage(drawer, event.SentMessage{RoomID: r.Code, Content: "apple"})

	r.Lock()
	assert.Equal(t, room.PhaseDrawing, r.Phase, "drawer saying the word must not end the turn")
	assert.Empty(t, r.Guessed)
	r.Unlock()
	msgs := hub.byAction("message-received")
	require.Len(t, msgs, 1)
	assert.Equal(t, room.KindSecret, msgs[0].data.(room.Message).Kind)
}

func TestMouseRelayDrawerOnly(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	drawer, guesser := startTurn(t, e, r, "apple")

	hub.reset()
	stroke := event.Mouse{RoomCode: r.Code, X: 1, Y: 2, PX: 0, PY: 0, Color: "#000", StrokeWidth: 4}
	e.handleMouse(guesser, stroke)
	assert.Empty(t, hub.byAction("mouse"), "non-drawer strokes are dropped")

	e.handleMouse(drawer, stroke)
	relays := hub.byAction("mouse")
	require.Len(t, relays, 1)
	assert.Equal(t, drawer, relays[0].except, "sender excluded from the fan-out")
	assert.Equal(t, stroke, relays[0].data, "payload relayed verbatim")
}

func TestClearCanvasUnconditional(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	_, guesser := startTurn(t, e, r, "apple")

	hub.reset()
	e.handleClearCanvas(guesser, event.ClearCanvas{RoomCode: r.Code})
	assert.Len(t, hub.byAction("clear-canvas"), 1)
}

func TestRotationVisitsEveryPlayerBeforeRoundIncrements(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleJoinRoom("s3", event.JoinRoom{
		Profile: event.Profile{Name: "cal", Language: "english"},
		Code:    r.Code,
	})
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})

	seen := map[string]bool{}
	for turn := 0; turn < 3; turn++ {
		r.Lock()
		ids := r.Drawer.IDs()
		require.Len(t, ids, 1)
		assert.False(t, seen[ids[0]], "player %s drew twice in one round", ids[0])
		seen[ids[0]] = true
		if turn < 2 {
			assert.Equal(t, 1, r.CurrentTurn)
		}
		r.Phase = room.PhaseDrawing
		e.endTurnLocked(r)
		if turn < 2 {
			e.beginTurnLocked(r)
		}
		r.Unlock()
	}
	assert.Len(t, seen, 3)
	r.Lock()
	defer r.Unlock()
	assert.Equal(t, room.PhaseGameEnd, r.Phase, "one configured round, rotation done")
}

func TestCountdownTickEndsTurnAtZero(t *testing.T) {
	e, hub, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	startTurn(t, e, r, "apple")

	hub.reset()
	for i := 0; i < 10; i++ {
		e.tick(r.Code)
	}

	r.Lock()
	defer r.Unlock()
	assert.NotEqual(t, room.PhaseDrawing, r.Phase)
	assert.Zero(t, r.Player("s1").Score, "nobody guessed, nobody scores")
	assert.Zero(t, r.Player("s2").Score)
	reveals := hub.byAction("turn-end")
	require.Len(t, reveals, 1)
	assert.Equal(t, "apple", reveals[0].data.(map[string]interface{})["word"])
}

func TestDisconnectLastPlayerDestroysRoom(t *testing.T) {
	e, _, reg := newTestEngine(t)
	e.handleCreateRoom("s1", event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})
	r, _ := reg.FindByPlayer("s1")

	e.OnDisconnect("s1")
	_, ok := reg.Get(r.Code)
	assert.False(t, ok)
}

func TestDisconnectDrawerEndsTurn(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleJoinRoom("s3", event.JoinRoom{
		Profile: event.Profile{Name: "cal", Language: "english"},
		Code:    r.Code,
	})
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	drawer, _ := startTurn(t, e, r, "apple")

	e.OnDisconnect(drawer)

	r.Lock()
	defer r.Unlock()
	assert.Nil(t, r.Player(drawer))
	assert.NotEqual(t, room.PhaseDrawing, r.Phase)
	assert.False(t, r.Drawer.Includes(drawer))
}

func TestDisconnectBelowTwoPlayersEndsGame(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	startTurn(t, e, r, "apple")

	e.OnDisconnect("s2")

	r.Lock()
	defer r.Unlock()
	assert.False(t, r.IsStarted)
	assert.Equal(t, room.PhaseGameEnd, r.Phase)
}

func TestSettingsHostOnly(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")

	e.handleSetNumber("s2", event.SetRoundsName, event.SetNumber{RoomCode: r.Code, Value: 5})
	r.Lock()
	assert.NotEqual(t, 5, r.Settings.Rounds, "non-host settings change ignored")
	r.Unlock()

	e.handleSetNumber("s1", event.SetRoundsName, event.SetNumber{RoomCode: r.Code, Value: 5})
	r.Lock()
	defer r.Unlock()
	assert.Equal(t, 5, r.Settings.Rounds)
}

func TestSettingsClamped(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")

	e.handleSetNumber("s1", event.SetDrawTimeName, event.SetNumber{RoomCode: r.Code, Value: 1})
	r.Lock()
	defer r.Unlock()
	assert.Equal(t, 15, r.Settings.DrawTime)
}

func TestUnknownRoomEventsAreNoOps(t *testing.T) {
	e, hub, _ := newTestEngine(t)
	e.handleStartGame("s1", event.StartGame{RoomID: "NOSUCH"})
	e.handleSentMessage("s1", event.SentMessage{RoomID: "NOSUCH", Content: "hi"})
	e.handleMouse("s1", event.Mouse{RoomCode: "NOSUCH"})
	assert.Empty(t, hub.frames)
}

func TestSecondCreateRoomLeavesFirst(t *testing.T) {
	e, _, reg := newTestEngine(t)
	e.handleCreateRoom("s1", event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})
	e.handleCreateRoom("s1", event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})

	require.Len(t, reg.Rooms(), 1, "a session holds at most one room")

	e.OnDisconnect("s1")
	assert.Empty(t, reg.Rooms(), "no room may survive its last player")
}

func TestJoinOtherRoomLeavesFirst(t *testing.T) {
	e, _, reg := newTestEngine(t)
	e.handleCreateRoom("s1", event.CreateRoom{Profile: event.Profile{Name: "ana", Language: "english"}})
	e.handleCreateRoom("s2", event.CreateRoom{Profile: event.Profile{Name: "bob", Language: "english"}})
	r2, ok := reg.FindByPlayer("s2")
	require.True(t, ok)

	e.handleJoinRoom("s1", event.JoinRoom{
		Profile: event.Profile{Name: "ana", Language: "english"},
		Code:    r2.Code,
	})

	require.Len(t, reg.Rooms(), 1, "ana's abandoned room is destroyed")
	r2.Lock()
	defer r2.Unlock()
	assert.Len(t, r2.Players, 2)
	assert.NotNil(t, r2.Player("s1"))
}

func TestRejoinSameRoomIsNoOp(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")

	e.handleJoinRoom("s2", event.JoinRoom{
		Profile: event.Profile{Name: "bob", Language: "english"},
		Code:    r.Code,
	})

	r.Lock()
	defer r.Unlock()
	assert.Len(t, r.Players, 2, "re-sent join must not seat the player twice")
}

func TestSecretWordNeverInPublicLogBeforeTurnEnd(t *testing.T) {
	e, _, reg := newTestEngine(t)
	r := setupRoom(t, e, reg, "apple")
	e.handleStartGame("s1", event.StartGame{RoomID: r.Code})
	_, guesser := startTurn(t, e, r, "apple")

	e.handleSentMessage(guesser, event.SentMessage{RoomID: r.Code, Content: "pear"})
	e.handleSentMessage(guesser, event.SentMessage{RoomID: r.Code, Content: "apple"})

	r.Lock()
	defer r.Unlock()
	for _, m := range r.Messages {
		if m.Kind == room.KindMessage {
			assert.NotEqual(t, "apple", m.Content)
		}
	}
}
