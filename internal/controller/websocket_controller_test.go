package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/ws"
)

type recordingConn struct {
	mu       sync.Mutex
	messages []ws.Message
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := v.(ws.Message)
	if !ok {
		return fmt.Errorf("unexpected %T", v)
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) lastOfType(t *testing.T, typ ws.MessageType) ws.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Type == typ {
			return c.messages[i]
		}
	}
	t.Fatalf("no %s message among %d", typ, len(c.messages))
	return ws.Message{}
}

func rawMessage(t *testing.T, typ ws.MessageType, payload string) ws.Message {
	t.Helper()
	return ws.Message{Type: typ, Payload: json.RawMessage(payload)}
}

func TestHandleMessage(t *testing.T) {
	ts := newTestServer(t)
	matchID := ts.seatedMatch(t)
	wsc := NewWebSocketController(ts.svc, model.DiscardLogger())

	aliceConn, bobConn := &recordingConn{}, &recordingConn{}
	if err := ts.svc.RegisterConnection(matchID, alice, aliceConn); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if err := ts.svc.RegisterConnection(matchID, bob, bobConn); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	move := rawMessage(t, ws.MessageTypeMove, `{"from":{"row":6,"col":3},"to":{"row":4,"col":3}}`)
	if err := wsc.handleMessage(matchID, alice, move); err != nil {
		t.Fatalf("move: %v", err)
	}

	var state service.SessionState
	if err := json.Unmarshal(bobConn.lastOfType(t, ws.MessageTypeGameState).Payload, &state); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if state.ToMove != model.Black || state.LastMove == nil || state.LastMove.To != (model.Position{Row: 4, Col: 3}) {
		t.Errorf("bob saw toMove=%s lastMove=%v; want black after d2d4", state.ToMove, state.LastMove)
	}

	query := rawMessage(t, ws.MessageTypeDestinations, `{"row":1,"col":4}`)
	if err := wsc.handleMessage(matchID, bob, query); err != nil {
		t.Fatalf("destinations: %v", err)
	}
	var reply struct {
		Destinations []model.Position `json:"destinations"`
	}
	if err := json.Unmarshal(bobConn.lastOfType(t, ws.MessageTypeDestinations).Payload, &reply); err != nil {
		t.Fatalf("decode destinations: %v", err)
	}
	if len(reply.Destinations) != 2 {
		t.Errorf("e7 destinations = %v; want two", reply.Destinations)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	ts := newTestServer(t)
	matchID := ts.seatedMatch(t)
	wsc := NewWebSocketController(ts.svc, model.DiscardLogger())

	tests := []struct {
		name     string
		playerID string
		msg      ws.Message
		wantErr  error
	}{
		{"black first", bob, rawMessage(t, ws.MessageTypeMove, `{"fromSquare":"e7","toSquare":"e5"}`), model.ErrWrongTurn},
		{"illegal", alice, rawMessage(t, ws.MessageTypeMove, `{"fromSquare":"e2","toSquare":"e5"}`), model.ErrIllegalDestination},
		{"bad square", alice, rawMessage(t, ws.MessageTypeMove, `{"fromSquare":"i2","toSquare":"e4"}`), model.ErrInvalidCoordinate},
		{"off-board query", alice, rawMessage(t, ws.MessageTypeDestinations, `{"row":-1,"col":0}`), model.ErrInvalidCoordinate},
		{"unknown type", alice, rawMessage(t, ws.MessageType("resign"), `{}`), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wsc.handleMessage(matchID, tt.playerID, tt.msg)
			if err == nil {
				t.Fatal("handleMessage succeeded; want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	msg := errorMessage(fmt.Errorf("wrapped: %w", model.ErrWrongTurn))
	if msg.Type != ws.MessageTypeError {
		t.Fatalf("type = %s; want %s", msg.Type, ws.MessageTypeError)
	}
	var payload ws.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Code != CodeWrongTurn {
		t.Errorf("code = %s; want %s", payload.Code, CodeWrongTurn)
	}

	if got := errorMessage(errors.New("parse message")); got.Type != ws.MessageTypeError {
		t.Errorf("type = %s; want %s", got.Type, ws.MessageTypeError)
	}
}

// fakeSocket blocks in ReadMessage until the client hangs up or the server
// closes it.
type fakeSocket struct {
	recordingConn
	closed    chan struct{}
	closeOnce sync.Once
	hangup    chan struct{}
	hangOnce  sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{closed: make(chan struct{}), hangup: make(chan struct{})}
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	select {
	case <-s.closed:
		return 0, nil, errors.New("use of closed connection")
	case <-s.hangup:
		return 0, nil, errors.New("websocket: close 1001 (going away)")
	}
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSocket) hangUp() {
	s.hangOnce.Do(func() { close(s.hangup) })
}

func (s *fakeSocket) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// serve runs the matchmaking handler for playerID on sock and returns a
// channel closed when the handler returns.
func serve(wsc *WebSocketController, sock *fakeSocket, playerID string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wsc.waitForMatch(sock, playerID)
	}()
	return done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitDone(t *testing.T, what string, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func newMatchmakingService(t *testing.T, interval time.Duration) *service.MatchService {
	t.Helper()
	manager := service.NewMatchManager(service.ManagerConfig{
		ClockLimit:          time.Minute,
		MatchmakingInterval: interval,
		Logger:              model.DiscardLogger(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go manager.Run(ctx)
	return service.NewMatchService(manager)
}

func TestMatchmakingSocketDeliversMatch(t *testing.T) {
	svc := newMatchmakingService(t, 10*time.Millisecond)
	wsc := NewWebSocketController(svc, model.DiscardLogger())

	aliceSock, bobSock := newFakeSocket(), newFakeSocket()
	aliceDone := serve(wsc, aliceSock, alice)
	bobDone := serve(wsc, bobSock, bob)
	waitDone(t, "alice's handler", aliceDone)
	waitDone(t, "bob's handler", bobDone)

	var matchIDs []string
	for name, sock := range map[string]*fakeSocket{"alice": aliceSock, "bob": bobSock} {
		if !sock.isClosed() {
			t.Errorf("%s's socket was left open", name)
		}
		var event service.MatchFoundEvent
		if err := json.Unmarshal(sock.lastOfType(t, ws.MessageTypeMatchFound).Payload, &event); err != nil {
			t.Fatalf("decode %s's event: %v", name, err)
		}
		matchIDs = append(matchIDs, event.MatchID)
	}
	if matchIDs[0] == "" || matchIDs[0] != matchIDs[1] {
		t.Errorf("match IDs = %v; want one shared match", matchIDs)
	}
	if _, err := svc.GetMatchState(matchIDs[0]); err != nil {
		t.Errorf("GetMatchState: %v", err)
	}
}

func TestMatchmakingSocketHangUp(t *testing.T) {
	svc := newMatchmakingService(t, time.Hour)
	wsc := NewWebSocketController(svc, model.DiscardLogger())

	sock := newFakeSocket()
	done := serve(wsc, sock, alice)
	waitFor(t, "alice to be queued", func() bool { return svc.QueueSize() == 1 })

	sock.hangUp()
	waitDone(t, "the handler", done)
	if !sock.isClosed() {
		t.Error("socket was not closed")
	}
	if svc.QueueSize() != 0 {
		t.Errorf("QueueSize() = %d; want 0 after hanging up", svc.QueueSize())
	}
}

func TestMatchmakingSocketReplaced(t *testing.T) {
	svc := newMatchmakingService(t, time.Hour)
	wsc := NewWebSocketController(svc, model.DiscardLogger())

	first := newFakeSocket()
	firstDone := serve(wsc, first, alice)
	waitFor(t, "alice to be queued", func() bool { return svc.QueueSize() == 1 })

	second := newFakeSocket()
	secondDone := serve(wsc, second, alice)
	waitDone(t, "the replaced handler", firstDone)
	if !first.isClosed() {
		t.Error("replaced socket was not closed")
	}
	if svc.QueueSize() != 1 {
		t.Errorf("QueueSize() = %d; want alice still queued", svc.QueueSize())
	}

	second.hangUp()
	waitDone(t, "the second handler", secondDone)
	if svc.QueueSize() != 0 {
		t.Errorf("QueueSize() = %d; want 0 once the last socket hung up", svc.QueueSize())
	}
}

func TestMatchmakingSocketAfterRESTJoin(t *testing.T) {
	svc := newMatchmakingService(t, time.Hour)
	wsc := NewWebSocketController(svc, model.DiscardLogger())

	if err := svc.JoinMatchmaking(alice); err != nil {
		t.Fatalf("JoinMatchmaking: %v", err)
	}

	sock := newFakeSocket()
	done := serve(wsc, sock, alice)
	sock.hangUp()
	waitDone(t, "the handler", done)

	if svc.QueueSize() != 1 {
		t.Errorf("QueueSize() = %d; want alice still queued from the REST join", svc.QueueSize())
	}
	if len(sock.messages) != 0 {
		t.Errorf("socket got %d messages; want none", len(sock.messages))
	}
}
