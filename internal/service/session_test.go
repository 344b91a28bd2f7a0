package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/google/go-cmp/cmp"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool
	failing  bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) last(t *testing.T) SessionState {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		t.Fatal("no messages received")
	}
	msg := c.messages[len(c.messages)-1]
	if msg.Type != ws.MessageTypeGameState {
		t.Fatalf("message type = %s; want %s", msg.Type, ws.MessageTypeGameState)
	}
	var state SessionState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func newTestSession() *Session {
	return NewSession("m1", 5*time.Minute, model.DiscardLogger())
}

func TestSessionAddPlayer(t *testing.T) {
	s := newTestSession()

	steps := []struct {
		playerID  string
		wantColor model.Color
		wantErr   error
	}{
		{"alice", model.White, nil},
		{"alice", model.White, nil},
		{"bob", model.Black, nil},
		{"carol", "", ErrMatchFull},
	}
	for _, step := range steps {
		color, err := s.AddPlayer(step.playerID)
		if !errors.Is(err, step.wantErr) {
			t.Fatalf("AddPlayer(%s) error = %v; want %v", step.playerID, err, step.wantErr)
		}
		if color != step.wantColor {
			t.Errorf("AddPlayer(%s) = %q; want %q", step.playerID, color, step.wantColor)
		}
	}
	if s.HasOpenSeat() {
		t.Error("HasOpenSeat() = true with both seats taken")
	}
	if !s.clocks[0].Running() || s.clocks[1].Running() {
		t.Error("white's clock should run once both players are seated")
	}
}

func TestSessionPlayTurn(t *testing.T) {
	s := newTestSession()
	mustSeat(t, s, "alice", "bob")

	e2, e4 := model.Position{Row: 6, Col: 4}, model.Position{Row: 4, Col: 4}
	e7, e5 := model.Position{Row: 1, Col: 4}, model.Position{Row: 3, Col: 4}

	if err := s.PlayTurn("mallory", e2, e4); !errors.Is(err, ErrNotSeated) {
		t.Errorf("PlayTurn by a stranger = %v; want %v", err, ErrNotSeated)
	}
	if err := s.PlayTurn("bob", e7, e5); !errors.Is(err, model.ErrWrongTurn) {
		t.Errorf("PlayTurn by black first = %v; want %v", err, model.ErrWrongTurn)
	}
	if err := s.PlayTurn("alice", e7, e5); !errors.Is(err, model.ErrWrongTurn) {
		t.Errorf("PlayTurn moving black's pawn = %v; want %v", err, model.ErrWrongTurn)
	}
	if err := s.PlayTurn("alice", e2, e4); err != nil {
		t.Fatalf("PlayTurn e2e4: %v", err)
	}
	if s.clocks[0].Running() || !s.clocks[1].Running() {
		t.Error("clocks did not switch to black after white moved")
	}

	state := s.State()
	if state.ToMove != model.Black {
		t.Errorf("ToMove = %s; want black", state.ToMove)
	}
	if diff := cmp.Diff(&model.SimpleMove{From: e2, To: e4}, state.LastMove); diff != "" {
		t.Errorf("LastMove mismatch (-want +got):\n%s", diff)
	}
	if state.Players.White.ID != "alice" || state.Players.Black.ID != "bob" {
		t.Errorf("players = %s, %s; want alice, bob", state.Players.White.ID, state.Players.Black.ID)
	}
	if state.Board[4][4] == nil || *state.Board[4][4] != (model.Piece{Kind: model.Pawn, Color: model.White}) {
		t.Errorf("board[4][4] = %v; want white pawn", state.Board[4][4])
	}
}

func TestSessionBroadcast(t *testing.T) {
	s := newTestSession()
	mustSeat(t, s, "alice", "bob")

	alice, bob := &fakeConn{}, &fakeConn{}
	if err := s.RegisterConnection("alice", alice); err != nil {
		t.Fatalf("RegisterConnection(alice): %v", err)
	}
	if err := s.RegisterConnection("bob", bob); err != nil {
		t.Fatalf("RegisterConnection(bob): %v", err)
	}

	if err := s.PlayTurn("alice", model.Position{Row: 6, Col: 3}, model.Position{Row: 4, Col: 3}); err != nil {
		t.Fatalf("PlayTurn: %v", err)
	}
	s.Broadcast()

	for name, conn := range map[string]*fakeConn{"alice": alice, "bob": bob} {
		if got := conn.last(t).ToMove; got != model.Black {
			t.Errorf("%s saw ToMove = %s; want black", name, got)
		}
	}
}

func TestSessionRegisterConnection(t *testing.T) {
	t.Run("spectator refused once seats are full", func(t *testing.T) {
		s := newTestSession()
		mustSeat(t, s, "alice", "bob")
		if err := s.RegisterConnection("eve", &fakeConn{}); !errors.Is(err, ErrNotSeated) {
			t.Errorf("RegisterConnection(eve) = %v; want %v", err, ErrNotSeated)
		}
	})

	t.Run("duplicate connection is refused", func(t *testing.T) {
		s := newTestSession()
		mustSeat(t, s, "alice")
		first, second := &fakeConn{}, &fakeConn{}
		if err := s.RegisterConnection("alice", first); err != nil {
			t.Fatalf("first RegisterConnection: %v", err)
		}
		if err := s.RegisterConnection("alice", second); !errors.Is(err, ErrAlreadyConnected) {
			t.Fatalf("second RegisterConnection = %v; want %v", err, ErrAlreadyConnected)
		}
		if err := s.Send("alice", ws.Message{Type: ws.MessageTypeError}); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if len(second.messages) != 0 || len(first.messages) != 2 {
			t.Errorf("messages first=%d second=%d; want 2, 0", len(first.messages), len(second.messages))
		}
	})

	t.Run("failing connection is dropped", func(t *testing.T) {
		s := newTestSession()
		mustSeat(t, s, "alice")
		broken := &fakeConn{failing: true}
		if err := s.RegisterConnection("alice", broken); err != nil {
			t.Fatalf("RegisterConnection: %v", err)
		}
		s.connMu.RLock()
		_, still := s.connections["alice"]
		s.connMu.RUnlock()
		if still {
			t.Error("failing connection was not unregistered")
		}
		broken.mu.Lock()
		closed := broken.closed
		broken.mu.Unlock()
		if !closed {
			t.Error("failing connection was not closed")
		}
	})

	t.Run("unregister leaves a newer connection alone", func(t *testing.T) {
		s := newTestSession()
		mustSeat(t, s, "alice")
		old, current := &fakeConn{}, &fakeConn{}
		if err := s.RegisterConnection("alice", old); err != nil {
			t.Fatalf("RegisterConnection(old): %v", err)
		}
		s.UnregisterConnection("alice", old)
		if err := s.RegisterConnection("alice", current); err != nil {
			t.Fatalf("RegisterConnection(current): %v", err)
		}
		s.UnregisterConnection("alice", old)
		if err := s.Send("alice", ws.Message{Type: ws.MessageTypeError}); err != nil {
			t.Errorf("Send after a stale unregister: %v", err)
		}
	})
}

func mustSeat(t *testing.T, s *Session, playerIDs ...string) {
	t.Helper()
	for _, id := range playerIDs {
		if _, err := s.AddPlayer(id); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
}
