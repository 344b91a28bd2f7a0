package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/ws"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type connection struct {
	conn Conn
	mu   sync.Mutex // websocket writers are not safe for concurrent use
}

func (c *connection) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Session is one hosted match: the rules engine plus the seats, clocks and
// observers around it. All engine access goes through mu.
type Session struct {
	ID     string
	mu     sync.Mutex
	match  *model.Match
	seats  [2]string // player IDs, white then black
	clocks [2]*model.Clock
	logger *log.Logger

	connMu      sync.RWMutex
	connections map[string]*connection // playerID -> connection
}

type ClientPlayer struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    model.Color `json:"color"`
	Rating   *int        `json:"rating,omitempty"`
	TimeLeft int64       `json:"timeLeft"` // milliseconds
	TimeUsed int64       `json:"timeUsed"` // milliseconds
}

type CapturedPieces struct {
	White []model.Piece `json:"white"`
	Black []model.Piece `json:"black"`
}

// SessionState is the JSON view of a session sent to clients.
type SessionState struct {
	ID             string            `json:"matchId"`
	Board          model.Snapshot    `json:"board"`
	ToMove         model.Color       `json:"toMove"`
	MoveHistory    []model.Move      `json:"moveHistory"`
	CapturedPieces CapturedPieces    `json:"capturedPieces"`
	LastMove       *model.SimpleMove `json:"lastMove"`
	Players        struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

func NewSession(id string, clockLimit time.Duration, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		ID:          id,
		match:       model.NewMatch(model.WithLogger(logger)),
		clocks:      [2]*model.Clock{model.NewClock(clockLimit), model.NewClock(clockLimit)},
		logger:      logger,
		connections: make(map[string]*connection),
	}
}

// AddPlayer seats playerID, white first. Joining again returns the seat
// already held.
func (s *Session) AddPlayer(playerID string) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if color, ok := s.seatOf(playerID); ok {
		return color, nil
	}
	for i, seat := range s.seats {
		if seat != "" {
			continue
		}
		s.seats[i] = playerID
		s.logger.Printf("match %s: player %s seated as %s", s.ID, playerID, colorOfSeat(i))
		if s.seats[0] != "" && s.seats[1] != "" {
			s.clocks[0].Start()
		}
		return colorOfSeat(i), nil
	}
	return "", fmt.Errorf("%w: %s", ErrMatchFull, s.ID)
}

func colorOfSeat(i int) model.Color {
	if i == 0 {
		return model.White
	}
	return model.Black
}

func seatOfColor(c model.Color) int {
	if c == model.White {
		return 0
	}
	return 1
}

func (s *Session) seatOf(playerID string) (model.Color, bool) {
	for i, seat := range s.seats {
		if seat != "" && seat == playerID {
			return colorOfSeat(i), true
		}
	}
	return "", false
}

func (s *Session) IsSeated(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seatOf(playerID)
	return ok
}

// HasOpenSeat reports whether someone can still join; spectators are
// admitted only while it does.
func (s *Session) HasOpenSeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats[0] == "" || s.seats[1] == ""
}

// PlayTurn plays a move on behalf of playerID, who must hold the seat of the
// side to move.
func (s *Session) PlayTurn(playerID string, from, to model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	color, ok := s.seatOf(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}
	if color != s.match.CurrentPlayerColor() {
		return fmt.Errorf("%s to move: %w", s.match.CurrentPlayerColor(), model.ErrWrongTurn)
	}
	if err := s.match.PlayTurn(from, to); err != nil {
		return err
	}

	s.clocks[seatOfColor(color)].Stop()
	s.clocks[seatOfColor(color.Opposite())].Start()
	return nil
}

func (s *Session) Destinations(pos model.Position) []model.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.LegalDestinations(pos)
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := s.match.Players()
	state := SessionState{
		ID:          s.ID,
		Board:       s.match.BoardSnapshot(),
		ToMove:      s.match.CurrentPlayerColor(),
		MoveHistory: s.match.Moves(),
		CapturedPieces: CapturedPieces{
			White: append([]model.Piece{}, players[0].Captured...),
			Black: append([]model.Piece{}, players[1].Captured...),
		},
		LastMove: s.match.LastMove(),
	}
	state.Players.White = s.clientPlayer(0, players[0])
	state.Players.Black = s.clientPlayer(1, players[1])
	return state
}

func (s *Session) clientPlayer(seat int, p *model.Player) ClientPlayer {
	return ClientPlayer{
		ID:       s.seats[seat],
		Name:     p.DisplayName(),
		Color:    p.Color,
		Rating:   p.Rating,
		TimeLeft: s.clocks[seat].Remaining().Milliseconds(),
		TimeUsed: s.clocks[seat].Used().Milliseconds(),
	}
}

// RegisterConnection attaches an observer. Seated players may always
// connect; anyone else only while a seat is open. A second connection for
// the same player is refused; the caller closes it.
func (s *Session) RegisterConnection(playerID string, conn Conn) error {
	if !s.IsSeated(playerID) && !s.HasOpenSeat() {
		return fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}

	s.connMu.Lock()
	if _, exists := s.connections[playerID]; exists {
		s.connMu.Unlock()
		s.logger.Printf("match %s: rejecting duplicate connection for %s", s.ID, playerID)
		return fmt.Errorf("%w: %s", ErrAlreadyConnected, playerID)
	}
	s.connections[playerID] = &connection{conn: conn}
	s.connMu.Unlock()

	s.Broadcast()
	return nil
}

// UnregisterConnection forgets conn. A newer connection registered for the
// same player is left alone.
func (s *Session) UnregisterConnection(playerID string, conn Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if c, ok := s.connections[playerID]; ok && c.conn == conn {
		delete(s.connections, playerID)
	}
}

// Send writes msg to playerID's connection only.
func (s *Session) Send(playerID string, msg ws.Message) error {
	s.connMu.RLock()
	c, ok := s.connections[playerID]
	s.connMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: no connection for %s", ErrNotSeated, playerID)
	}
	return c.writeJSON(msg)
}

// Broadcast sends the current state to every connection, dropping and
// closing those that fail.
func (s *Session) Broadcast() {
	payload, err := json.Marshal(s.State())
	if err != nil {
		s.logger.Printf("match %s: failed to marshal state: %v", s.ID, err)
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: json.RawMessage(payload)}

	s.connMu.RLock()
	active := make(map[string]*connection, len(s.connections))
	for playerID, c := range s.connections {
		active[playerID] = c
	}
	s.connMu.RUnlock()

	for playerID, c := range active {
		if err := c.writeJSON(msg); err != nil {
			s.logger.Printf("match %s: failed to send state to %s: %v", s.ID, playerID, err)
			s.UnregisterConnection(playerID, c.conn)
			c.conn.Close()
		}
	}
}
