package controller

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	matchService *service.MatchService
	logger       *log.Logger
}

func NewWebSocketController(matchService *service.MatchService, logger *log.Logger) *WebSocketController {
	if logger == nil {
		logger = log.Default()
	}
	return &WebSocketController{
		matchService: matchService,
		logger:       logger,
	}
}

// HandleConnection serves /ws/match/:matchId. The socket receives the match
// state on connect and after every move; it may send moves and destination
// queries.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	matchID := c.Params("matchId")
	playerID, _ := c.Locals("playerID").(string)

	if err := wsc.matchService.RegisterConnection(matchID, playerID, c); err != nil {
		wsc.logger.Printf("match %s: failed to register connection for %s: %v", matchID, playerID, err)
		wsc.writeError(c, err)
		c.Close()
		return
	}
	defer wsc.matchService.UnregisterConnection(matchID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsc.logger.Printf("match %s: read error from %s: %v", matchID, playerID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(matchID, playerID, fmt.Errorf("parse message: %w", err))
			continue
		}
		if err := wsc.handleMessage(matchID, playerID, msg); err != nil {
			wsc.sendError(matchID, playerID, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(matchID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var req MoveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("parse move: %w", err)
		}
		if err := validate.Struct(req); err != nil {
			return fmt.Errorf("%s", validationDetails(err))
		}
		move, err := req.Move()
		if err != nil {
			return err
		}
		// The service broadcasts the new state on success.
		_, err = wsc.matchService.PlayTurn(matchID, playerID, move)
		return err

	case ws.MessageTypeDestinations:
		var pos model.Position
		if err := json.Unmarshal(msg.Payload, &pos); err != nil {
			return fmt.Errorf("parse position: %w", err)
		}
		destinations, err := wsc.matchService.Destinations(matchID, pos)
		if err != nil {
			return err
		}
		if destinations == nil {
			destinations = []model.Position{}
		}
		reply, err := ws.NewMessage(ws.MessageTypeDestinations, map[string]interface{}{
			"from":         pos,
			"destinations": destinations,
		})
		if err != nil {
			return err
		}
		return wsc.matchService.Send(matchID, playerID, reply)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// sendError reports err to a registered connection.
func (wsc *WebSocketController) sendError(matchID, playerID string, err error) {
	if err := wsc.matchService.Send(matchID, playerID, errorMessage(err)); err != nil {
		wsc.logger.Printf("match %s: failed to send error to %s: %v", matchID, playerID, err)
	}
}

// writeError writes straight to a connection no session knows about yet.
func (wsc *WebSocketController) writeError(c service.Conn, err error) {
	if err := c.WriteJSON(errorMessage(err)); err != nil {
		wsc.logger.Printf("failed to write error: %v", err)
	}
}

func errorMessage(err error) ws.Message {
	_, code := Classify(err)
	if code == CodeInternalError {
		code = CodeInvalidRequest
	}
	msg, _ := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{
		Error: err.Error(),
		Code:  code,
	})
	return msg
}

// matchmakingConn is the part of a websocket the matchmaking handler uses.
type matchmakingConn interface {
	service.Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// HandleMatchmaking serves /ws/matchmaking: it queues the player and sends a
// single matchFound message once paired, then closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("playerID").(string)
	wsc.waitForMatch(c, playerID)
}

// waitForMatch returns only after its reader goroutine has stopped; the
// websocket package recycles c once the handler returns.
func (wsc *WebSocketController) waitForMatch(c matchmakingConn, playerID string) {
	events := make(chan string, 1)
	wsc.matchService.WaitForMatch(playerID, events)
	defer wsc.matchService.UnregisterMatchmakingChannel(playerID, events)

	// The client never speaks on this socket; reading only detects hang-ups.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		c.Close()
		<-gone
	}()

	select {
	case event, ok := <-events:
		if !ok {
			// Replaced by a newer matchmaking socket for the same player.
			return
		}
		msg := ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}
		if err := c.WriteJSON(msg); err != nil {
			wsc.logger.Printf("matchmaking: failed to notify %s: %v", playerID, err)
		}
	case <-gone:
		wsc.logger.Printf("matchmaking: %s hung up", playerID)
	}
}
