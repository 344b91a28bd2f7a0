package service

import (
	"fmt"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/google/uuid"
)

// MatchService is the facade controllers call.
type MatchService struct {
	manager *MatchManager
}

func NewMatchService(manager *MatchManager) *MatchService {
	return &MatchService{
		manager: manager,
	}
}

func (ms *MatchService) CreateMatch() (string, error) {
	matchID := uuid.New().String()

	if _, err := ms.manager.CreateSession(matchID); err != nil {
		return "", fmt.Errorf("failed to create match: %w", err)
	}

	return matchID, nil
}

func (ms *MatchService) JoinMatch(matchID, playerID string) (model.Color, error) {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return "", err
	}
	color, err := session.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	session.Broadcast()
	return color, nil
}

func (ms *MatchService) GetMatchState(matchID string) (SessionState, error) {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return SessionState{}, err
	}
	return session.State(), nil
}

// PlayTurn applies the move and pushes the new state to every observer.
func (ms *MatchService) PlayTurn(matchID, playerID string, move model.SimpleMove) (SessionState, error) {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return SessionState{}, err
	}
	if err := session.PlayTurn(playerID, move.From, move.To); err != nil {
		return SessionState{}, err
	}
	session.Broadcast()
	return session.State(), nil
}

func (ms *MatchService) Destinations(matchID string, pos model.Position) ([]model.Position, error) {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return nil, err
	}
	if !pos.Valid() {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidCoordinate, pos)
	}
	return session.Destinations(pos), nil
}

func (ms *MatchService) JoinMatchmaking(playerID string) error {
	return ms.manager.JoinMatchmaking(playerID)
}

func (ms *MatchService) RegisterConnection(matchID, playerID string, conn Conn) error {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return err
	}
	return session.RegisterConnection(playerID, conn)
}

// Send writes msg to one player's live connection in the match.
func (ms *MatchService) Send(matchID, playerID string, msg ws.Message) error {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return err
	}
	return session.Send(playerID, msg)
}

func (ms *MatchService) UnregisterConnection(matchID, playerID string, conn Conn) {
	session, err := ms.manager.GetSession(matchID)
	if err != nil {
		return
	}
	session.UnregisterConnection(playerID, conn)
}

func (ms *MatchService) WaitForMatch(playerID string, ch chan string) {
	ms.manager.WaitForMatch(playerID, ch)
}

func (ms *MatchService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	ms.manager.UnregisterMatchmakingChannel(playerID, ch)
}

func (ms *MatchService) QueueSize() int {
	return ms.manager.QueueSize()
}
