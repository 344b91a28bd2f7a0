package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/google/uuid"
)

// MatchFoundEvent tells a queued player which match and seat they got.
type MatchFoundEvent struct {
	MatchID string      `json:"matchId"`
	Color   model.Color `json:"color"`
}

type ManagerConfig struct {
	ClockLimit          time.Duration
	MatchmakingInterval time.Duration
	Logger              *log.Logger
}

// waiter is a live matchmaking socket. ownsEntry is set when the socket (or
// the one it replaced) put the player in the queue, so hanging up should
// take them out again.
type waiter struct {
	ch        chan string
	ownsEntry bool
}

// MatchManager is the registry of live sessions and the matchmaking queue.
type MatchManager struct {
	sessions         map[string]*Session
	queue            *Queue
	waiters          map[string]*waiter
	cfg              ManagerConfig
	mu               sync.RWMutex
}

func NewMatchManager(cfg ManagerConfig) *MatchManager {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.MatchmakingInterval <= 0 {
		cfg.MatchmakingInterval = time.Second
	}
	return &MatchManager{
		sessions:         make(map[string]*Session),
		queue:            NewQueue(),
		waiters:          make(map[string]*waiter),
		cfg:              cfg,
	}
}

// Run pairs queued players every MatchmakingInterval until ctx is done.
func (mm *MatchManager) Run(ctx context.Context) {
	ticker := time.NewTicker(mm.cfg.MatchmakingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for mm.pairNext() {
			}
		}
	}
}

// pairNext seats the two longest-waiting players that have a socket open in
// a new session and notifies them. Queued players without one keep waiting.
// It reports whether a pair was made.
func (mm *MatchManager) pairNext() bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	first, second, ok := mm.queue.NextPair(func(playerID string) bool {
		_, waiting := mm.waiters[playerID]
		return waiting
	})
	if !ok {
		return false
	}

	matchID := uuid.New().String()
	session := NewSession(matchID, mm.cfg.ClockLimit, mm.cfg.Logger)
	firstColor, err := session.AddPlayer(first.PlayerID)
	if err != nil {
		mm.cfg.Logger.Printf("matchmaking: seating %s: %v", first.PlayerID, err)
		return true
	}
	secondColor, err := session.AddPlayer(second.PlayerID)
	if err != nil {
		mm.cfg.Logger.Printf("matchmaking: seating %s: %v", second.PlayerID, err)
		return true
	}
	mm.sessions[matchID] = session

	if !mm.notify(first.PlayerID, MatchFoundEvent{MatchID: matchID, Color: firstColor}) ||
		!mm.notify(second.PlayerID, MatchFoundEvent{MatchID: matchID, Color: secondColor}) {
		mm.cfg.Logger.Printf("matchmaking: match %s created but not every player was notified", matchID)
	}
	return true
}

// notify sends event on the player's matchmaking channel and closes it.
// Callers hold mm.mu.
func (mm *MatchManager) notify(playerID string, event MatchFoundEvent) bool {
	w, ok := mm.waiters[playerID]
	if !ok {
		return false
	}
	delete(mm.waiters, playerID)
	defer close(w.ch)

	select {
	case w.ch <- mustJSON(event):
		return true
	default:
		mm.cfg.Logger.Printf("matchmaking: channel for %s is full", playerID)
		return false
	}
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

// WaitForMatch registers ch to receive playerID's MatchFoundEvent and makes
// sure the player is queued. A previous channel for the player is closed and
// replaced. Joining is idempotent: a player already queued, whether over
// REST or by the socket being replaced, keeps their place.
func (mm *MatchManager) WaitForMatch(playerID string, ch chan string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	w := &waiter{ch: ch}
	if existing, ok := mm.waiters[playerID]; ok {
		w.ownsEntry = existing.ownsEntry
		close(existing.ch)
	}
	if err := mm.queue.AddPlayer(playerID); err == nil {
		w.ownsEntry = true
	}
	mm.waiters[playerID] = w
}

// UnregisterMatchmakingChannel forgets ch without closing it. The player
// leaves the queue only if this socket put them there. It does nothing if ch
// has since been replaced or already notified.
func (mm *MatchManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	w, ok := mm.waiters[playerID]
	if !ok || w.ch != ch {
		return
	}
	delete(mm.waiters, playerID)
	if w.ownsEntry {
		mm.queue.Remove(playerID)
	}
}

// JoinMatchmaking queues playerID without a socket. The player is paired
// once they open one with WaitForMatch.
func (mm *MatchManager) JoinMatchmaking(playerID string) error {
	return mm.queue.AddPlayer(playerID)
}

func (mm *MatchManager) QueueSize() int {
	return mm.queue.Size()
}

func (mm *MatchManager) CreateSession(matchID string) (*Session, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if _, exists := mm.sessions[matchID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrMatchExists, matchID)
	}
	session := NewSession(matchID, mm.cfg.ClockLimit, mm.cfg.Logger)
	mm.sessions[matchID] = session
	return session, nil
}

func (mm *MatchManager) GetSession(matchID string) (*Session, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	session, exists := mm.sessions[matchID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return session, nil
}

func (mm *MatchManager) DeleteSession(matchID string) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if _, exists := mm.sessions[matchID]; !exists {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	delete(mm.sessions, matchID)
	return nil
}
