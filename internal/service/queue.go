package service

import (
	"fmt"
	"sync"
	"time"
)

type QueuedPlayer struct {
	PlayerID string
	JoinedAt time.Time
}

// Queue holds players waiting for matchmaking in arrival order.
type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(playerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.PlayerID == playerID {
			return fmt.Errorf("%w: %s", ErrAlreadyQueued, playerID)
		}
	}

	q.players = append(q.players, QueuedPlayer{
		PlayerID: playerID,
		JoinedAt: time.Now(),
	})
	return nil
}

// Remove drops playerID from the queue; it reports whether it was queued.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.players {
		if p.PlayerID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return true
		}
	}
	return false
}

// NextPair pops the two longest-waiting players for which ready reports
// true; everyone else keeps their place. ok is false when fewer than two
// players are ready.
func (q *Queue) NextPair(ready func(playerID string) bool) (first, second QueuedPlayer, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	picked := make([]int, 0, 2)
	for i, p := range q.players {
		if ready(p.PlayerID) {
			picked = append(picked, i)
			if len(picked) == 2 {
				break
			}
		}
	}
	if len(picked) < 2 {
		return QueuedPlayer{}, QueuedPlayer{}, false
	}

	first, second = q.players[picked[0]], q.players[picked[1]]
	rest := make([]QueuedPlayer, 0, len(q.players)-2)
	for i, p := range q.players {
		if i != picked[0] && i != picked[1] {
			rest = append(rest, p)
		}
	}
	q.players = rest
	return first, second, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
