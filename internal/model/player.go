package model

// Player is one side of a match. Name, Rating and the logs are bookkeeping
// only; legality never consults them.
type Player struct {
	Color    Color   `json:"color"`
	Name     string  `json:"name,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
	Captured []Piece `json:"captured"`
	History  []Ply   `json:"history"`
}

func NewPlayer(color Color) *Player {
	return &Player{
		Color:    color,
		Captured: make([]Piece, 0),
		History:  make([]Ply, 0),
	}
}

func (p *Player) record(ply Ply) {
	p.History = append(p.History, ply)
	if ply.Captured != nil {
		p.Captured = append(p.Captured, *ply.Captured)
	}
}

// DisplayName falls back to the color when no name was given.
func (p *Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.Color)
}
