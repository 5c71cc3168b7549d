package directory

import (
	"time"

	"github.com/mcoot/killergame/internal/model"
)

// Snapshot is an immutable, internally consistent view of every player
type Snapshot struct {
	layout  Layout
	players []model.Player
	readAt  time.Time
}

// NewSnapshot builds a snapshot from already parsed players
func NewSnapshot(layout Layout, players []model.Player, readAt time.Time) *Snapshot {
	return &Snapshot{
		layout:  layout,
		players: append([]model.Player(nil), players...),
		readAt:  readAt,
	}
}

// Layout returns the sheet layout the snapshot was read with
func (s *Snapshot) Layout() Layout {
	return s.layout
}

// ReadAt is when the snapshot was read from the store
func (s *Snapshot) ReadAt() time.Time {
	return s.readAt
}

// Len returns the number of players
func (s *Snapshot) Len() int {
	return len(s.players)
}

// Players returns a copy of every player, in sheet order
func (s *Snapshot) Players() []model.Player {
	return append([]model.Player(nil), s.players...)
}

// Find returns a copy of the first player whose folded nickname matches, or nil
func (s *Snapshot) Find(nickname string) *model.Player {
	key := model.FoldNickname(nickname)
	if key == "" {
		return nil
	}
	for i := range s.players {
		if model.FoldNickname(s.players[i].Nickname) == key {
			p := s.players[i]
			return &p
		}
	}
	return nil
}

// Hunter returns the participating player whose target is nickname, or nil.
// Alive hunters are preferred over eliminated ones; a self-target never counts.
func (s *Snapshot) Hunter(nickname string) *model.Player {
	var fallback *model.Player
	for i := range s.players {
		p := s.players[i]
		if !p.IsParticipating() || p.Is(nickname) || !model.SameNickname(p.Target, nickname) {
			continue
		}
		if p.IsAlive() {
			return &p
		}
		if fallback == nil {
			fallback = &p
		}
	}
	return fallback
}

// WithPlayer returns a copy of the snapshot where the player on the same row is replaced
func (s *Snapshot) WithPlayer(p model.Player) *Snapshot {
	out := NewSnapshot(s.layout, s.players, s.readAt)
	for i := range out.players {
		if out.players[i].Row == p.Row {
			out.players[i] = p
			return out
		}
	}
	out.players = append(out.players, p)
	return out
}
