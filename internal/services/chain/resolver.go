// Package chain walks and checks the target chain
package chain

import (
	"github.com/mcoot/killergame/internal/model"
)

// Lookup finds players by nickname. Implemented by directory snapshots.
type Lookup interface {
	Find(nickname string) *model.Player
	Len() int
}

// Resolution is the outcome of walking the chain
type Resolution struct {
	// Target is the first alive player reached, nil if none
	Target *model.Player

	// Via is the player whose outgoing edge reaches Target. Its action is the
	// challenge inherited along with the target.
	Via *model.Player

	// Steps is the number of players visited
	Steps int
}

// Found reports whether an alive target was reached
func (r Resolution) Found() bool {
	return r.Target != nil
}

// Action returns the challenge that comes with the resolved target
func (r Resolution) Action() string {
	if r.Via == nil {
		return ""
	}
	return r.Via.Action
}

// Resolve starts at the player named start and follows target edges until
// it reaches an alive player. Every visited player is remembered so
// cycles, including a self-target, end the walk with no result. A missing
// player, a player with no target or a target nickname that matches nobody
// is a dead end. The walk never takes more than Len()+1 steps.
func Resolve(l Lookup, start string) Resolution {
	visited := make(map[string]bool)
	current := start
	limit := l.Len() + 1

	for steps := 1; steps <= limit; steps++ {
		key := model.FoldNickname(current)
		if key == "" || visited[key] {
			return Resolution{Steps: steps - 1}
		}
		visited[key] = true

		p := l.Find(current)
		if p == nil || !p.HasTarget() {
			return Resolution{Steps: steps}
		}
		t := l.Find(p.Target)
		if t == nil {
			return Resolution{Steps: steps}
		}
		if t.IsAlive() {
			return Resolution{Target: t, Via: p, Steps: steps}
		}
		current = t.Nickname
	}
	return Resolution{Steps: limit}
}

// Forward returns where an edge pointing at nickname should point now: the
// player itself if alive, otherwise the next alive player after it.
// The action is the one stored on the last edge taken. Never returns owner.
func Forward(l Lookup, owner, nickname, action string) (string, string) {
	t := l.Find(nickname)
	if t == nil {
		return "", ""
	}
	if t.IsAlive() {
		if t.Is(owner) {
			return "", ""
		}
		return t.Nickname, action
	}
	r := Resolve(l, t.Nickname)
	if !r.Found() || r.Target.Is(owner) {
		return "", ""
	}
	return r.Target.Nickname, r.Action()
}
