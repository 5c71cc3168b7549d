package chain

import (
	"sort"

	"github.com/mcoot/killergame/internal/dependencies/random"
	"github.com/mcoot/killergame/internal/model"
)

// Roster is a lookup that can also list every player
type Roster interface {
	Lookup
	Players() []model.Player
}

// Report describes the health of the target chain
type Report struct {
	Participants int
	Alive        int

	// Alive players with no target
	WithoutTarget []string
	// Alive players whose target matches nobody
	UnknownTarget []string
	// Players targeting themselves
	SelfTarget []string
	// Alive players whose target is eliminated, waiting for resolution
	PendingResolution []string
	// Alive players that no alive player will reach
	Unhunted []string

	// SingleCycle is true when following resolved targets from any alive
	// player visits every alive player once and comes back
	SingleCycle bool
}

// Healthy reports whether the chain needs no admin attention
func (r *Report) Healthy() bool {
	return r.SingleCycle &&
		len(r.WithoutTarget) == 0 &&
		len(r.UnknownTarget) == 0 &&
		len(r.SelfTarget) == 0
}

// Inspect builds a chain report over the ranked players (admins and
// non-participants are left out)
func Inspect(roster Roster) *Report {
	report := &Report{}
	next := make(map[string]string)
	var alive []model.Player

	for _, p := range roster.Players() {
		if !p.IsRanked() {
			continue
		}
		report.Participants++
		if p.HasTarget() && p.Is(p.Target) {
			report.SelfTarget = append(report.SelfTarget, p.Nickname)
		}
		if !p.IsAlive() {
			continue
		}
		report.Alive++
		alive = append(alive, p)

		switch t := roster.Find(p.Target); {
		case !p.HasTarget():
			report.WithoutTarget = append(report.WithoutTarget, p.Nickname)
		case t == nil:
			report.UnknownTarget = append(report.UnknownTarget, p.Nickname)
		case !t.IsAlive():
			report.PendingResolution = append(report.PendingResolution, p.Nickname)
		}

		if p.HasTarget() {
			nick, _ := Forward(roster, p.Nickname, p.Target, p.Action)
			if nick != "" {
				next[model.FoldNickname(p.Nickname)] = nick
			}
		}
	}

	hunted := make(map[string]bool)
	for _, target := range next {
		hunted[model.FoldNickname(target)] = true
	}
	for _, p := range alive {
		if !hunted[model.FoldNickname(p.Nickname)] {
			report.Unhunted = append(report.Unhunted, p.Nickname)
		}
	}

	report.SingleCycle = isSingleCycle(alive, next)
	return report
}

func isSingleCycle(alive []model.Player, next map[string]string) bool {
	if len(alive) < 2 {
		return false
	}
	start := model.FoldNickname(alive[0].Nickname)
	seen := make(map[string]bool)
	current := start
	for range alive {
		if seen[current] {
			return false
		}
		seen[current] = true
		n, ok := next[current]
		if !ok {
			return false
		}
		current = model.FoldNickname(n)
	}
	return current == start && len(seen) == len(alive)
}

// SeedPlan shuffles the alive ranked players into one cycle.
// Fewer than two players give no plan.
func SeedPlan(players []model.Player, r random.Random) []model.Assignment {
	var pool []string
	for _, p := range players {
		if p.IsRanked() && p.IsAlive() {
			pool = append(pool, p.Nickname)
		}
	}
	if len(pool) < 2 {
		return nil
	}
	sort.Slice(pool, func(i, j int) bool {
		return model.FoldNickname(pool[i]) < model.FoldNickname(pool[j])
	})
	random.Shuffle(r, len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	plan := make([]model.Assignment, len(pool))
	for i, nick := range pool {
		plan[i] = model.Assignment{Hunter: nick, Target: pool[(i+1)%len(pool)]}
	}
	return plan
}
