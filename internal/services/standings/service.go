// Package standings derives rankings from the player directory
package standings

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/directory"
)

// PodiumSize is the number of places on both podiums
const PodiumSize = 3

var medals = []model.Medal{model.MedalGold, model.MedalSilver, model.MedalBronze}

// Service computes leaderboards, podiums and the roster
type Service struct {
	directory *directory.Service
	logger    *slog.Logger
}

// New creates a new standings Service
func New(directory *directory.Service, logger *slog.Logger) *Service {
	return &Service{
		directory: directory,
		logger:    logger,
	}
}

func (s *Service) ranked(ctx context.Context) ([]model.Player, error) {
	players, err := s.directory.ListAllPlayers(ctx)
	if err != nil {
		return nil, err
	}
	out := players[:0]
	for _, p := range players {
		if p.IsRanked() {
			out = append(out, p)
		}
	}
	return out, nil
}

func byNickname(a, b model.Player) bool {
	return model.FoldNickname(a.Nickname) < model.FoldNickname(b.Nickname)
}

// Leaderboard ranks players by kills, ties broken by nickname
func (s *Service) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	players, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	return Leaderboard(players), nil
}

// Leaderboard ranks already filtered players by kills, ties broken by nickname
func Leaderboard(players []model.Player) []model.LeaderboardEntry {
	sorted := append([]model.Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].KillCount != sorted[j].KillCount {
			return sorted[i].KillCount > sorted[j].KillCount
		}
		return byNickname(sorted[i], sorted[j])
	})

	entries := make([]model.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = model.LeaderboardEntry{
			Rank:      i + 1,
			Nickname:  p.Nickname,
			Name:      p.Name,
			FirstName: p.FirstName,
			KillCount: p.KillCount,
			Status:    p.Status,
		}
	}
	return entries
}

// Podium returns the final top three once at most one player is alive
func (s *Service) Podium(ctx context.Context) (*model.Podium, error) {
	players, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	return Podium(players), nil
}

// GameOver reports whether at most one ranked player is alive
func GameOver(players []model.Player) bool {
	alive := 0
	for _, p := range players {
		if p.IsAlive() {
			alive++
		}
	}
	return alive <= 1
}

// Podium builds the podium from already filtered players: alive winners
// first, then the most recently eliminated. Eliminated players without an
// order come after every ordered one.
func Podium(players []model.Player) *model.Podium {
	if !GameOver(players) {
		return &model.Podium{GameOver: false, Entries: []model.PodiumEntry{}}
	}

	var alive, eliminated []model.Player
	for _, p := range players {
		if p.IsAlive() {
			alive = append(alive, p)
		} else {
			eliminated = append(eliminated, p)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool { return byNickname(alive[i], alive[j]) })
	sort.SliceStable(eliminated, func(i, j int) bool {
		a, b := eliminated[i], eliminated[j]
		aRanked, bRanked := a.EliminationOrder > 0, b.EliminationOrder > 0
		if aRanked != bRanked {
			return aRanked
		}
		if a.EliminationOrder != b.EliminationOrder {
			return a.EliminationOrder > b.EliminationOrder
		}
		return byNickname(a, b)
	})

	ordered := append(alive, eliminated...)
	if len(ordered) > PodiumSize {
		ordered = ordered[:PodiumSize]
	}
	podium := &model.Podium{GameOver: true, Entries: make([]model.PodiumEntry, len(ordered))}
	for i, p := range ordered {
		podium.Entries[i] = model.PodiumEntry{
			Rank:             i + 1,
			Nickname:         p.Nickname,
			Name:             p.Name,
			FirstName:        p.FirstName,
			KillCount:        p.KillCount,
			Status:           p.Status,
			EliminationOrder: p.EliminationOrder,
		}
	}
	return podium
}

// KillsPodium groups the top three distinct kill counts into medals
func (s *Service) KillsPodium(ctx context.Context) ([]model.MedalGroup, error) {
	players, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	return KillsPodium(players), nil
}

// KillsPodium groups already filtered players by kill count. Players without
// a kill get no medal; tied players share one.
func KillsPodium(players []model.Player) []model.MedalGroup {
	byCount := make(map[int][]model.Player)
	var counts []int
	for _, p := range players {
		if p.KillCount <= 0 {
			continue
		}
		if _, ok := byCount[p.KillCount]; !ok {
			counts = append(counts, p.KillCount)
		}
		byCount[p.KillCount] = append(byCount[p.KillCount], p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	if len(counts) > PodiumSize {
		counts = counts[:PodiumSize]
	}

	groups := make([]model.MedalGroup, len(counts))
	for i, n := range counts {
		tied := byCount[n]
		sort.SliceStable(tied, func(a, b int) bool { return byNickname(tied[a], tied[b]) })
		nicks := make([]string, len(tied))
		for j, p := range tied {
			nicks[j] = p.Nickname
		}
		groups[i] = model.MedalGroup{
			Rank:      i + 1,
			Medal:     medals[i],
			KillCount: n,
			Nicknames: nicks,
		}
	}
	return groups
}

// Roster lists every ranked player's public card. Game state is only
// revealed to admins or once the game is over.
func (s *Service) Roster(ctx context.Context, viewer model.Actor) ([]model.RosterEntry, error) {
	players, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	reveal := viewer.IsAdmin || GameOver(players)

	sort.SliceStable(players, func(i, j int) bool { return byNickname(players[i], players[j]) })
	entries := make([]model.RosterEntry, len(players))
	for i, p := range players {
		e := model.RosterEntry{
			Nickname:    p.Nickname,
			Name:        p.Name,
			FirstName:   p.FirstName,
			Year:        p.Year,
			PersonPhoto: p.PersonPhoto,
			FeetPhoto:   p.FeetPhoto,
		}
		if reveal {
			status, kills := p.Status, p.KillCount
			e.Status = &status
			e.KillCount = &kills
			e.Target = p.Target
			e.KilledBy = p.KilledBy
		}
		entries[i] = e
	}
	return entries, nil
}
