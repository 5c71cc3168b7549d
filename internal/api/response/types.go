package response

import (
	"time"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/auth"
	"github.com/mcoot/killergame/internal/services/chain"
)

// Player represents the caller in API responses
type Player struct {
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	Year        string `json:"year,omitempty"`
	PersonPhoto string `json:"person_photo,omitempty"`
	FeetPhoto   string `json:"feet_photo,omitempty"`
	Status      string `json:"status"`
	KillCount   int    `json:"kill_count"`
	IsAdmin     bool   `json:"is_admin"`
}

// PlayerFromModel converts a model.PublicPlayer to a response Player
func PlayerFromModel(p model.PublicPlayer) Player {
	return Player{
		Nickname:    p.Nickname,
		Name:        p.Name,
		FirstName:   p.FirstName,
		Year:        p.Year,
		PersonPhoto: p.PersonPhoto,
		FeetPhoto:   p.FeetPhoto,
		Status:      string(p.Status),
		KillCount:   p.KillCount,
		IsAdmin:     p.IsAdmin,
	}
}

// Target is the victim a player is hunting
type Target struct {
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	Year        string `json:"year,omitempty"`
	PersonPhoto string `json:"person_photo,omitempty"`
	FeetPhoto   string `json:"feet_photo,omitempty"`
	Action      string `json:"action"`
}

// TargetFromModel converts target info, nil stays nil
func TargetFromModel(t *model.TargetInfo) *Target {
	if t == nil {
		return nil
	}
	return &Target{
		Nickname:    t.Nickname,
		Name:        t.Name,
		FirstName:   t.FirstName,
		Year:        t.Year,
		PersonPhoto: t.PersonPhoto,
		FeetPhoto:   t.FeetPhoto,
		Action:      t.Action,
	}
}

// Profile is the bootstrap view of the caller
type Profile struct {
	Player Player  `json:"player"`
	Target *Target `json:"target"`
}

// ProfileFromModel converts a model.Profile. The hunter is never exposed.
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		Player: PlayerFromModel(p.Player),
		Target: TargetFromModel(p.Target),
	}
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Player       *Player   `json:"player,omitempty"`
	Target       *Target   `json:"target,omitempty"`
}

// AuthResponseFromSession creates an AuthResponse. profile may be nil for
// maintenance sessions, which have no player record.
func AuthResponseFromSession(s *auth.Session, profile *model.Profile) AuthResponse {
	resp := AuthResponse{
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
	if profile != nil {
		p := PlayerFromModel(profile.Player)
		resp.Player = &p
		resp.Target = TargetFromModel(profile.Target)
	}
	return resp
}

// KillResponse is the response for a confirmed kill
type KillResponse struct {
	Victim string  `json:"victim"`
	Target *Target `json:"target"`
}

// KillResponseFromModel converts a model.KillResult
func KillResponseFromModel(r *model.KillResult) KillResponse {
	return KillResponse{
		Victim: r.Victim,
		Target: TargetFromModel(r.Target),
	}
}

// StatusResponse acknowledges a transition without a body of its own
type StatusResponse struct {
	Status string `json:"status"`
}

// LeaderboardEntry is one leaderboard line
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Nickname  string `json:"nickname"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	KillCount int    `json:"kill_count"`
	Status    string `json:"status"`
}

// LeaderboardResponse lists ranked players
type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromModel converts leaderboard entries
func LeaderboardFromModel(entries []model.LeaderboardEntry) LeaderboardResponse {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			Rank:      e.Rank,
			Nickname:  e.Nickname,
			Name:      e.Name,
			FirstName: e.FirstName,
			KillCount: e.KillCount,
			Status:    string(e.Status),
		}
	}
	return LeaderboardResponse{Entries: out}
}

// PodiumEntry is one step of the podium
type PodiumEntry struct {
	Rank             int    `json:"rank"`
	Nickname         string `json:"nickname"`
	Name             string `json:"name"`
	FirstName        string `json:"first_name"`
	KillCount        int    `json:"kill_count"`
	Status           string `json:"status"`
	EliminationOrder int    `json:"elimination_order"`
}

// PodiumResponse is the final podium
type PodiumResponse struct {
	GameOver bool          `json:"game_over"`
	Podium   []PodiumEntry `json:"podium"`
}

// PodiumFromModel converts a model.Podium
func PodiumFromModel(p *model.Podium) PodiumResponse {
	out := make([]PodiumEntry, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = PodiumEntry{
			Rank:             e.Rank,
			Nickname:         e.Nickname,
			Name:             e.Name,
			FirstName:        e.FirstName,
			KillCount:        e.KillCount,
			Status:           string(e.Status),
			EliminationOrder: e.EliminationOrder,
		}
	}
	return PodiumResponse{GameOver: p.GameOver, Podium: out}
}

// MedalGroup is one medal of the kills podium
type MedalGroup struct {
	Rank      int      `json:"rank"`
	Medal     string   `json:"medal"`
	KillCount int      `json:"kill_count"`
	Nicknames []string `json:"nicknames"`
}

// KillsPodiumResponse lists medal groups
type KillsPodiumResponse struct {
	Medals []MedalGroup `json:"medals"`
}

// KillsPodiumFromModel converts medal groups
func KillsPodiumFromModel(groups []model.MedalGroup) KillsPodiumResponse {
	out := make([]MedalGroup, len(groups))
	for i, g := range groups {
		out[i] = MedalGroup{
			Rank:      g.Rank,
			Medal:     string(g.Medal),
			KillCount: g.KillCount,
			Nicknames: g.Nicknames,
		}
	}
	return KillsPodiumResponse{Medals: out}
}

// RosterEntry is one roster card
type RosterEntry struct {
	Nickname    string  `json:"nickname"`
	Name        string  `json:"name"`
	FirstName   string  `json:"first_name"`
	Year        string  `json:"year,omitempty"`
	PersonPhoto string  `json:"person_photo,omitempty"`
	FeetPhoto   string  `json:"feet_photo,omitempty"`
	Status      *string `json:"status,omitempty"`
	Target      string  `json:"target,omitempty"`
	KillCount   *int    `json:"kill_count,omitempty"`
	KilledBy    string  `json:"killed_by,omitempty"`
}

// RosterResponse lists roster cards
type RosterResponse struct {
	Players []RosterEntry `json:"players"`
}

// RosterFromModel converts roster entries
func RosterFromModel(entries []model.RosterEntry) RosterResponse {
	out := make([]RosterEntry, len(entries))
	for i, e := range entries {
		r := RosterEntry{
			Nickname:    e.Nickname,
			Name:        e.Name,
			FirstName:   e.FirstName,
			Year:        e.Year,
			PersonPhoto: e.PersonPhoto,
			FeetPhoto:   e.FeetPhoto,
			Target:      e.Target,
			KillCount:   e.KillCount,
			KilledBy:    e.KilledBy,
		}
		if e.Status != nil {
			status := string(*e.Status)
			r.Status = &status
		}
		out[i] = r
	}
	return RosterResponse{Players: out}
}

// AdminPlayer is a full player record, credentials included
type AdminPlayer struct {
	Row              int    `json:"row"`
	Nickname         string `json:"nickname"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	FirstName        string `json:"first_name"`
	Year             string `json:"year"`
	Target           string `json:"target"`
	Action           string `json:"action"`
	Status           string `json:"status"`
	KillCount        int    `json:"kill_count"`
	EliminationOrder int    `json:"elimination_order"`
	KilledBy         string `json:"killed_by"`
	IsAdmin          bool   `json:"is_admin"`
}

// AdminPlayersResponse is the raw player dump
type AdminPlayersResponse struct {
	Count   int           `json:"count"`
	Players []AdminPlayer `json:"players"`
}

// AdminPlayersFromModel converts full player records
func AdminPlayersFromModel(players []model.Player) AdminPlayersResponse {
	out := make([]AdminPlayer, len(players))
	for i, p := range players {
		out[i] = AdminPlayer{
			Row:              p.Row,
			Nickname:         p.Nickname,
			Password:         p.Password,
			Name:             p.Name,
			FirstName:        p.FirstName,
			Year:             p.Year,
			Target:           p.Target,
			Action:           p.Action,
			Status:           string(p.Status),
			KillCount:        p.KillCount,
			EliminationOrder: p.EliminationOrder,
			KilledBy:         p.KilledBy,
			IsAdmin:          p.IsAdmin,
		}
	}
	return AdminPlayersResponse{Count: len(out), Players: out}
}

// ChainReportResponse describes the health of the target chain
type ChainReportResponse struct {
	Healthy           bool     `json:"healthy"`
	Participants      int      `json:"participants"`
	Alive             int      `json:"alive"`
	SingleCycle       bool     `json:"single_cycle"`
	WithoutTarget     []string `json:"without_target"`
	UnknownTarget     []string `json:"unknown_target"`
	SelfTarget        []string `json:"self_target"`
	PendingResolution []string `json:"pending_resolution"`
	Unhunted          []string `json:"unhunted"`
}

// ChainReportFromModel converts a chain report
func ChainReportFromModel(r *chain.Report) ChainReportResponse {
	return ChainReportResponse{
		Healthy:           r.Healthy(),
		Participants:      r.Participants,
		Alive:             r.Alive,
		SingleCycle:       r.SingleCycle,
		WithoutTarget:     nonNil(r.WithoutTarget),
		UnknownTarget:     nonNil(r.UnknownTarget),
		SelfTarget:        nonNil(r.SelfTarget),
		PendingResolution: nonNil(r.PendingResolution),
		Unhunted:          nonNil(r.Unhunted),
	}
}

// Assignment is one seeded chain edge
type Assignment struct {
	Hunter string `json:"hunter"`
	Target string `json:"target"`
}

// SeedResponse lists the seeded chain
type SeedResponse struct {
	Assignments []Assignment `json:"assignments"`
}

// SeedFromModel converts chain assignments
func SeedFromModel(plan []model.Assignment) SeedResponse {
	out := make([]Assignment, len(plan))
	for i, a := range plan {
		out[i] = Assignment{Hunter: a.Hunter, Target: a.Target}
	}
	return SeedResponse{Assignments: out}
}

// HealthResponse reports server and record store health
type HealthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Backend string `json:"backend"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
