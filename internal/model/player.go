package model

// Status is the life state of a player
type Status string

const (
	StatusAlive  Status = "alive"
	StatusDead   Status = "dead"
	StatusGaveUp Status = "gaveup"
)

// NotParticipating is the elimination order of players outside the game (admins, opt-outs)
const NotParticipating = -1

// Player is one registered participant, parsed from a record store row
type Player struct {
	Row int // Sheet row index, 0 is the header

	Nickname string
	Password string

	Name        string
	FirstName   string
	Year        string
	PersonPhoto string
	FeetPhoto   string

	Target string // Nickname of the current victim, "" if none
	Action string // Challenge to perform on Target

	Status           Status
	KillCount        int
	EliminationOrder int // -1 not participating, 0 in play, >0 rank of elimination
	KilledBy         string
	IsAdmin          bool
}

// IsAlive returns true if the player is still hunting
func (p *Player) IsAlive() bool {
	return p.Status == StatusAlive
}

// IsParticipating returns true if the player belongs to the target chain
func (p *Player) IsParticipating() bool {
	return p.EliminationOrder != NotParticipating
}

// IsRanked returns true if the player counts towards standings
func (p *Player) IsRanked() bool {
	return p.IsParticipating() && !p.IsAdmin
}

// HasTarget returns true if the player currently has a victim assigned
func (p *Player) HasTarget() bool {
	return p.Target != ""
}

// Is reports whether nickname refers to this player
func (p *Player) Is(nickname string) bool {
	return SameNickname(p.Nickname, nickname)
}

// PublicPlayer is the part of a player that may be shown to the player themself
type PublicPlayer struct {
	Nickname    string
	Name        string
	FirstName   string
	Year        string
	PersonPhoto string
	FeetPhoto   string
	Status      Status
	KillCount   int
	IsAdmin     bool
}

// Public strips credentials and chain data from a player
func (p *Player) Public() PublicPlayer {
	return PublicPlayer{
		Nickname:    p.Nickname,
		Name:        p.Name,
		FirstName:   p.FirstName,
		Year:        p.Year,
		PersonPhoto: p.PersonPhoto,
		FeetPhoto:   p.FeetPhoto,
		Status:      p.Status,
		KillCount:   p.KillCount,
		IsAdmin:     p.IsAdmin,
	}
}

// TargetInfo describes the victim a player is currently hunting
type TargetInfo struct {
	Nickname    string
	Name        string
	FirstName   string
	Year        string
	PersonPhoto string
	FeetPhoto   string
	Action      string
}

// NewTargetInfo builds target info from the victim and the hunter's action
func NewTargetInfo(victim *Player, action string) *TargetInfo {
	return &TargetInfo{
		Nickname:    victim.Nickname,
		Name:        victim.Name,
		FirstName:   victim.FirstName,
		Year:        victim.Year,
		PersonPhoto: victim.PersonPhoto,
		FeetPhoto:   victim.FeetPhoto,
		Action:      action,
	}
}

// Profile is the bootstrap view of a player: who they are, who they hunt, who hunts them
type Profile struct {
	Player PublicPlayer
	Target *TargetInfo // nil when the player has no live target
	Hunter string      // Nickname of the player hunting this one, "" if unknown
}

// KillResult is returned after a confirmed kill
type KillResult struct {
	Victim string
	Target *TargetInfo // New target, nil if the chain ended
}

// Assignment is one edge of a seeded target chain
type Assignment struct {
	Hunter string
	Target string
}
