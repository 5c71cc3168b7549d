package model

// LeaderboardEntry is one line of the kill leaderboard
type LeaderboardEntry struct {
	Rank      int
	Nickname  string
	Name      string
	FirstName string
	KillCount int
	Status    Status
}

// PodiumEntry is one step of the final podium
type PodiumEntry struct {
	Rank             int
	Nickname         string
	Name             string
	FirstName        string
	KillCount        int
	Status           Status
	EliminationOrder int
}

// Podium is the final standings, empty until the game is over
type Podium struct {
	GameOver bool
	Entries  []PodiumEntry
}

// Medal is a kills podium rank
type Medal string

const (
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

// MedalGroup holds every player sharing a kills podium rank
type MedalGroup struct {
	Rank      int
	Medal     Medal
	KillCount int
	Nicknames []string
}

// RosterEntry is one card of the player roster ("trombi").
// Game fields are nil/empty unless the viewer may see them.
type RosterEntry struct {
	Nickname    string
	Name        string
	FirstName   string
	Year        string
	PersonPhoto string
	FeetPhoto   string

	Status    *Status
	Target    string
	KillCount *int
	KilledBy  string
}
