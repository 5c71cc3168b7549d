package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Profile:
		o.printProfile(v)
	case AuthResult:
		o.printAuthResult(v)
	case KillResult:
		o.printKillResult(v)
	case StatusResult:
		o.printStatusResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case Podium:
		o.printPodium(v)
	case KillsPodium:
		o.printKillsPodium(v)
	case Roster:
		o.printRoster(v)
	case AdminPlayers:
		o.printAdminPlayers(v)
	case ChainReport:
		o.printChainReport(v)
	case SeedResult:
		o.printSeedResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
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

// Target response type
type Target struct {
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	Year        string `json:"year,omitempty"`
	PersonPhoto string `json:"person_photo,omitempty"`
	FeetPhoto   string `json:"feet_photo,omitempty"`
	Action      string `json:"action"`
}

// Profile is the caller's card and current target
type Profile struct {
	Player Player  `json:"player"`
	Target *Target `json:"target"`
}

// AuthResult combines the session token and the caller's profile
type AuthResult struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Player       *Player   `json:"player,omitempty"`
	Target       *Target   `json:"target,omitempty"`
}

// KillResult response type
type KillResult struct {
	Victim string  `json:"victim"`
	Target *Target `json:"target"`
}

// StatusResult response type
type StatusResult struct {
	Status string `json:"status"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Nickname  string `json:"nickname"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	KillCount int    `json:"kill_count"`
	Status    string `json:"status"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// PodiumEntry response type
type PodiumEntry struct {
	Rank             int    `json:"rank"`
	Nickname         string `json:"nickname"`
	Name             string `json:"name"`
	FirstName        string `json:"first_name"`
	KillCount        int    `json:"kill_count"`
	Status           string `json:"status"`
	EliminationOrder int    `json:"elimination_order"`
}

// Podium response type
type Podium struct {
	GameOver bool          `json:"game_over"`
	Podium   []PodiumEntry `json:"podium"`
}

// MedalGroup response type
type MedalGroup struct {
	Rank      int      `json:"rank"`
	Medal     string   `json:"medal"`
	KillCount int      `json:"kill_count"`
	Nicknames []string `json:"nicknames"`
}

// KillsPodium response type
type KillsPodium struct {
	Medals []MedalGroup `json:"medals"`
}

// RosterEntry response type. Game fields are only sent to admins or after the game.
type RosterEntry struct {
	Nickname  string  `json:"nickname"`
	Name      string  `json:"name"`
	FirstName string  `json:"first_name"`
	Year      string  `json:"year,omitempty"`
	Status    *string `json:"status,omitempty"`
	Target    string  `json:"target,omitempty"`
	KillCount *int    `json:"kill_count,omitempty"`
	KilledBy  string  `json:"killed_by,omitempty"`
}

// Roster response type
type Roster struct {
	Players []RosterEntry `json:"players"`
}

// AdminPlayer response type
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

// AdminPlayers response type
type AdminPlayers struct {
	Count   int           `json:"count"`
	Players []AdminPlayer `json:"players"`
}

// ChainReport response type
type ChainReport struct {
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

// Assignment response type
type Assignment struct {
	Hunter string `json:"hunter"`
	Target string `json:"target"`
}

// SeedResult response type
type SeedResult struct {
	Assignments []Assignment `json:"assignments"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Backend string `json:"backend"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s %s)\n", p.Nickname, p.FirstName, p.Name)
	if p.Year != "" {
		fmt.Printf("Year: %s\n", p.Year)
	}
	fmt.Printf("Status: %s\n", p.Status)
	fmt.Printf("Kills: %d\n", p.KillCount)
	if p.IsAdmin {
		fmt.Println("Admin: yes")
	}
}

func (o *Output) printTarget(t *Target) {
	if t == nil {
		fmt.Println("Target: none")
		return
	}
	fmt.Printf("Target: %s (%s %s)\n", t.Nickname, t.FirstName, t.Name)
	if t.Action != "" {
		fmt.Printf("Action: %s\n", t.Action)
	}
}

func (o *Output) printProfile(p Profile) {
	o.printPlayer(p.Player)
	if p.Player.Status == "alive" {
		o.printTarget(p.Target)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	if a.Player != nil {
		o.printProfile(Profile{Player: *a.Player, Target: a.Target})
	} else {
		fmt.Println("Maintenance session")
	}
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Local().Format(time.RFC1123))
}

func (o *Output) printKillResult(k KillResult) {
	fmt.Printf("Eliminated: %s\n", k.Victim)
	if k.Target == nil {
		fmt.Println("No one left to hunt")
		return
	}
	o.printTarget(k.Target)
}

func (o *Output) printStatusResult(s StatusResult) {
	fmt.Printf("Status: %s\n", s.Status)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("No ranked players")
		return
	}
	for _, e := range l.Entries {
		fmt.Printf("%3d. %-20s %3d kills  %s\n", e.Rank, e.Nickname, e.KillCount, e.Status)
	}
}

func (o *Output) printPodium(p Podium) {
	if !p.GameOver {
		fmt.Println("The game is still running")
		return
	}
	for _, e := range p.Podium {
		fmt.Printf("%d. %s (%d kills)\n", e.Rank, e.Nickname, e.KillCount)
	}
}

func (o *Output) printKillsPodium(k KillsPodium) {
	if len(k.Medals) == 0 {
		fmt.Println("No kills yet")
		return
	}
	for _, m := range k.Medals {
		fmt.Printf("%-6s %d kills: %s\n", m.Medal, m.KillCount, strings.Join(m.Nicknames, ", "))
	}
}

func (o *Output) printRoster(r Roster) {
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		line := fmt.Sprintf("  - %s (%s %s)", p.Nickname, p.FirstName, p.Name)
		if p.Year != "" {
			line += " " + p.Year
		}
		if p.Status != nil {
			line += " [" + *p.Status + "]"
		}
		if p.KillCount != nil {
			line += fmt.Sprintf(" %d kills", *p.KillCount)
		}
		if p.Target != "" {
			line += " -> " + p.Target
		}
		if p.KilledBy != "" {
			line += " killed by " + p.KilledBy
		}
		fmt.Println(line)
	}
}

func (o *Output) printAdminPlayers(a AdminPlayers) {
	fmt.Printf("Players (%d):\n", a.Count)
	for _, p := range a.Players {
		adminStr := ""
		if p.IsAdmin {
			adminStr = " [admin]"
		}
		fmt.Printf("  %3d %-20s %-8s kills=%d order=%d target=%s%s\n",
			p.Row, p.Nickname, p.Status, p.KillCount, p.EliminationOrder, p.Target, adminStr)
	}
}

func (o *Output) printChainReport(c ChainReport) {
	healthStr := "no"
	if c.Healthy {
		healthStr = "yes"
	}
	fmt.Printf("Healthy: %s\n", healthStr)
	fmt.Printf("Participants: %d\n", c.Participants)
	fmt.Printf("Alive: %d\n", c.Alive)
	fmt.Printf("Single cycle: %t\n", c.SingleCycle)
	printList := func(label string, names []string) {
		if len(names) > 0 {
			fmt.Printf("%s: %s\n", label, strings.Join(names, ", "))
		}
	}
	printList("Without target", c.WithoutTarget)
	printList("Unknown target", c.UnknownTarget)
	printList("Self target", c.SelfTarget)
	printList("Pending resolution", c.PendingResolution)
	printList("Unhunted", c.Unhunted)
}

func (o *Output) printSeedResult(s SeedResult) {
	fmt.Printf("Seeded %d assignments\n", len(s.Assignments))
	for _, a := range s.Assignments {
		fmt.Printf("  %s -> %s\n", a.Hunter, a.Target)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Backend: %s\n", h.Backend)
	fmt.Printf("Players: %d\n", h.Players)
}
