package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventPlayerEliminated EventType = "player_eliminated"
	EventGameOver         EventType = "game_over"
)

// EliminationCause records how a player left the game
type EliminationCause string

const (
	CauseKill   EliminationCause = "kill"   // Hunter confirmed the kill
	CauseKilled EliminationCause = "killed" // Victim reported their own death
	CauseGaveUp EliminationCause = "gaveup"
)

// Event is published after a successful transition
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// PlayerEliminatedPayload contains data for player eliminated events.
// Never carries targets, the chain stays secret.
type PlayerEliminatedPayload struct {
	Nickname       string
	By             string // Empty for give-ups and unclaimed deaths
	Cause          EliminationCause
	AliveRemaining int
}

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	Winner string // Empty if nobody is left alive
}
