package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream the live elimination feed",
		Long: `Connect to the server's WebSocket feed and print events as they happen.

Events include:
  - player_eliminated: A player was killed or gave up
  - game_over: One or no ranked player is left alive

Targets are never part of the feed. Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// FeedEvent is one message of the live feed
type FeedEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type eliminatedPayload struct {
	Nickname       string `json:"nickname"`
	By             string `json:"by"`
	Cause          string `json:"cause"`
	AliveRemaining int    `json:"alive_remaining"`
}

type gameOverPayload struct {
	Winner string `json:"winner"`
}

// eventsURL turns the HTTP server URL into the feed's WebSocket URL
func eventsURL(server string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(server, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += "/api/v1/events"
	return u.String(), nil
}

func streamEvents(jsonOutput bool) error {
	target, err := eventsURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	go func() {
		select {
		case <-sigCh:
			cancel()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	if !jsonOutput {
		fmt.Println("Connected to the kill feed")
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Interrupts and server shutdowns end the stream cleanly
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || ctx.Err() != nil {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		printEvent(data, jsonOutput)
	}
}

func printEvent(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var evt FeedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		fmt.Printf("[unparsed] %s\n", strings.TrimSpace(string(data)))
		return
	}
	fmt.Printf("[%s] %s\n", evt.Timestamp.Local().Format("2006-01-02 15:04:05"), describeEvent(evt))
}

func describeEvent(evt FeedEvent) string {
	switch evt.Type {
	case "player_eliminated":
		var p eliminatedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			break
		}
		switch {
		case p.Cause == "gaveup":
			return fmt.Sprintf("%s gave up (%d left)", p.Nickname, p.AliveRemaining)
		case p.By != "":
			return fmt.Sprintf("%s was eliminated by %s (%d left)", p.Nickname, p.By, p.AliveRemaining)
		default:
			return fmt.Sprintf("%s was eliminated (%d left)", p.Nickname, p.AliveRemaining)
		}
	case "game_over":
		var p gameOverPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			break
		}
		if p.Winner == "" {
			return "Game over, nobody survived"
		}
		return fmt.Sprintf("Game over, %s wins", p.Winner)
	}
	return fmt.Sprintf("%s: %s", evt.Type, string(evt.Payload))
}
