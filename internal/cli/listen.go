package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	var jsonOutput bool
	var send bool

	cmd := &cobra.Command{
		Use:   "listen <code>",
		Short: "Stream a room's messages in real-time",
		Long: `Connect to the websocket endpoint, subscribe to a room and print
messages as they arrive. With --send, lines read from stdin are sent to the
room as messages.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("not logged in: run 'roomchat auth login' first")
			}
			return listen(args[0], jsonOutput, send)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&send, "send", false, "Read lines from stdin and send them as messages")

	return cmd
}

// wireEvent mirrors the server's event envelope
type wireEvent struct {
	Type     string       `json:"type"`
	RoomCode string       `json:"room_code,omitempty"`
	Message  *ChatMessage `json:"message,omitempty"`
	Error    *wireError   `json:"error,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsURL converts the configured server URL to the websocket endpoint
func wsURL(serverURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func listen(roomCode string, jsonOutput, send bool) error {
	endpoint, err := wsURL(cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %w (HTTP %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Subscribe to the room
	join := wireEvent{Type: "join-room", RoomCode: roomCode}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	// Optionally pipe stdin lines into the room
	if send {
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				msg := map[string]string{
					"type":      "send-message",
					"room_code": roomCode,
					"message":   line,
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}()
	}

	fmt.Fprintf(os.Stderr, "Listening to room %s (Ctrl+C to stop)...\n", roomCode)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil // Clean shutdown
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		if jsonOutput {
			fmt.Println(string(payload))
			continue
		}

		var event wireEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			fmt.Println(string(payload))
			continue
		}

		switch {
		case event.Type == "message" && event.Message != nil:
			fmt.Printf("[%s] %s: %s\n", event.Message.Timestamp, event.Message.Username, event.Message.Body)
		case event.Type == "error" && event.Error != nil:
			fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", event.Error.Message, event.Error.Code)
		case event.Type == "connected":
			if event.RoomCode != "" {
				fmt.Fprintf(os.Stderr, "Connected (rebound to %s)\n", event.RoomCode)
			} else {
				fmt.Fprintln(os.Stderr, "Connected")
			}
		}
	}
}
