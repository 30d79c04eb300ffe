package cli

import (
	"bufio"
	"encoding/json"
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

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch [code] [token]",
		Short: "Attach to a room's stream and chat from the terminal",
		Long: `Connect to the room's websocket stream and print events in real-time.

With no arguments the session saved by 'room create' or 'room join' is used.

Typed lines are sent as chat. Shortcuts:
  /start   start the game (host only)
  /leave   leave the room
  /quit    disconnect without leaving

Press Ctrl+C to disconnect.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, token, err := resolveCredentials(args)
			if err != nil {
				return err
			}
			return watchRoom(code, token, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output raw events as JSON lines")

	return cmd
}

func resolveCredentials(args []string) (code, token string, err error) {
	if len(args) == 2 {
		return strings.ToUpper(strings.TrimSpace(args[0])), args[1], nil
	}

	sess, err := cfg.LoadSession()
	if err != nil {
		return "", "", err
	}
	if sess == nil {
		return "", "", fmt.Errorf("no saved session; run 'roomctl room create' or pass <code> <token>")
	}
	return sess.RoomCode, sess.Token, nil
}

// streamURL converts the configured server URL into the websocket endpoint
func streamURL(code, token string) (string, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	default:
		base.Scheme = "ws"
	}
	base.Path = "/ws"

	q := url.Values{}
	q.Set("code", code)
	q.Set("token", token)
	base.RawQuery = q.Encode()

	return base.String(), nil
}

func watchRoom(code, token string, jsonOutput bool) error {
	wsURL, err := streamURL(code, token)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Printf("Connected to room %s\n", code)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printEvent(data, jsonOutput)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	inputCh := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		select {
		case <-done:
			if !jsonOutput {
				fmt.Println("Disconnected.")
			}
			return nil

		case <-sigCh:
			return sendClose(conn, done)

		case line, ok := <-inputCh:
			if !ok {
				return sendClose(conn, done)
			}
			if err := handleInput(conn, line); err != nil {
				return err
			}
			if strings.TrimSpace(line) == "/quit" {
				return sendClose(conn, done)
			}
		}
	}
}

func handleInput(conn *websocket.Conn, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || line == "/quit" {
		return nil
	}

	var msg map[string]string
	switch line {
	case "/start":
		msg = map[string]string{"type": "start_game"}
	case "/leave":
		msg = map[string]string{"type": "leave_room"}
	default:
		msg = map[string]string{"type": "chat", "text": line}
	}

	return conn.WriteJSON(msg)
}

func sendClose(conn *websocket.Conn, done chan struct{}) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteMessage(websocket.CloseMessage, msg)

	select {
	case <-done:
	case <-time.After(time.Second):
	}
	return nil
}

// event mirrors the server message fields watch cares about
type event struct {
	Type         string `json:"type"`
	FromSide     string `json:"fromSide"`
	Text         string `json:"text"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	Reason       string `json:"reason"`
	YourSide     string `json:"yourSide"`
	ServerTimeMs int64  `json:"serverTimeMs"`
	Snapshot     *struct {
		Phase   string `json:"phase"`
		Players []struct {
			Side        string `json:"side"`
			Nickname    string `json:"nickname"`
			IsHost      bool   `json:"isHost"`
			IsConnected bool   `json:"isConnected"`
		} `json:"players"`
		Result *struct {
			WinnerSide *string `json:"winnerSide"`
			Reason     string  `json:"reason"`
		} `json:"result"`
	} `json:"snapshot"`
}

func printEvent(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var ev event
	if err := json.Unmarshal(data, &ev); err != nil {
		fmt.Printf("?? %s\n", string(data))
		return
	}

	switch ev.Type {
	case "hello_ok":
		fmt.Printf("** attached as %s\n", ev.YourSide)
		printSnapshot(&ev)

	case "snapshot":
		printSnapshot(&ev)

	case "chat":
		if ev.FromSide == "system" {
			fmt.Printf("** %s\n", ev.Text)
		} else {
			fmt.Printf("[%s] %s\n", ev.FromSide, ev.Text)
		}

	case "error":
		fmt.Printf("!! %s: %s\n", ev.Code, ev.Message)

	case "room_closed":
		fmt.Printf("** room closed (%s): %s\n", ev.Reason, ev.Message)

	default:
		fmt.Printf("?? %s\n", string(data))
	}
}

func printSnapshot(ev *event) {
	if ev.Snapshot == nil {
		return
	}

	fmt.Printf("-- phase: %s\n", ev.Snapshot.Phase)
	for _, p := range ev.Snapshot.Players {
		status := "offline"
		if p.IsConnected {
			status = "online"
		}
		role := ""
		if p.IsHost {
			role = " (host)"
		}
		fmt.Printf("   %s %s%s [%s]\n", p.Side, p.Nickname, role, status)
	}
	if ev.Snapshot.Result != nil {
		winner := "nobody"
		if ev.Snapshot.Result.WinnerSide != nil {
			winner = *ev.Snapshot.Result.WinnerSide
		}
		fmt.Printf("   result: %s wins (%s)\n", winner, ev.Snapshot.Result.Reason)
	}
}
