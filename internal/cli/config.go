package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Output      string
}

// Session is the room credentials saved after create/join so watch can
// reconnect without re-entering them
type Session struct {
	RoomCode string `json:"roomCode"`
	Token    string `json:"token"`
	Side     string `json:"side"`
	WSURL    string `json:"wsUrl"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("ROOMSRV_SERVER", "http://localhost:8080"),
		SessionFile: getEnvOrDefault("ROOMSRV_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
	}
}

// LoadSession reads the saved room session, or returns nil if none exists
func (c *Config) LoadSession() (*Session, error) {
	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// SaveSession saves the room session to the session file
func (c *Config) SaveSession(sess Session) error {
	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roomctl/session.json"
	}
	return filepath.Join(home, ".roomctl", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
