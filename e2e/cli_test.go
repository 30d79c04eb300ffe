package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectr/roomserver/internal/api"
	"github.com/projectr/roomserver/internal/factory"
	"github.com/projectr/roomserver/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	serverURL   string
	sessionFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "roomctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/roomctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:  binaryPath,
		serverURL:   serverURL,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--session-file", r.sessionFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Registry: app.Registry,
		Storage:  app.Storage,
		Random:   app.Random,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type roomResponse struct {
	OK       bool   `json:"ok"`
	RoomCode string `json:"roomCode"`
	Token    string `json:"token"`
	Side     string `json:"side"`
	WSURL    string `json:"wsUrl"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func TestCLIEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	server := startTestServer(t)
	defer server.shutdown()

	host := newCLIRunner(t, server.addr)
	guest := newCLIRunner(t, server.addr)

	t.Run("health", func(t *testing.T) {
		output, err := host.run("health")
		require.NoError(t, err, "output: %s", output)

		var health healthResponse
		require.NoError(t, json.Unmarshal([]byte(output), &health))
		assert.Equal(t, "ok", health.Status)
	})

	var created roomResponse

	t.Run("create room", func(t *testing.T) {
		output, err := host.run("room", "create", "--nickname", "Alice")
		require.NoError(t, err, "output: %s", output)

		require.NoError(t, json.Unmarshal([]byte(output), &created))
		assert.True(t, created.OK)
		assert.Len(t, created.RoomCode, 5)
		assert.Equal(t, "p1", created.Side)
		assert.NotEmpty(t, created.Token)

		// The session was saved for watch
		data, err := os.ReadFile(host.sessionFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), created.RoomCode)
	})

	t.Run("join room", func(t *testing.T) {
		output, err := guest.run("room", "join", created.RoomCode, "--nickname", "Bob")
		require.NoError(t, err, "output: %s", output)

		var joined roomResponse
		require.NoError(t, json.Unmarshal([]byte(output), &joined))
		assert.True(t, joined.OK)
		assert.Equal(t, created.RoomCode, joined.RoomCode)
		assert.Equal(t, "p2", joined.Side)
	})

	t.Run("join full room fails", func(t *testing.T) {
		third := newCLIRunner(t, server.addr)
		output, err := third.run("room", "join", created.RoomCode)
		require.Error(t, err)
		assert.Contains(t, output, "room_full")
	})

	t.Run("join unknown room fails", func(t *testing.T) {
		output, err := guest.run("room", "join", "ZZZZ9")
		require.Error(t, err)
		assert.Contains(t, output, "room_not_found")
	})

	t.Run("join invalid code fails", func(t *testing.T) {
		output, err := guest.run("room", "join", "x")
		require.Error(t, err)
		assert.Contains(t, output, "bad_request")
	})
}
