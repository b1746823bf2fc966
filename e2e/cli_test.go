package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkaymak/roomchat/internal/api"
	"github.com/dkaymak/roomchat/internal/factory"
	"github.com/dkaymak/roomchat/internal/services/auth"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "roomchat-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/roomchat")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
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
	server   *http.Server
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		AuthConfig: auth.Config{Secret: "e2e-test-secret"},
		Logger:     logger,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		RoomController: app.RoomController,
		MessageService: app.MessageService,
		HubManager:     app.HubManager,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
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
type userResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	BirthDate   *string  `json:"birth_date"`
	Rooms       []string `json:"rooms"`
	CurrentRoom *string  `json:"current_room"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type roomResponse struct {
	Code        string `json:"room_code"`
	HasPassword bool   `json:"has_password"`
	Members     []struct {
		UserID string `json:"user_id"`
		Color  string `json:"color"`
	} `json:"members"`
}

type generatedCodeResponse struct {
	RoomCode string `json:"room_code"`
}

type chatMessage struct {
	Body     string `json:"message"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

type messagesPageResponse struct {
	Messages    []chatMessage `json:"messages"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	HasMore     bool          `json:"has_more"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type wireEvent struct {
	Type    string       `json:"type"`
	Message *chatMessage `json:"message,omitempty"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AuthCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "secret123", "--birth-date", "1990-06-15")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "alice", authResp.User.Username)
	require.NotNil(t, authResp.User.BirthDate)
	assert.Equal(t, "1990-06-15", *authResp.User.BirthDate)
	assert.NotEmpty(t, authResp.Token)

	// Get me (token saved in token file by register)
	output, err = cli.run("auth", "me")
	require.NoError(t, err, "output: %s", output)

	var me userResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, authResp.User.ID, me.ID)

	// Login with the same credentials
	output, err = cli.run("auth", "login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var loginResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loginResp))
	assert.Equal(t, authResp.User.ID, loginResp.User.ID)
	assert.NotEmpty(t, loginResp.Token)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create two accounts
	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	var aliceAuth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &aliceAuth))

	output, err = cli.run("auth", "register", "--user", "bob", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	var bobAuth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &bobAuth))

	// Generate a code and create a room with it
	output, err = cli.runWithToken(aliceAuth.Token, "room", "generate-code")
	require.NoError(t, err, "output: %s", output)
	var gen generatedCodeResponse
	require.NoError(t, json.Unmarshal([]byte(output), &gen))
	require.Len(t, gen.RoomCode, 12)

	output, err = cli.runWithToken(aliceAuth.Token, "room", "create", gen.RoomCode, "--password", "hunter2")
	require.NoError(t, err, "output: %s", output)
	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, gen.RoomCode, room.Code)
	assert.True(t, room.HasPassword)
	require.Len(t, room.Members, 1)
	assert.Equal(t, aliceAuth.User.ID, room.Members[0].UserID)
	assert.NotEmpty(t, room.Members[0].Color)

	// Bob joins with the password
	output, err = cli.runWithToken(bobAuth.Token, "room", "join", gen.RoomCode, "--password", "hunter2")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Len(t, room.Members, 2)

	// Wrong password is rejected
	output, err = cli.runWithToken(bobAuth.Token, "room", "join", gen.RoomCode, "--password", "wrong")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "password")

	// Get room
	output, err = cli.runWithToken(aliceAuth.Token, "room", "get", gen.RoomCode)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, gen.RoomCode, room.Code)
}

func TestCLI_MessageFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	var aliceAuth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &aliceAuth))

	const roomCode = "CHATROOM0001"
	output, err = cli.runWithToken(aliceAuth.Token, "room", "create", roomCode)
	require.NoError(t, err, "output: %s", output)

	// Stream the room with --send and pipe messages through stdin
	cmd := exec.Command(cli.binaryPath,
		"--server", cli.serverURL,
		"--token", aliceAuth.Token,
		"listen", roomCode, "--send", "--json")
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Signal(syscall.SIGINT)
		_ = cmd.Wait()
	}()

	bodies := []string{"hello room", "second message"}
	for _, body := range bodies {
		_, err = io.WriteString(stdin, body+"\n")
		require.NoError(t, err)
	}
	require.NoError(t, stdin.Close())

	// Echoed events arrive over the socket in send order
	var received []string
	scanner := bufio.NewScanner(stdout)
	deadline := time.After(5 * time.Second)
	lines := make(chan string)
	go func() {
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	for len(received) < len(bodies) {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream ended early, received: %v", received)
			}
			var event wireEvent
			if json.Unmarshal([]byte(line), &event) == nil && event.Type == "message" && event.Message != nil {
				received = append(received, event.Message.Body)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for messages, received: %v", received)
		}
	}
	assert.Equal(t, bodies, received)

	// History reflects the sent messages
	output, err = cli.runWithToken(aliceAuth.Token, "messages", roomCode)
	require.NoError(t, err, "output: %s", output)

	var page messagesPageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &page))
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "hello room", page.Messages[0].Body)
	assert.Equal(t, "second message", page.Messages[1].Body)
	assert.Equal(t, "alice", page.Messages[0].Username)
	assert.Equal(t, 1, page.CurrentPage)
	assert.False(t, page.HasMore)
}

func TestCLI_MessagePagination(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	var aliceAuth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &aliceAuth))

	const roomCode = "CHATROOM0002"
	output, err = cli.runWithToken(aliceAuth.Token, "room", "create", roomCode)
	require.NoError(t, err, "output: %s", output)

	// Seed history through the streaming send path
	cmd := exec.Command(cli.binaryPath,
		"--server", cli.serverURL,
		"--token", aliceAuth.Token,
		"listen", roomCode, "--send", "--json")
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Signal(syscall.SIGINT)
		_ = cmd.Wait()
	}()

	const n = 7
	for i := 1; i <= n; i++ {
		_, err = io.WriteString(stdin, fmt.Sprintf("msg-%d\n", i))
		require.NoError(t, err)
	}
	require.NoError(t, stdin.Close())

	// Wait for all echoes so history is fully persisted
	seen := 0
	scanner := bufio.NewScanner(stdout)
	for seen < n && scanner.Scan() {
		var event wireEvent
		if json.Unmarshal([]byte(scanner.Text()), &event) == nil && event.Type == "message" {
			seen++
		}
	}
	require.Equal(t, n, seen)

	// Page 1 holds the newest messages
	output, err = cli.runWithToken(aliceAuth.Token, "messages", roomCode, "--page", "1", "--limit", "5")
	require.NoError(t, err, "output: %s", output)
	var page messagesPageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &page))
	require.Len(t, page.Messages, 5)
	assert.Equal(t, "msg-3", page.Messages[0].Body)
	assert.Equal(t, "msg-7", page.Messages[4].Body)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasMore)

	// Page 2 holds the remainder
	output, err = cli.runWithToken(aliceAuth.Token, "messages", roomCode, "--page", "2", "--limit", "5")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &page))
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "msg-1", page.Messages[0].Body)
	assert.False(t, page.HasMore)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Get account info without auth
	output, err := cli.run("auth", "me")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "authentication required")

	// Register then look up a room that does not exist
	output, err = cli.run("auth", "register", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err)
	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))

	output, err = cli.runWithToken(authResp.Token, "room", "get", "NOSUCHROOM12")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	// Invalid room code on create
	output, err = cli.runWithToken(authResp.Token, "room", "create", "short")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "12 alphanumeric")
}
