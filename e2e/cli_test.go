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
	"golang.org/x/crypto/bcrypt"

	"github.com/Ayu-zh/placement-connector/internal/api"
	"github.com/Ayu-zh/placement-connector/internal/factory"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/seed"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
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
	binaryPath := filepath.Join(t.TempDir(), "placement-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/placement")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
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

// startTestServer runs the portal server on a free port with demo data
func startTestServer(t *testing.T) string {
	t.Helper()

	identityCfg := identity.DefaultConfig()
	identityCfg.TokenSecret = []byte("e2e-secret")
	identityCfg.BcryptCost = bcrypt.MinCost

	ctx, cancel := context.WithCancel(context.Background())
	app, err := factory.New(ctx, factory.Config{Identity: identityCfg})
	require.NoError(t, err)
	require.NoError(t, app.SeedDemo(ctx))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(app.Router(time.Second), api.DefaultServerConfig(), app.Logger())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
		_ = app.Close()
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
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
	t.Fatalf("server at %s did not become ready", url)
}

func TestCLISessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the CLI binary")
	}
	cli := newCLIRunner(t, startTestServer(t))

	out, err := cli.run("health")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ok")

	// Students cannot use admin-login, and nothing is kept
	out, err = cli.run("admin-login", "--email", "rahul.s@college.edu", "--password", seed.StudentPassword)
	assert.Error(t, err)
	assert.Contains(t, out, "administrator privileges required")
	_, statErr := os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(statErr))

	// Administrators can, and the session survives across invocations
	out, err = cli.run("admin-login", "--email", seed.AdminEmail, "--password", seed.AdminPassword)
	require.NoError(t, err, out)

	out, err = cli.run("whoami")
	require.NoError(t, err, out)
	var who struct {
		State    string          `json:"state"`
		Admin    bool            `json:"admin"`
		Identity *model.Identity `json:"identity"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &who), out)
	assert.Equal(t, "authenticated", who.State)
	assert.True(t, who.Admin)

	out, err = cli.run("stats")
	require.NoError(t, err, out)
	assert.Contains(t, out, "total_students")

	out, err = cli.run("logout")
	require.NoError(t, err, out)

	out, err = cli.run("stats")
	assert.Error(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestCLIStudentIsGatedTwice(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the CLI binary")
	}
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	out, err := cli.run("login", "--email", "priya.p@college.edu", "--password", seed.StudentPassword)
	require.NoError(t, err, out)

	// Local check
	out, err = cli.run("students", "list")
	assert.Error(t, err)
	assert.Contains(t, out, "administrator privileges required")

	// Server check, bypassing the CLI
	token, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodGet, serverURL+"/api/v1/students", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+string(token))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
