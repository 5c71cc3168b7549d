package e2e_test

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/killergame/internal/api"
	"github.com/mcoot/killergame/internal/factory"
	"github.com/mcoot/killergame/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "killer-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/killer")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner for another player sharing the binary
func (r *cliRunner) withTokenFile(t *testing.T) *cliRunner {
	t.Helper()
	other := *r
	other.tokenFile = filepath.Join(t.TempDir(), "token")
	return &other
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the developer's own session out of the tests
	cmd.Env = append(os.Environ(), "KILLER_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runJSON(t *testing.T, result any, args ...string) {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "command %v failed: %s", args, output)
	require.NoError(t, json.Unmarshal([]byte(output), result), "unexpected output: %s", output)
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

func startTestServer(t *testing.T) (*httptest.Server, *factory.TestApp) {
	t.Helper()

	app := factory.NewTestApp(
		testutil.Seed{Nickname: "alice", Password: "pw-a", FirstName: "Alice", Target: "bob", Action: "hand them a spoon"},
		testutil.Seed{Nickname: "bob", Password: "pw-b", FirstName: "Bob", Target: "carol", Action: "make them say banana"},
		testutil.Seed{Nickname: "carol", Password: "pw-c", FirstName: "Carol", Target: "alice", Action: "borrow a pen"},
		testutil.Seed{Nickname: "boss", Password: "pw-boss", Admin: true},
	)

	router := api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		GameController:   app.GameController,
		StandingsService: app.StandingsService,
		Directory:        app.Directory,
		Events:           app.Events,
	})
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = app.Close()
	})
	return server, app
}

type authOutput struct {
	SessionToken string `json:"session_token"`
	Player       *struct {
		Nickname string `json:"nickname"`
		Status   string `json:"status"`
	} `json:"player"`
	Target *struct {
		Nickname string `json:"nickname"`
		Action   string `json:"action"`
	} `json:"target"`
}

type profileOutput struct {
	Player struct {
		Nickname  string `json:"nickname"`
		Status    string `json:"status"`
		KillCount int    `json:"kill_count"`
	} `json:"player"`
	Target *struct {
		Nickname string `json:"nickname"`
		Action   string `json:"action"`
	} `json:"target"`
}

func TestCLIHealth(t *testing.T) {
	server, _ := startTestServer(t)
	cli := newCLIRunner(t, server.URL)

	var health struct {
		Status  string `json:"status"`
		Players int    `json:"players"`
	}
	cli.runJSON(t, &health, "health")
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 4, health.Players)
}

func TestCLILoginAndMe(t *testing.T) {
	server, _ := startTestServer(t)
	cli := newCLIRunner(t, server.URL)

	var auth authOutput
	cli.runJSON(t, &auth, "login", "--nickname", "alice", "--password", "pw-a")
	require.NotEmpty(t, auth.SessionToken)
	require.NotNil(t, auth.Player)
	assert.Equal(t, "alice", auth.Player.Nickname)
	require.NotNil(t, auth.Target)
	assert.Equal(t, "bob", auth.Target.Nickname)

	// The token file now holds the session
	saved, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, auth.SessionToken, string(saved))

	var me profileOutput
	cli.runJSON(t, &me, "me")
	assert.Equal(t, "alice", me.Player.Nickname)
	assert.Equal(t, "alive", me.Player.Status)
	require.NotNil(t, me.Target)
	assert.Equal(t, "hand them a spoon", me.Target.Action)
}

func TestCLILoginWrongPassword(t *testing.T) {
	server, _ := startTestServer(t)
	cli := newCLIRunner(t, server.URL)

	output, err := cli.run("login", "--nickname", "alice", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")

	_, statErr := os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCLIKillFlow(t *testing.T) {
	server, _ := startTestServer(t)
	alice := newCLIRunner(t, server.URL)
	carol := alice.withTokenFile(t)

	var auth authOutput
	alice.runJSON(t, &auth, "login", "--nickname", "alice", "--password", "pw-a")
	carol.runJSON(t, &auth, "login", "--nickname", "carol", "--password", "pw-c")

	var kill struct {
		Victim string `json:"victim"`
		Target *struct {
			Nickname string `json:"nickname"`
		} `json:"target"`
	}
	alice.runJSON(t, &kill, "kill")
	assert.Equal(t, "bob", kill.Victim)
	require.NotNil(t, kill.Target)
	assert.Equal(t, "carol", kill.Target.Nickname)

	var status struct {
		Status string `json:"status"`
	}
	carol.runJSON(t, &status, "killed")
	assert.Equal(t, "dead", status.Status)

	// Carol is dead and can no longer act
	output, err := carol.run("kill")
	require.Error(t, err)
	assert.Contains(t, output, "ALREADY_DEAD")

	var podium struct {
		GameOver bool `json:"game_over"`
		Podium   []struct {
			Nickname string `json:"nickname"`
		} `json:"podium"`
	}
	alice.runJSON(t, &podium, "podium")
	assert.True(t, podium.GameOver)
	require.Len(t, podium.Podium, 3)
	assert.Equal(t, "alice", podium.Podium[0].Nickname)

	var medals struct {
		Medals []struct {
			Medal     string   `json:"medal"`
			Nicknames []string `json:"nicknames"`
		} `json:"medals"`
	}
	alice.runJSON(t, &medals, "kills")
	require.Len(t, medals.Medals, 1)
	assert.Equal(t, "gold", medals.Medals[0].Medal)
	assert.Equal(t, []string{"alice"}, medals.Medals[0].Nicknames)

	var leaderboard struct {
		Entries []struct {
			Nickname  string `json:"nickname"`
			KillCount int    `json:"kill_count"`
		} `json:"entries"`
	}
	alice.runJSON(t, &leaderboard, "leaderboard", "--limit", "1")
	require.Len(t, leaderboard.Entries, 1)
	assert.Equal(t, "alice", leaderboard.Entries[0].Nickname)
	assert.Equal(t, 2, leaderboard.Entries[0].KillCount)
}

func TestCLIGiveUp(t *testing.T) {
	server, _ := startTestServer(t)
	bob := newCLIRunner(t, server.URL)

	var auth authOutput
	bob.runJSON(t, &auth, "login", "--nickname", "bob", "--password", "pw-b")

	var status struct {
		Status string `json:"status"`
	}
	bob.runJSON(t, &status, "giveup")
	assert.Equal(t, "gaveup", status.Status)

	var me profileOutput
	bob.runJSON(t, &me, "me")
	assert.Equal(t, "gaveup", me.Player.Status)
	assert.Nil(t, me.Target)
}

func TestCLIAdmin(t *testing.T) {
	server, _ := startTestServer(t)
	boss := newCLIRunner(t, server.URL)
	alice := boss.withTokenFile(t)

	var auth authOutput
	boss.runJSON(t, &auth, "login", "--nickname", "boss", "--password", "pw-boss")
	alice.runJSON(t, &auth, "login", "--nickname", "alice", "--password", "pw-a")

	var report struct {
		Healthy      bool `json:"healthy"`
		Participants int  `json:"participants"`
		SingleCycle  bool `json:"single_cycle"`
	}
	boss.runJSON(t, &report, "admin", "chain")
	assert.True(t, report.Healthy)
	assert.Equal(t, 3, report.Participants)
	assert.True(t, report.SingleCycle)

	var players struct {
		Count int `json:"count"`
	}
	boss.runJSON(t, &players, "admin", "players")
	assert.Equal(t, 4, players.Count)

	var seed struct {
		Assignments []struct {
			Hunter string `json:"hunter"`
			Target string `json:"target"`
		} `json:"assignments"`
	}
	boss.runJSON(t, &seed, "admin", "seed")
	assert.Len(t, seed.Assignments, 3)

	output, err := alice.run("admin", "chain")
	require.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")
}

func TestCLIMaintenanceLoginWhileBackendDown(t *testing.T) {
	server, app := startTestServer(t)
	cli := newCLIRunner(t, server.URL)

	app.Flaky.FailReads(true)

	var auth authOutput
	cli.runJSON(t, &auth, "login",
		"--nickname", factory.TestMaintenanceNickname,
		"--password", factory.TestMaintenancePassword,
	)
	assert.NotEmpty(t, auth.SessionToken)
	assert.Nil(t, auth.Player)

	output, err := cli.run("admin", "chain")
	require.Error(t, err)
	assert.Contains(t, output, "BACKEND_UNAVAILABLE")
	assert.Contains(t, output, "retry later")
}

func TestCLILogout(t *testing.T) {
	server, _ := startTestServer(t)
	cli := newCLIRunner(t, server.URL)

	var auth authOutput
	cli.runJSON(t, &auth, "login", "--nickname", "alice", "--password", "pw-a")

	output, err := cli.run("logout")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Logged out")

	_, statErr := os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(statErr))

	// The revoked token no longer works even if passed explicitly
	cmd := exec.Command(cli.binaryPath, "--server", cli.serverURL, "--token", auth.SessionToken, "--output", "json", "me")
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	assert.True(t, strings.Contains(string(out), "UNAUTHORIZED"), string(out))
}
