package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/jrsteele09/go-travels-client/internal/apitest"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t           *testing.T
	api         *apitest.Server
	sessionFile string
	passwords   []string
	stderr      bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	c := &cli{
		t:           t,
		api:         apitest.New(t),
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
	t.Setenv("TRAVELS_CONFIG", "")
	t.Setenv("TRAVELS_API_URL", c.api.URL)
	t.Setenv("TRAVELS_SESSION_FILE", c.sessionFile)
	t.Setenv("TRAVELS_SESSION_PASSPHRASE", "correct horse")
	t.Setenv("TRAVELS_LOG_LEVEL", "off")
	return c
}

func (c *cli) env(stdout *bytes.Buffer) environment {
	return environment{
		stdout: stdout,
		stderr: &c.stderr,
		readPassword: func(prompt string) (string, error) {
			if len(c.passwords) == 0 {
				return "", errors.New("no password queued")
			}
			pw := c.passwords[0]
			c.passwords = c.passwords[1:]
			return pw, nil
		},
	}
}

// run executes one invocation and returns its stdout.
func (c *cli) run(args ...string) (string, error) {
	var stdout bytes.Buffer
	err := run(context.Background(), args, c.env(&stdout))
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "travelsctl %v", args)
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

type identity struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id"`
	IsAdmin       bool   `json:"is_admin"`
	CanRefresh    bool   `json:"can_refresh"`
}

func TestHelpListsCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("help")
	for _, name := range []string{"login", "buses", "verify-payment", "admin-bus-create", "scan", "mark-used"} {
		require.Contains(t, out, name)
	}
	require.Contains(t, out, "--config")

	out = c.mustRun("book", "--help")
	require.Contains(t, out, "travelsctl book [flags] <seat-id>")
}

func TestUnknownCommandAndBadArgs(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("teleport")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = c.run("bus", "first")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = c.run("cancel")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = c.run("buses", "--bogus")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestLoginPersistsSealedSession(t *testing.T) {
	c := newCLI(t)
	userID := c.api.AddUser("jane", "s3cret!", "jane@example.com", false)

	who := decode[identity](t, c.mustRun("whoami"))
	require.False(t, who.Authenticated)

	c.passwords = []string{"s3cret!"}
	who = decode[identity](t, c.mustRun("login", "-u", "jane"))
	require.True(t, who.Authenticated)
	require.True(t, who.CanRefresh)
	require.Equal(t, strconv.Itoa(userID), who.UserID)

	raw, err := os.ReadFile(c.sessionFile)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"box"`, "session file is sealed")

	who = decode[identity](t, c.mustRun("whoami"))
	require.True(t, who.Authenticated, "a later invocation restores the session")

	bookings := decode[[]map[string]any](t, c.mustRun("bookings"))
	require.Empty(t, bookings)

	c.mustRun("logout")
	who = decode[identity](t, c.mustRun("whoami"))
	require.False(t, who.Authenticated)
}

func TestLoginFailure(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("jane", "s3cret!", "jane@example.com", false)

	_, err := c.run("login", "-u", "jane", "-p", "nope")
	require.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	_, err = c.run("login", "-u", "jane")
	require.Error(t, err, "no password given and none to prompt for")
}

func TestExpiredSessionIsRefreshedAcrossInvocations(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("jane", "pw", "jane@example.com", false)
	c.mustRun("login", "-u", "jane", "-p", "pw")

	c.api.ExpireAccessTokens()
	c.mustRun("profile")
	require.Equal(t, 1, c.api.RefreshCalls())

	c.mustRun("profile")
	require.Equal(t, 1, c.api.RefreshCalls(), "the refreshed token was persisted")
}

func TestRevokedSessionPrintsReloginHint(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("jane", "pw", "jane@example.com", false)
	c.mustRun("login", "-u", "jane", "-p", "pw")

	c.api.ExpireAccessTokens()
	c.api.RevokeRefreshTokens()

	_, err := c.run("bookings")
	require.True(t, errors.Is(err, errors.ErrRefreshFailed))
	require.True(t, errors.Is(err, errors.ErrSessionExpired))
	require.Contains(t, c.stderr.String(), "travelsctl login")
	require.Contains(t, c.stderr.String(), "/login")

	who := decode[identity](t, c.mustRun("whoami"))
	require.False(t, who.Authenticated)
}

func TestRegisterAndResetPassword(t *testing.T) {
	c := newCLI(t)

	c.passwords = []string{"pw1", "pw2"}
	_, err := c.run("register", "-u", "sam", "--email", "sam@example.com")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	c.passwords = []string{"pw1", "pw1"}
	out := c.mustRun("register", "-u", "sam", "--email", "sam@example.com")
	require.Contains(t, out, "User registered successfully")

	c.mustRun("forgot-password", "--email", "sam@example.com")
	uid, token, ok := c.api.ResetToken("sam@example.com")
	require.True(t, ok)

	c.passwords = []string{"pw3", "pw3"}
	c.mustRun("reset-password", "--uid", uid, "--token", token)
	require.Equal(t, "pw3", c.api.Password("sam"))
}

func TestBookAndDownloadTicket(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("jane", "pw", "jane@example.com", false)
	_, seats := c.api.AddBus(apitest.BusSpec{Name: "Night Rider", Number: "N1", Origin: "Pune", Destination: "Goa", Seats: 2, Price: "300.00"})
	c.mustRun("login", "-u", "jane", "-p", "pw")

	buses := decode[[]map[string]any](t, c.mustRun("buses", "--origin", "pune"))
	require.Len(t, buses, 1)

	booking := decode[map[string]any](t, c.mustRun("book", strconv.Itoa(seats[0])))
	bookingID := strconv.Itoa(int(booking["id"].(float64)))

	pdfPath := filepath.Join(t.TempDir(), "ticket.pdf")
	c.mustRun("ticket", bookingID, "--out", pdfPath)
	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	out := c.mustRun("cancel", bookingID)
	require.Contains(t, out, "cancelled")
}

func TestPayThenVerify(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("jane", "pw", "jane@example.com", false)
	_, seats := c.api.AddBus(apitest.BusSpec{Name: "Night Rider", Number: "N1", Origin: "Pune", Destination: "Goa", Seats: 1, Price: "300.00"})
	c.mustRun("login", "-u", "jane", "-p", "pw")

	order := decode[map[string]any](t, c.mustRun("pay", strconv.Itoa(seats[0])))
	orderID := order["order_id"].(string)

	c.mustRun("verify-payment", "--order", orderID, "--payment", "pay_9",
		"--signature", apitest.SignPayment(orderID, "pay_9"))

	status := decode[map[string]any](t, c.mustRun("payment-status", orderID))
	require.Equal(t, "SUCCESS", status["status"])
}

func TestProfileUpdateKeepsOmittedFields(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("jane", "pw", "jane@example.com", false)
	c.mustRun("login", "-u", "jane", "-p", "pw")

	avatar := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(avatar, []byte("PNG"), 0o600))

	profile := decode[map[string]any](t, c.mustRun("profile-update", "--first-name", "Jane", "--avatar", avatar))
	require.Equal(t, "Jane", profile["first_name"])
	require.Equal(t, "jane@example.com", profile["email"])
	require.Equal(t, c.api.URL+"/media/avatars/me.png", profile["avatar_url"])
	require.Equal(t, []byte("PNG"), c.api.Avatar("jane"))
}

func TestAdminFlow(t *testing.T) {
	c := newCLI(t)
	c.api.AddUser("root", "pw", "root@example.com", true)
	c.mustRun("login", "-u", "root", "-p", "pw")

	created := decode[map[string]any](t, c.mustRun("admin-bus-create",
		"--name", "Sea Breeze", "--number", "GA1", "--origin", "Goa", "--destination", "Pune",
		"--start", "21:00", "--reach", "06:00", "--seats", "2", "--price", "700.00"))
	busID := strconv.Itoa(int(created["id"].(float64)))

	updated := decode[map[string]any](t, c.mustRun("admin-bus-update", busID, "--price", "650.00", "--active=false"))
	require.Equal(t, "650.00", updated["price"])
	require.Equal(t, "Sea Breeze", updated["bus_name"])
	require.Equal(t, false, updated["is_active"])

	c.mustRun("admin-bus-update", busID, "--active")
	bus := decode[map[string]any](t, c.mustRun("bus", busID))
	require.Equal(t, true, bus["is_active"])
	seats := bus["seats"].([]any)
	seatID := strconv.Itoa(int(seats[0].(map[string]any)["id"].(float64)))

	booking := decode[map[string]any](t, c.mustRun("book", seatID))
	ticketID, ok := c.api.TicketID(int(booking["id"].(float64)))
	require.True(t, ok)

	check := decode[map[string]any](t, c.mustRun("scan", c.api.TicketURL(ticketID)))
	require.Equal(t, "ACTIVE", check["status"])
	require.Equal(t, true, check["journey_today"])

	c.mustRun("mark-used", strconv.Itoa(ticketID))
	_, err := c.run("mark-used", strconv.Itoa(ticketID))
	require.Error(t, err)

	dash := decode[map[string]any](t, c.mustRun("dashboard"))
	require.EqualValues(t, 1, dash["total_bookings"])

	c.mustRun("admin-bus-delete", busID)
	_, err = c.run("bus", busID)
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
