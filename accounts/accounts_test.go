package accounts_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/jrsteele09/go-travels-client/accounts"
	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/apitest"
	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-travels-client/sessions/repofakes"
	"github.com/jrsteele09/go-travels-client/token/refresh"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api       *apitest.Server
	store     *sessions.Store
	repo      *fakesessionrepo.FakeSessionRepo
	client    *client.Client
	service   *accounts.Service
	redirects []string
}

func setup(t *testing.T, session sessions.Session, opts ...apitest.Option) *harness {
	t.Helper()
	h := &harness{api: apitest.New(t, opts...)}
	h.repo = fakesessionrepo.NewFakeSessionRepoWith(session)
	h.store = sessions.NewStore(h.repo)

	var err error
	h.client, err = client.New(h.api.URL, h.store, refresh.New(h.api.URL),
		client.WithRedirector(client.RedirectFunc(func(route string) {
			h.redirects = append(h.redirects, route)
		})),
	)
	require.NoError(t, err)

	h.service, err = accounts.NewService(h.client, h.store)
	require.NoError(t, err)
	return h
}

func TestNewService_Validation(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())

	_, err := accounts.NewService(nil, store)
	require.True(t, errors.Is(err, errors.ErrInvalidConfig))

	_, err = accounts.NewService(&client.Client{}, nil)
	require.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestLogin_StoresSessionAndAttachesToken(t *testing.T) {
	h := setup(t, sessions.Session{})
	userID := h.api.AddUser("jane", "s3cret!", "jane@example.com", false)

	session, err := h.service.Login(context.Background(), " jane ", "s3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.False(t, session.IsAdmin)
	require.Equal(t, session, h.store.Current())
	require.Equal(t, 1, h.repo.Saves())

	require.Equal(t, strconv.Itoa(userID), session.UserID)

	require.NoError(t, h.client.Get(context.Background(), "/api/profile/", nil, nil))
	profileCalls := h.api.RequestsTo("/api/profile/")
	require.Len(t, profileCalls, 1)
	require.Equal(t, "Bearer "+session.AccessToken, profileCalls[0].Authorization)
}

func TestLogin_AdminFlagFromBody(t *testing.T) {
	h := setup(t, sessions.Session{})
	h.api.AddUser("root", "pw", "root@example.com", true)

	session, err := h.service.Login(context.Background(), "root", "pw")
	require.NoError(t, err)
	require.True(t, session.IsAdmin)
}

func TestLogin_AdminFlagFromClaims(t *testing.T) {
	h := setup(t, sessions.Session{}, apitest.WithoutAdminFlag())
	h.api.AddUser("root", "pw", "root@example.com", true)

	session, err := h.service.Login(context.Background(), "root", "pw")
	require.NoError(t, err)
	require.True(t, session.IsAdmin)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := setup(t, sessions.Session{})
	h.api.AddUser("jane", "s3cret!", "jane@example.com", false)

	_, err := h.service.Login(context.Background(), "jane", "wrong")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidCredentials))
	require.Contains(t, err.Error(), "Invalid credentials")
	require.True(t, h.store.Current().IsEmpty())
	require.Zero(t, h.api.RefreshCalls())
}

func TestLogin_MissingCredentials(t *testing.T) {
	h := setup(t, sessions.Session{})

	_, err := h.service.Login(context.Background(), "  ", "pw")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	_, err = h.service.Login(context.Background(), "jane", "")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Empty(t, h.api.Requests())
}

func TestLogin_StaleTokenIsHarmless(t *testing.T) {
	h := setup(t, sessions.Session{AccessToken: "STALE", RefreshToken: "OLD"})
	h.api.AddUser("jane", "s3cret!", "jane@example.com", false)

	session, err := h.service.Login(context.Background(), "jane", "s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "STALE", session.AccessToken)

	logins := h.api.RequestsTo(accounts.LoginPath)
	require.Len(t, logins, 1)
	require.Equal(t, "Bearer STALE", logins[0].Authorization)
	require.Zero(t, h.api.RefreshCalls())
	require.Empty(t, h.redirects)
}

func TestLogin_StaleTokenWithStrictServerRefreshesFirst(t *testing.T) {
	h := setup(t, sessions.Session{}, apitest.WithStrictPublicAuth())
	h.api.AddUser("jane", "s3cret!", "jane@example.com", false)

	first, err := h.service.Login(context.Background(), "jane", "s3cret!")
	require.NoError(t, err)

	h.api.ExpireAccessTokens()
	second, err := h.service.Login(context.Background(), "jane", "s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, first.AccessToken, second.AccessToken)

	require.Equal(t, 1, h.api.RefreshCalls())
	require.Len(t, h.api.RequestsTo(accounts.LoginPath), 3)
}

func TestLogout(t *testing.T) {
	h := setup(t, sessions.Session{AccessToken: "A1", RefreshToken: "R1", IsAdmin: true})

	require.NoError(t, h.service.Logout())
	require.True(t, h.store.Current().IsEmpty())
	require.Equal(t, 1, h.repo.Clears())
	require.Empty(t, h.api.Requests())

	require.NoError(t, h.service.Logout())
}

func TestRegister(t *testing.T) {
	h := setup(t, sessions.Session{})

	msg, err := h.service.Register(context.Background(), accounts.RegisterRequest{
		Username: "newbie",
		Email:    "newbie@example.com",
		Password: "pw",
	})
	require.NoError(t, err)
	require.Equal(t, "User registered successfully", msg)
	require.True(t, h.store.Current().IsEmpty(), "registering does not sign in")

	_, err = h.service.Register(context.Background(), accounts.RegisterRequest{
		Username: "newbie",
		Email:    "other@example.com",
		Password: "pw",
	})
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, client.StatusCode(err))
	require.Contains(t, err.Error(), "username: A user with that username already exists.")
}

func TestRegister_Validation(t *testing.T) {
	h := setup(t, sessions.Session{})

	testCases := []struct {
		name string
		req  accounts.RegisterRequest
	}{
		{name: "no username", req: accounts.RegisterRequest{Email: "a@example.com", Password: "pw"}},
		{name: "no email", req: accounts.RegisterRequest{Username: "a", Password: "pw"}},
		{name: "bad email", req: accounts.RegisterRequest{Username: "a", Email: "not-an-email", Password: "pw"}},
		{name: "no password", req: accounts.RegisterRequest{Username: "a", Email: "a@example.com"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.service.Register(context.Background(), tc.req)
			require.True(t, errors.Is(err, errors.ErrInvalidRequest))
		})
	}
	require.Empty(t, h.api.Requests())
}

func TestPasswordReset(t *testing.T) {
	h := setup(t, sessions.Session{})
	h.api.AddUser("jane", "old", "jane@example.com", false)

	msg, err := h.service.RequestPasswordReset(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.Contains(t, msg, "reset link")

	uid, tok, ok := h.api.ResetToken("jane@example.com")
	require.True(t, ok)

	_, err = h.service.ConfirmPasswordReset(context.Background(), accounts.PasswordReset{
		UID: uid, Token: tok, Password: "new", ConfirmPassword: "different",
	})
	require.True(t, errors.Is(err, accounts.PasswordsDontMatchErr))

	_, err = h.service.ConfirmPasswordReset(context.Background(), accounts.PasswordReset{
		UID: uid, Token: "forged", Password: "new", ConfirmPassword: "new",
	})
	require.True(t, errors.Is(err, accounts.ResetLinkInvalidErr))

	_, err = h.service.ConfirmPasswordReset(context.Background(), accounts.PasswordReset{
		UID: uid, Token: tok, Password: "new", ConfirmPassword: "new",
	})
	require.NoError(t, err)
	require.Equal(t, "new", h.api.Password("jane"))

	_, err = h.service.Login(context.Background(), "jane", "new")
	require.NoError(t, err)
}

func TestRequestPasswordReset_UnknownEmailLooksTheSame(t *testing.T) {
	h := setup(t, sessions.Session{})

	msg, err := h.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.Contains(t, msg, "reset link")

	_, err = h.service.RequestPasswordReset(context.Background(), "")
	require.True(t, errors.Is(err, accounts.EmailRequiredErr))
}

func TestWhoami(t *testing.T) {
	h := setup(t, sessions.Session{})
	userID := h.api.AddUser("jane", "pw", "jane@example.com", false)

	id := h.service.Whoami()
	require.False(t, id.Authenticated)
	require.False(t, id.CanRefresh)

	_, err := h.service.Login(context.Background(), "jane", "pw")
	require.NoError(t, err)

	id = h.service.Whoami()
	require.True(t, id.Authenticated)
	require.True(t, id.CanRefresh)
	require.Equal(t, strconv.Itoa(userID), id.UserID)
	require.False(t, id.AccessExpired)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), id.AccessExpiresAt, time.Minute)
}

func TestWhoami_ExpiredAccessToken(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	store := sessions.NewStore(repo)
	h := setup(t, sessions.Session{})
	h.api.AddUser("jane", "pw", "jane@example.com", false)

	session, err := h.service.Login(context.Background(), "jane", "pw")
	require.NoError(t, err)
	require.NoError(t, store.Save(session))

	later := func() time.Time { return time.Now().Add(time.Hour) }
	service, err := accounts.NewService(h.client, store, accounts.WithNowTime(later))
	require.NoError(t, err)

	id := service.Whoami()
	require.True(t, id.Authenticated)
	require.True(t, id.AccessExpired)
}

func TestWhoami_OpaqueToken(t *testing.T) {
	h := setup(t, sessions.Session{AccessToken: "opaque", UserID: "9"})

	id := h.service.Whoami()
	require.True(t, id.Authenticated)
	require.Equal(t, "9", id.UserID)
	require.True(t, id.AccessExpiresAt.IsZero())
	require.False(t, id.AccessExpired)
}
