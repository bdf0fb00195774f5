package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/go-travels-client/accounts"
	"github.com/jrsteele09/go-travels-client/client"
	"github.com/jrsteele09/go-travels-client/internal/config"
	"github.com/jrsteele09/go-travels-client/sessions"
	"github.com/jrsteele09/go-travels-client/sessions/filerepo"
	"github.com/jrsteele09/go-travels-client/token/refresh"
	"github.com/jrsteele09/go-travels-client/travels"
	"github.com/rs/zerolog/log"
)

// environment is everything the commands touch outside the process.
type environment struct {
	stdout       io.Writer
	stderr       io.Writer
	readPassword func(prompt string) (string, error)
}

func defaultEnvironment() environment {
	return environment{
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		readPassword: promptPassword,
	}
}

// app holds the services a command runs against.
type app struct {
	env      environment
	cfg      config.Config
	store    *sessions.Store
	accounts *accounts.Service
	travels  *travels.Service
}

func newApp(cfg config.Config, env environment) (*app, error) {
	repo := filerepo.New(cfg.GetSessionFile(), filerepo.WithPassphrase(cfg.GetSessionPassphrase()))
	store := sessions.NewStore(repo)

	refresher := refresh.New(cfg.GetBaseURL(), refresh.WithPath(cfg.GetRefreshPath()))
	api, err := client.New(cfg.GetBaseURL(), store, refresher,
		client.WithTimeout(cfg.GetRequestTimeout()),
		client.WithLoginRoute(cfg.GetLoginRoute()),
		client.WithUserAgent("travelsctl"),
		client.WithRedirector(reloginHint(env.stderr)),
	)
	if err != nil {
		return nil, err
	}

	accountService, err := accounts.NewService(api, store)
	if err != nil {
		return nil, err
	}
	travelService, err := travels.NewService(api)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("api", cfg.GetBaseURL()).Str("session_file", repo.Path()).Msg("travelsctl ready")
	return &app{
		env:      env,
		cfg:      cfg,
		store:    store,
		accounts: accountService,
		travels:  travelService,
	}, nil
}

// reloginHint stands in for the browser redirect: a terminal user is told
// to sign in again.
func reloginHint(w io.Writer) client.Redirector {
	return client.RedirectFunc(func(loginRoute string) {
		fmt.Fprintf(w, "Your session has expired. Run `travelsctl login` to sign in again (%s).\n", loginRoute)
	})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printMessage(msg string) error {
	return a.printJSON(map[string]string{"message": msg})
}
