package main

import (
	"context"
	"io"
	"os"

	"github.com/jrsteele09/go-admin-console/apiclient"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/tokenstore"
	"github.com/jrsteele09/go-admin-console/tokenstore/memstore"
	"github.com/jrsteele09/go-admin-console/userresolve"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// app is everything a command needs, built from the environment.
type app struct {
	config  config.Config
	client  *apiclient.Client
	session *session.Service
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Err(err).Msg("close")
		}
	}
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)

	a := &app{config: cfg}
	store, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}

	client, err := apiclient.New(cfg.GetAPIBaseURL(), tokenstore.TokenSource(ctx, store), apiclient.WithTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		a.Close()
		return nil, err
	}
	resolver, err := userresolve.New(client, userresolve.WithCandidates(cfg.GetProfileEndpoints()...))
	if err != nil {
		a.Close()
		return nil, err
	}
	svc, err := session.New(ctx, session.Deps{Store: store, API: client, Resolver: resolver})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.client = client
	a.session = svc
	return a, nil
}

func (a *app) newStore(ctx context.Context) (tokenstore.Store, error) {
	switch a.config.GetTokenStore() {
	case config.StoreRedis:
		client, err := tokenstore.DialRedis(ctx, a.config.GetRedisURL())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client)
		return tokenstore.NewRedisStore(client, a.config.GetTokenKey()), nil
	case config.StoreMemory:
		log.Warn().Msg("Using the in-memory token store; credentials are lost on exit")
		return memstore.New(), nil
	case config.StoreFile:
		return tokenstore.NewFileStore(a.config.GetTokenFile(), a.config.GetTokenKey()), nil
	}
	return nil, errors.Errorf("[newApp] unsupported token store %q", a.config.GetTokenStore())
}
