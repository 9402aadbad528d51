// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hashicorp/cap-auth0/auth0"
	"github.com/hashicorp/cap-auth0/auth0/callback"
	"github.com/hashicorp/cap-auth0/auth0/guard"
	"github.com/hashicorp/cap-auth0/config"
	"github.com/hashicorp/cap-auth0/metrics"
	"github.com/hashicorp/cap-auth0/session"
)

// Optional environment variables, next to the AUTH0_* ones read by
// config.Load.
const (
	redisAddr     = "REDIS_ADDR"
	redisPassword = "REDIS_PASSWORD"
)

func main() {
	addr := flag.String("addr", "localhost:3000", "listen address")
	envFile := flag.String("env-file", "", "optional .env file")
	configFile := flag.String("config", "", "optional config file")
	insecure := flag.Bool("insecure-cookie", false, "send the session cookie over plain http")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "webapp",
		Level: hclog.LevelFromString(os.Getenv("LOG_LEVEL")),
	})
	if err := run(logger, *addr, *envFile, *configFile, *insecure); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(logger hclog.Logger, addr, envFile, configFile string, insecure bool) error {
	const op = "run"
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := config.Load(config.WithEnvFile(envFile), config.WithConfigFile(configFile), config.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	p, err := auth0.NewProvider(c, auth0.WithMetrics(metrics.New(reg)))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer p.Done()

	store, closeStore, err := newStore(ctx, logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeStore()
	sessions, err := session.NewManager(store, session.WithSecureCookie(!insecure), session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Get(c.CallbackPath(), callback.AuthCode(p))
		r.Get("/logout", guard.Logout(p))
		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth(p))
			r.Get("/", home)
			r.Get("/payload", payload)
			r.Get("/access_token", accessToken)
			r.Get("/userinfo", userInfo(p))
		})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "callback", c.CallbackURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("%s: server closed: %w", op, err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sessionCleanupInterval is how often expired in memory sessions are
// removed.
const sessionCleanupInterval = time.Minute

// newStore returns a Redis backed session store when REDIS_ADDR is set, and
// an in memory store otherwise. The returned func releases the store.
func newStore(ctx context.Context, logger hclog.Logger) (scs.Store, func(), error) {
	addrs := os.Getenv(redisAddr)
	if addrs == "" {
		logger.Warn("sessions are kept in memory; set " + redisAddr + " to share them between instances")
		store := memstore.NewWithCleanupInterval(sessionCleanupInterval)
		return store, store.StopCleanup, nil
	}
	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addrs:    strings.Split(addrs, ","),
		Password: os.Getenv(redisPassword),
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("unable to close session store", "error", err)
		}
	}, nil
}
