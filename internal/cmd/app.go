package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	logging "github.com/ipfs/go-log/v2"

	"classical-quiz/internal/catalog"
	"classical-quiz/internal/config"
	"classical-quiz/internal/fetch"
	"classical-quiz/internal/httpapi"
	"classical-quiz/internal/mediasession"
	"classical-quiz/internal/playback"
	"classical-quiz/internal/quiz"
	"classical-quiz/internal/quiz/sqlite"
	"classical-quiz/internal/telemetry"
)

var log = logging.Logger("cmd")

// app holds everything one play session owns. Close releases it in reverse
// order of construction.
type app struct {
	store      *sqlite.SQLiteStore
	catalog    *catalog.Catalog
	backend    playback.Backend
	hub        *mediasession.Hub
	session    *mediasession.Session
	controller *quiz.Controller
	shutdown   telemetry.ShutdownFunc
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	shutdown, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	a := &app{shutdown: shutdown}

	a.catalog, err = catalog.Load(cfg.CatalogPath, cfg.MediaDir)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.store, err = sqlite.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("opening score database: %w", err)
	}

	a.backend = newBackend(cfg.Audio)
	a.hub = mediasession.NewHub()
	a.session = mediasession.New(a.backend,
		mediasession.WithSink(mediasession.LogSink{}),
		mediasession.WithSink(a.hub),
	)
	a.controller = quiz.NewController(a.catalog, a.store, a.session, quiz.Options{
		MaxCandidates: cfg.MaxCandidates,
		History:       a.store,
	})

	log.Infow("ready", "samples", a.catalog.Len(), "db", cfg.DBPath, "audio", cfg.Audio.Enabled)
	return a, nil
}

// newBackend opens the sound card, falling back to silent playback when
// audio is disabled or no device is available.
func newBackend(audio config.AudioConfig) playback.Backend {
	if !audio.Enabled {
		return playback.NewHeadlessBackend()
	}

	fetcher := fetch.NewClient(
		fetch.WithHTTPClient(&http.Client{Timeout: audio.FetchTimeout}),
		fetch.WithTTL(audio.CacheTTL),
	)
	backend, err := playback.NewOtoBackend(audio.SampleRate, fetcher)
	if err != nil {
		log.Warnw("audio unavailable, continuing without sound", "error", err)
		return playback.NewHeadlessBackend()
	}
	return backend
}

// serveControl runs the control API until ctx is done. Failures are logged;
// the game keeps running without it.
func (a *app) serveControl(ctx context.Context, addr string) <-chan struct{} {
	done := make(chan struct{})
	if addr == "" {
		close(done)
		return done
	}

	handler := httpapi.NewRouter(httpapi.Options{
		Session: a.session,
		Events:  a.hub,
		Scores:  a.store,
		History: a.store,
	})

	go func() {
		defer close(done)
		if err := httpapi.Serve(ctx, addr, handler, nil); err != nil {
			log.Errorw("control api stopped", "addr", addr, "error", err)
		}
	}()
	return done
}

func (a *app) Close() error {
	var errs []error
	if a.controller != nil {
		a.controller.Close()
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.Background()))
	}
	return errors.Join(errs...)
}
