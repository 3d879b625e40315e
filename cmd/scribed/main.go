// Command scribed runs the authenticated scraping service: an HTTP API over
// a browser session manager with a periodic idle-session sweep.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/entrhq/scribe/pkg/api"
	"github.com/entrhq/scribe/pkg/browser"
	"github.com/entrhq/scribe/pkg/config"
	"github.com/entrhq/scribe/pkg/logging"
	"github.com/entrhq/scribe/pkg/scraper"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scribed: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "scribed: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log, _ := logging.NewLogger("main")
	defer log.Close()
	log.Infof("starting scribed (log file: %s)", log.LogPath())

	manager := browser.NewSessionManager(browser.Options{
		Headless:           cfg.Browser.Headless,
		SlowMo:             cfg.Browser.SlowMo,
		Devtools:           cfg.Browser.Devtools,
		UserAgent:          cfg.Browser.UserAgent,
		ViewportWidth:      cfg.Browser.ViewportWidth,
		ViewportHeight:     cfg.Browser.ViewportHeight,
		PageLoadTimeout:    cfg.Scraper.PageLoadTimeout,
		ElementWaitTimeout: cfg.Scraper.ElementWaitTimeout,
		NavigationTimeout:  cfg.Scraper.NavigationTimeout,
		MaxSessions:        cfg.Session.MaxSessions,
	})

	service := scraper.NewService(manager, cfg.Scraper)
	handler := api.NewHandler(service, manager, cfg)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Idle sessions are swept on a background tick, decoupled from
	// request handling
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(fmt.Sprintf("@every %s", cfg.Session.SweepInterval), func() {
		if closed := manager.SweepExpired(cfg.Session.IdleTimeout); closed > 0 {
			log.Infof("idle sweep closed %d session(s)", closed)
		}
	}); err != nil {
		return fmt.Errorf("scheduling idle sweep: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sweeper.Start()
		<-ctx.Done()
		<-sweeper.Stop().Done()
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Infof("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("http shutdown: %v", err)
		}

		return manager.Shutdown()
	})

	return g.Wait()
}
