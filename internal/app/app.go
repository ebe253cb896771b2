package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ak800i/power-outage-notifier/internal/config"
	"github.com/ak800i/power-outage-notifier/internal/conversation"
	"github.com/ak800i/power-outage-notifier/internal/directory"
	"github.com/ak800i/power-outage-notifier/internal/notify"
	"github.com/ak800i/power-outage-notifier/internal/outage"
	"github.com/ak800i/power-outage-notifier/internal/scrape"
	"github.com/ak800i/power-outage-notifier/internal/store"
	"github.com/ak800i/power-outage-notifier/internal/telegram"
)

type App struct {
	cfg config.Config
	log *zap.Logger
	api telegram.API

	repo    store.Repo
	dir     *directory.Directory
	audit   *telegram.Audit
	engine  *conversation.Engine
	checker *outage.Checker

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := telegram.New(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connect bot: %w", err)
	}
	return &App{cfg: cfg, log: log, api: bot, sleep: sleepCtx}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run wires the components and drives the two long-lived loops until the
// context is cancelled. Only startup failures are fatal; once the loops
// are up, every error is contained and logged.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting outage notifier",
		zap.String("store", a.cfg.StoreDriver),
		zap.Duration("check_interval", a.cfg.CheckInterval),
		zap.Bool("reader_enabled", a.cfg.EnableReader),
	)

	repo, err := store.Open(ctx, a.cfg.StoreDriver, a.cfg.DataPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.repo = repo

	a.dir = directory.New(repo)
	if err := a.dir.Load(ctx); err != nil {
		return err
	}

	a.audit = telegram.NewAudit(a.api, a.log, a.cfg.LogChatID)
	sender := telegram.NewSender(a.api, a.log, a.audit)
	dispatcher := notify.NewDispatcher(sender, a.log, a.cfg.Location())
	a.engine = conversation.NewEngine(a.dir, sender, a.audit, a.log)
	a.checker = outage.NewChecker(scrape.NewFetcher(), a.dir, dispatcher, a.log, outage.Sources{
		Power:          a.cfg.PowerOutageURLs,
		PlannedWater:   a.cfg.WaterOutageURLs,
		UnplannedWater: a.cfg.WaterUnplannedOutageURLs,
	})

	host, _ := os.Hostname()
	a.audit.Log(fmt.Sprintf("Service running on %s", host))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	httpSrv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	if a.cfg.EnableReader {
		go a.inboundLoop(ctx)
	}

	// First cycle right away; cron handles the rest of the cadence.
	go a.runCycle(ctx)

	c := cron.New()
	if _, err := c.AddFunc("@every "+a.cfg.CheckInterval.String(), func() { a.runCycle(ctx) }); err != nil {
		return fmt.Errorf("schedule outage cycle: %w", err)
	}
	c.Start()

	<-ctx.Done()

	// Loose stop: in-flight sends and fetches are not awaited.
	a.audit.Log(fmt.Sprintf("Service stopping on %s", host))
	c.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	cancel()

	_ = a.repo.Close()
	return nil
}

// runCycle executes one outage-check cycle with top-level fault
// containment so no failure stops future cycles.
func (a *App) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("outage cycle panicked", zap.Any("panic", r))
		}
	}()
	if ctx.Err() != nil {
		return
	}
	a.checker.RunAll(ctx)
}
