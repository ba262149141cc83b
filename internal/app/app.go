// Package app wires the bot's components together and runs them until
// the process is told to stop.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gustav-de-Mando/KuratorV1/internal/archive"
	"github.com/gustav-de-Mando/KuratorV1/internal/config"
	"github.com/gustav-de-Mando/KuratorV1/internal/discord"
	"github.com/gustav-de-Mando/KuratorV1/internal/httpserver"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/render"
	"github.com/gustav-de-Mando/KuratorV1/internal/replies"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/repomanager"
	"github.com/gustav-de-Mando/KuratorV1/internal/seal"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/development"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/expiry"
	"github.com/gustav-de-Mando/KuratorV1/internal/services/negotiation"
	"github.com/gustav-de-Mando/KuratorV1/internal/sheets"
)

type chatBot interface {
	Open(ctx context.Context) error
	Close() error
	Ready() <-chan struct{}
}

type httpRunner interface {
	Run(ctx context.Context) error
}

type sweeper interface {
	Start(ctx context.Context) error
	Stop()
}

type drainer interface {
	Wait()
}

type ledger interface {
	negotiation.LogSink
	development.Ledger
}

type App struct {
	config       *config.Config
	logger       logging.Logger
	repos        repomanager.RepositoryManager
	bot          chatBot
	http         httpRunner
	sweeper      sweeper
	negotiations drainer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)

	rm, err := repomanager.Open(c.StorageDriver, c.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := build(ctx, c, rm, logger)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	var sink ledger = sheets.Disabled{}
	sheetsCfg := sheets.Config{
		SpreadsheetID:   c.SheetID,
		CredentialsJSON: c.GoogleServiceAccount,
		CredentialsFile: c.GoogleCredentialsFile,
	}
	if sheetsCfg.Enabled() {
		s, err := sheets.New(ctx, sheetsCfg, logger)
		if err != nil {
			logger.Warn(ctx, "spreadsheet logging disabled", "error", err)
		} else {
			sink = s
		}
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("renderer init error: %w", err)
	}

	deps := negotiation.Deps{
		Store:    rm.Negotiations(),
		Treaties: rm.Treaties(),
		Sink:     sink,
		Renderer: renderer,
	}

	archiveCfg := archive.Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		LinkTTL:      c.S3LinkTTL,
	}
	if archiveCfg.Enabled() {
		a, err := archive.NewS3Archiver(ctx, archiveCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		deps.Archiver = a
	}

	var verifier httpserver.SealVerifier
	if c.SealSecret != "" {
		issuer, err := seal.NewIssuer(c.SealSecret, c.SealTTL)
		if err != nil {
			return nil, fmt.Errorf("seal init error: %w", err)
		}
		deps.Sealer = issuer
		verifier = issuer
	}

	session, err := discord.NewSession(c.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("discord session error: %w", err)
	}
	messenger := discord.NewMessenger(session)
	router := replies.NewRouter()

	deps.Messenger = messenger
	deps.Replies = router
	negotiations := negotiation.NewService(deps, negotiation.Config{
		TradeReplyTimeout:     c.TradeReplyTimeout,
		TreatyReplyTimeout:    c.TreatyReplyTimeout,
		AnnouncementChannelID: c.AnnouncementChannelID,
		SealBaseURL:           c.SealBaseURL(),
	}, logger)

	developments := development.NewService(sink, messenger, c.DevelopmentChannelID, logger)

	bot := discord.New(discord.Deps{
		Session:      session,
		Messenger:    messenger,
		Negotiations: negotiations,
		Developments: developments,
		Replies:      router,
	}, discord.Options{
		GuildID:           c.GuildID,
		ModRoles:          c.ModRoles,
		DefaultTreatyDays: c.DefaultTreatyDays,
	}, logger)

	return &App{
		config:       c,
		logger:       logger,
		repos:        rm,
		bot:          bot,
		http:         httpserver.New(c.HTTPAddr, verifier, logger),
		sweeper:      expiry.NewSweeper(rm.Treaties(), messenger, c.SweepInterval, logger),
		negotiations: negotiations,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// startSweeper waits for the chat session to become ready so expiry
// notices are not sent before the bot can deliver them.
func (app *App) startSweeper(ctx context.Context) {
	select {
	case <-app.bot.Ready():
	case <-ctx.Done():
		return
	}
	if err := app.sweeper.Start(ctx); err != nil {
		app.logger.Error(ctx, "expiry sweeper not started", "error", err)
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// HTTP server fails, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if err := app.bot.Open(ctx); err != nil {
		cancelFunc()
		wg.Wait()
		app.closeRepos(ctx)
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweeper(ctx)
	}()

	<-ctx.Done()
	app.logger.Info(ctx, "Shutting down...")

	wg.Wait()
	app.sweeper.Stop()
	if err := app.bot.Close(); err != nil {
		app.logger.Warn(ctx, "discord close failed", "error", err)
	}
	app.negotiations.Wait()
	app.closeRepos(ctx)

	app.logger.Info(ctx, "Stopped")
	return nil
}

func (app *App) closeRepos(ctx context.Context) {
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
}
