package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustav-de-Mando/KuratorV1/internal/config"
	"github.com/gustav-de-Mando/KuratorV1/internal/logging"
	"github.com/gustav-de-Mando/KuratorV1/internal/repositories/repomanager"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeBot struct {
	rec     *recorder
	ready   chan struct{}
	openErr error
}

func (b *fakeBot) Open(context.Context) error {
	b.rec.add("bot open")
	return b.openErr
}
func (b *fakeBot) Close() error            { b.rec.add("bot close"); return nil }
func (b *fakeBot) Ready() <-chan struct{} { return b.ready }

type fakeHTTP struct {
	rec *recorder
	err error
}

func (h *fakeHTTP) Run(ctx context.Context) error {
	if h.err != nil {
		return h.err
	}
	<-ctx.Done()
	h.rec.add("http stopped")
	return nil
}

type fakeSweeper struct {
	rec     *recorder
	started chan struct{}
}

func (s *fakeSweeper) Start(context.Context) error {
	s.rec.add("sweeper start")
	close(s.started)
	return nil
}
func (s *fakeSweeper) Stop() { s.rec.add("sweeper stop") }

type fakeDrainer struct{ rec *recorder }

func (d fakeDrainer) Wait() { d.rec.add("negotiations drained") }

type closingRepos struct {
	repomanager.RepositoryManager
	rec *recorder
}

func (r closingRepos) Close() error { r.rec.add("repos close"); return nil }

func newTestApp() (*App, *recorder, *fakeBot, *fakeSweeper, *fakeHTTP) {
	rec := &recorder{}
	bot := &fakeBot{rec: rec, ready: make(chan struct{})}
	sw := &fakeSweeper{rec: rec, started: make(chan struct{})}
	srv := &fakeHTTP{rec: rec}
	return &App{
		config:       &config.Config{},
		logger:       logging.Nop(),
		repos:        closingRepos{RepositoryManager: repomanager.NewMemoryRepositoryManager(), rec: rec},
		bot:          bot,
		http:         srv,
		sweeper:      sw,
		negotiations: fakeDrainer{rec: rec},
	}, rec, bot, sw, srv
}

func TestRun_SweeperStartsAfterReadyAndShutdownOrder(t *testing.T) {
	app, rec, bot, sw, _ := newTestApp()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.list()) > 0 }, time.Second, 5*time.Millisecond)
	assert.NotContains(t, rec.list(), "sweeper start")

	close(bot.ready)
	select {
	case <-sw.started:
	case <-time.After(time.Second):
		t.Fatal("sweeper not started after ready")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []string{
		"bot open",
		"sweeper start",
		"http stopped",
		"sweeper stop",
		"bot close",
		"negotiations drained",
		"repos close",
	}, rec.list())
}

func TestRun_NoSweepWithoutReady(t *testing.T) {
	app, rec, _, _, _ := newTestApp()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, app.Run(ctx))
	assert.NotContains(t, rec.list(), "sweeper start")
	assert.Contains(t, rec.list(), "repos close")
}

func TestRun_OpenFailure(t *testing.T) {
	app, rec, bot, _, _ := newTestApp()
	bot.openErr = errors.New("invalid token")

	err := app.Run(context.Background())
	require.EqualError(t, err, "invalid token")
	assert.Equal(t, []string{"bot open", "http stopped", "repos close"}, rec.list())
}

func TestRun_HTTPFailureStopsApp(t *testing.T) {
	app, rec, _, _, srv := newTestApp()
	srv.err = errors.New("address in use")

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after http failure")
	}
	assert.Contains(t, rec.list(), "bot close")
}

func TestNewApp_UnknownDriver(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.DiscordToken = "token"
	c.StorageDriver = "oracle"

	_, err := NewApp(c)
	require.Error(t, err)
}

func TestNewApp_MemoryDefaults(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.DiscordToken = "token"
	c.LogLevel = "error"

	app, err := NewApp(c)
	require.NoError(t, err)
	assert.NotNil(t, app.bot)
	assert.NotNil(t, app.sweeper)
	require.NoError(t, app.repos.Close())
}
