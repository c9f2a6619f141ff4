package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"courier-dispatch/internal/broadcast"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	testlog "courier-dispatch/internal/testutil"
)

func containerWithLogger(t *testing.T, logger logx.Logger) *dig.Container {
	t.Helper()
	c := dig.New()
	require.NoError(t, c.Provide(func() logx.Logger { return logger }))
	return c
}

func TestRunner_MustRun_LogsShutdownOnCanceled(t *testing.T) {
	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return context.Canceled }}

	require.NotPanics(t, func() { r.MustRun(containerWithLogger(t, rec.Logger())) })
	_, ok := rec.Find("info", "shutdown requested, exiting")
	require.True(t, ok)
}

func TestRunner_MustRun_LogsStartupTimeout(t *testing.T) {
	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return context.DeadlineExceeded }}

	r.MustRun(containerWithLogger(t, rec.Logger()))
	_, ok := rec.Find("warn", "startup aborted: startup timeout exceeded")
	require.True(t, ok)
}

func TestRunner_MustRun_NilErrorIsQuiet(t *testing.T) {
	rec := testlog.New()
	r := &Runner{runFn: func(*dig.Container) error { return nil }}

	r.MustRun(containerWithLogger(t, rec.Logger()))
	require.Empty(t, rec.Entries())
}

func TestLoggerFrom_FallsBackToNop(t *testing.T) {
	require.NotNil(t, loggerFrom(dig.New()))
}

func newServiceIn(ctx context.Context, rec *testlog.Recorder, closed *int) serviceIn {
	return serviceIn{
		Ctx:     ctx,
		Config:  &config.Config{},
		Logger:  rec.Logger(),
		Server:  &http.Server{Addr: "127.0.0.1:0"},
		Hub:     broadcast.NewHub(nil, broadcast.Options{}),
		Relay:   func() error { *closed++; return nil },
		Sweeper: jobs.NewPresenceSweeper(nil, nil, 0, 0, nil),
	}
}

func TestAppRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := testlog.New()
	closed := 0
	in := newServiceIn(ctx, rec, &closed)

	err := appRun(in)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, closed)
	require.Zero(t, in.Hub.ObserverCount())

	_, ok := rec.Find("info", "shutting down service")
	require.True(t, ok)
}

func TestAppRun_BootstrapFailureAborts(t *testing.T) {
	orig := ensureSchema
	ensureSchema = func(context.Context, *pgxpool.Pool) error { return errors.New("ddl failed") }
	t.Cleanup(func() { ensureSchema = orig })

	rec := testlog.New()
	closed := 0
	in := newServiceIn(context.Background(), rec, &closed)
	in.Config.DB.Bootstrap = true

	err := appRun(in)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bootstrap schema")
	require.Equal(t, 1, closed)
}

func TestAppRun_ListenFailureStopsRun(t *testing.T) {
	rec := testlog.New()
	closed := 0
	in := newServiceIn(context.Background(), rec, &closed)
	in.Server.Addr = "256.0.0.1:bad"

	err := appRun(in)
	require.Error(t, err)
	require.Contains(t, err.Error(), "http listen")
	require.Equal(t, 1, closed)
}
