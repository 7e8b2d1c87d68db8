package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/sdk/sdktest"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

func TestCreateTicketConcurrentSubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fake := sdktest.New().Handle(sdk.TemplateCreateTicket, func(sdk.Options) (*sdk.Response, error) {
		once.Do(func() { close(entered) })
		<-release
		return &sdk.Response{Status: 201, Response: `{"id": 901, "subject": "ok"}`}, nil
	})
	app := newTestApp(t, fake, Deps{})
	s, err := app.OpenSession(context.Background(), "help-article", 0)
	require.NoError(t, err)
	fillHelpArticle(t, app, s, nil)

	var first error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, first = app.CreateTicket(context.Background(), s)
	}()
	<-entered

	_, err = app.CreateTicket(context.Background(), s)
	assert.ErrorIs(t, err, errs.ErrSubmitInProgress)
	assert.Equal(t, "Failed to create ticket: submission already in progress", err.Error())

	close(release)
	<-done
	require.NoError(t, first)
	assert.Len(t, fake.Calls(sdk.TemplateCreateTicket), 1)

	_, err = app.CreateTicket(context.Background(), s)
	assert.ErrorIs(t, err, errs.ErrSubmitInProgress, "a created ticket is not sent again")
	assert.Len(t, fake.Calls(sdk.TemplateCreateTicket), 1)
}

func TestCreateTicketRetryAfterFailure(t *testing.T) {
	fake := sdktest.New().Reject(sdk.TemplateCreateTicket, 500, `{"description":"down"}`)
	app := newTestApp(t, fake, Deps{})
	s, err := app.OpenSession(context.Background(), "help-article", 0)
	require.NoError(t, err)
	fillHelpArticle(t, app, s, nil)

	_, err = app.CreateTicket(context.Background(), s)
	require.Error(t, err)

	fake.Handle(sdk.TemplateCreateTicket, func(sdk.Options) (*sdk.Response, error) {
		return &sdk.Response{Status: 201, Response: `{"id": 902}`}, nil
	})
	res, err := app.CreateTicket(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(902), res.Ticket.ID)
}

func TestExpireSessions(t *testing.T) {
	now := testNow
	app := newTestApp(t, sdktest.New(), Deps{SessionTTL: time.Hour})
	app.now = func() time.Time { return now }

	idle, err := app.OpenSession(context.Background(), "help-article", 0)
	require.NoError(t, err)
	active, err := app.OpenSession(context.Background(), "sim-dashboard", 0)
	require.NoError(t, err)
	waitReady(t, idle)
	waitReady(t, active)

	now = testNow.Add(40 * time.Minute)
	_, err = app.Session(active.ID)
	require.NoError(t, err)
	assert.Equal(t, now, active.LastUsed())

	now = testNow.Add(70 * time.Minute)
	assert.Equal(t, 1, app.ExpireSessions())
	_, err = app.Session(idle.ID)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	assert.Equal(t, 0, idle.Tracker.Form.ListenerCount(), "expired session is closed")
	assert.Equal(t, 1, app.Sessions().Len())

	active.state.Store(sessionSubmitting)
	now = testNow.Add(5 * time.Hour)
	assert.Equal(t, 0, app.ExpireSessions(), "a submitting session is kept")

	active.state.Store(sessionSubmitted)
	assert.Equal(t, 1, app.ExpireSessions())
	assert.Equal(t, 0, app.Sessions().Len())
}

func TestExpireSessionsDisabled(t *testing.T) {
	app := newTestApp(t, sdktest.New(), Deps{})
	_, err := app.OpenSession(context.Background(), "help-article", 0)
	require.NoError(t, err)
	app.now = func() time.Time { return testNow.Add(24 * time.Hour) }
	assert.Equal(t, 0, app.ExpireSessions())
	assert.Equal(t, 1, app.Sessions().Len())
}

func TestJanitorClosesIdleSessions(t *testing.T) {
	reg, err := tracker.LoadRegistry()
	require.NoError(t, err)
	app, err := NewTrackerApp(Deps{
		Registry:   reg,
		SDK:        sdktest.New().Client(sdk.StaticIParams{}),
		SessionTTL: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.OpenSession(context.Background(), "help-article", 0)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return app.Sessions().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestJanitorInterval(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, janitorInterval(20*time.Millisecond))
	assert.Equal(t, time.Minute, janitorInterval(30*time.Minute))
}
