package browser

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/entrhq/viewbot/pkg/logging"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFactory_DestroyIsIdempotent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := NewFactory(Options{}, logging.NewWithCore(core))

	var order []string
	f.session = &Session{closers: []namedCloser{
		{name: "page", close: func() error { order = append(order, "page"); return errors.New("page already closed") }},
		{name: "context", close: func() error { order = append(order, "context"); return nil }},
		{name: "browser", close: func() error { order = append(order, "browser"); return nil }},
	}}
	require.True(t, f.Active())

	f.Destroy()
	f.Destroy()

	assert.False(t, f.Active())
	assert.Equal(t, []string{"page", "context", "browser"}, order)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestFactory_DestroyLogsSessionDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := NewFactory(Options{}, logging.NewWithCore(core))

	created := time.Now().Add(-90 * time.Second)
	f.session = &Session{
		UserAgent:  "Mozilla/5.0 test",
		Proxy:      "user:secret@proxy.local:3128",
		CreatedAt:  created,
		LastUsedAt: created.Add(60 * time.Second),
	}

	f.Destroy()

	entries := logs.FilterMessageSnippet("Closing browser session").All()
	require.Len(t, entries, 1)
	msg := entries[0].Message
	assert.Contains(t, msg, `user agent "Mozilla/5.0 test"`)
	assert.Contains(t, msg, "egress user:***@proxy.local:3128")
	assert.NotContains(t, msg, "secret")
	assert.Contains(t, msg, "age 1m30s")
}

func TestSession_DescribeDefaults(t *testing.T) {
	now := time.Now()
	s := &Session{CreatedAt: now, LastUsedAt: now}

	assert.Equal(t, `age 0s, idle 0s, user agent "browser default", egress direct`, s.describe(now))
}

func TestFactory_DestroyWithoutSession(t *testing.T) {
	f := NewFactory(Options{}, logging.NewNop())
	assert.NotPanics(t, f.Destroy)
	assert.NoError(t, f.Shutdown())
}

func TestFactory_CreateWhileActive(t *testing.T) {
	f := NewFactory(Options{}, logging.NewNop())
	f.session = &Session{}

	page, err := f.Create("", "")
	assert.Nil(t, page)

	var ce *CreationError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestFactory_CreateRejectsBadProxy(t *testing.T) {
	f := NewFactory(Options{}, logging.NewNop())

	_, err := f.Create("", "no-port-here")

	var ce *CreationError
	require.ErrorAs(t, err, &ce)
	assert.False(t, f.Active())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	err := classify("wait for #movie_player", fmt.Errorf("locator: %w", playwright.ErrTimeout))
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.ErrorIs(t, err, playwright.ErrTimeout)

	err = classify("click", fmt.Errorf("page: %w", playwright.ErrTargetClosed))
	assert.ErrorIs(t, err, ErrConnectivityLost)

	err = classify("click", errors.New("boom"))
	assert.NotErrorIs(t, err, ErrElementNotFound)
	assert.NotErrorIs(t, err, ErrConnectivityLost)
	assert.Contains(t, err.Error(), "click failed")
}
