package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"SyllabusScrape/pkg/locator"
	"SyllabusScrape/pkg/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePage struct {
	navigated []string
	urls      []string
	calls     int
}

func (p *fakePage) Navigate(_ context.Context, pageURL string) error {
	p.navigated = append(p.navigated, pageURL)
	return nil
}

func (p *fakePage) CurrentURL(_ context.Context) (string, error) {
	index := p.calls
	if index >= len(p.urls) {
		index = len(p.urls) - 1
	}
	p.calls++
	return p.urls[index], nil
}

type loginFormLocator struct {
	formVisible bool
	waitError   error
}

func (l *loginFormLocator) Click(context.Context, locator.Selector) error { return nil }

func (l *loginFormLocator) WaitRendered(context.Context, locator.Section, locator.Selector, time.Duration) error {
	if l.waitError != nil {
		return l.waitError
	}
	if l.formVisible {
		return nil
	}
	return locator.ErrNotRendered
}

func (l *loginFormLocator) List(context.Context, locator.Section, locator.Selector) ([]locator.Element, error) {
	return nil, nil
}

func testOptions() AuthOptions {
	return AuthOptions{
		StartURL:     "https://syllabus.example.edu",
		DetectBound:  time.Millisecond,
		LoginBound:   50 * time.Millisecond,
		PollInterval: time.Millisecond,
	}
}

func TestMain(m *testing.M) {
	restore := log.Replace(zap.NewNop())
	defer restore()
	m.Run()
}

func TestCheckAuthAlreadyAuthenticated(t *testing.T) {
	page := &fakePage{urls: []string{"https://syllabus.example.edu/"}}

	state, err := CheckAuth(context.Background(), page, &loginFormLocator{}, testOptions())
	require.NoError(t, err)
	require.Equal(t, AlreadyAuthenticated, state)
	require.Equal(t, []string{"https://syllabus.example.edu"}, page.navigated)
}

func TestCheckAuthNeedsLogin(t *testing.T) {
	page := &fakePage{urls: []string{"https://cas.example.edu/login"}}

	state, err := CheckAuth(context.Background(), page, &loginFormLocator{formVisible: true}, testOptions())
	require.NoError(t, err)
	require.Equal(t, NeedsLogin, state)
	require.Equal(t, "needs_login", state.String())
}

func TestCheckAuthPropagatesLocatorFailure(t *testing.T) {
	page := &fakePage{urls: []string{"https://syllabus.example.edu/"}}
	broken := errors.New("devtools connection lost")

	_, err := CheckAuth(context.Background(), page, &loginFormLocator{waitError: broken}, testOptions())
	require.ErrorIs(t, err, broken)
}

func TestEnsureWaitsForManualLogin(t *testing.T) {
	page := &fakePage{urls: []string{
		"https://cas.example.edu/login",
		"https://cas.example.edu/login?step=2",
		"https://syllabus.example.edu/home",
	}}

	state, err := Ensure(context.Background(), page, &loginFormLocator{formVisible: true}, testOptions())
	require.NoError(t, err)
	require.Equal(t, NeedsLogin, state)
	require.Equal(t, 3, page.calls)
}

func TestAwaitLoginTimesOut(t *testing.T) {
	page := &fakePage{urls: []string{"https://cas.example.edu/login"}}

	err := AwaitLogin(context.Background(), page, testOptions())
	require.ErrorIs(t, err, ErrLoginTimeout)
}

func TestAwaitLoginHonoursCancellation(t *testing.T) {
	page := &fakePage{urls: []string{"https://cas.example.edu/login"}}
	options := testOptions()
	options.LoginBound = time.Hour
	options.PollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := AwaitLogin(ctx, page, options)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSameHost(t *testing.T) {
	require.True(t, sameHost("https://Syllabus.example.edu/a?b=c", "https://syllabus.example.edu"))
	require.False(t, sameHost("https://cas.example.edu/login?service=https%3A%2F%2Fsyllabus.example.edu", "https://syllabus.example.edu"))
	require.False(t, sameHost("https://syllabus.example.edu", "not a url"))
}
