package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"SyllabusScrape/pkg/locator"
	"SyllabusScrape/pkg/log"
	"go.uber.org/zap"
)

type AuthState int

const (
	AlreadyAuthenticated AuthState = iota + 1
	NeedsLogin
)

func (s AuthState) String() string {
	switch s {
	case AlreadyAuthenticated:
		return "already_authenticated"
	case NeedsLogin:
		return "needs_login"
	default:
		return "unknown"
	}
}

var ErrLoginTimeout = errors.New("interactive login did not complete within bound")

const defaultPollInterval = time.Second

var loginFormSelectors = []locator.Selector{
	locator.AttributeEquals("input", "id", "username"),
	locator.AttributeEquals("input", "id", "password"),
}

// Page is the navigation half of a browser session.
type Page interface {
	Navigate(ctx context.Context, pageURL string) error
	CurrentURL(ctx context.Context) (string, error)
}

type AuthOptions struct {
	StartURL string
	// DetectBound is how long to look for the login form before assuming
	// the profile is already signed in.
	DetectBound time.Duration
	// LoginBound is how long a person has to finish logging in by hand.
	LoginBound   time.Duration
	PollInterval time.Duration
}

// CheckAuth loads the start page and reports whether the login form shows up.
func CheckAuth(ctx context.Context, page Page, elementLocator locator.Locator, options AuthOptions) (AuthState, error) {
	if err := page.Navigate(ctx, options.StartURL); err != nil {
		return 0, fmt.Errorf("navigate to %s: %w", options.StartURL, err)
	}
	for _, formSelector := range loginFormSelectors {
		waitError := elementLocator.WaitRendered(ctx, locator.WholePage, formSelector, options.DetectBound)
		if errors.Is(waitError, locator.ErrNotRendered) {
			return AlreadyAuthenticated, nil
		}
		if waitError != nil {
			return 0, waitError
		}
	}
	return NeedsLogin, nil
}

// AwaitLogin polls the page URL until the browser is back on the start URL's host.
func AwaitLogin(ctx context.Context, page Page, options AuthOptions) error {
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	deadline := time.Now().Add(options.LoginBound)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		currentURL, urlError := page.CurrentURL(ctx)
		if urlError != nil {
			return urlError
		}
		if sameHost(currentURL, options.StartURL) {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w (last url %s)", ErrLoginTimeout, currentURL)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Ensure runs the pre-check and, when a login is needed, blocks until it is done.
func Ensure(ctx context.Context, page Page, elementLocator locator.Locator, options AuthOptions) (AuthState, error) {
	state, checkError := CheckAuth(ctx, page, elementLocator, options)
	if checkError != nil {
		return 0, checkError
	}
	log.L().Info("auth_state", zap.Stringer("state", state))
	if state == AlreadyAuthenticated {
		return state, nil
	}

	log.L().Warn("login_required",
		zap.String("start_url", options.StartURL),
		zap.Duration("login_bound", options.LoginBound),
	)
	if err := AwaitLogin(ctx, page, options); err != nil {
		return state, err
	}
	log.L().Info("login_complete")
	return state, nil
}

func sameHost(candidate string, reference string) bool {
	candidateURL, candidateError := url.Parse(candidate)
	referenceURL, referenceError := url.Parse(reference)
	if candidateError != nil || referenceError != nil || referenceURL.Host == "" {
		return false
	}
	return strings.EqualFold(candidateURL.Host, referenceURL.Host)
}
