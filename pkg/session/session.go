// Package session owns the single chromedp browser the walker drives.
package session

import (
	"context"
	"fmt"
	"os/exec"

	"SyllabusScrape/pkg/log"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var defaultChromeExecutablePath = func() string {
	if path, _ := exec.LookPath("google-chrome"); path != "" {
		return path
	}
	if path, _ := exec.LookPath("chromium"); path != "" {
		return path
	}
	return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
}()

type Options struct {
	StartURL string
	// ProfileDir keeps cookies between runs so a manual login survives.
	ProfileDir string
	Headless   bool
	ChromePath string
}

type Session struct {
	browserContext context.Context
	cancel         context.CancelFunc
	startURL       string
}

// Open starts Chrome with the persistent profile. It does not navigate.
func Open(parentContext context.Context, options Options) (*Session, error) {
	chromePath := options.ChromePath
	if chromePath == "" {
		chromePath = defaultChromeExecutablePath
	}

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", options.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	if options.ProfileDir != "" {
		allocatorOptions = append(allocatorOptions, chromedp.UserDataDir(options.ProfileDir))
	}

	allocatorContext, allocatorCancel := chromedp.NewExecAllocator(parentContext, allocatorOptions...)
	browserContext, browserCancel := chromedp.NewContext(allocatorContext)

	if err := chromedp.Run(browserContext); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}
	log.L().Info("session_open",
		zap.String("chrome", chromePath),
		zap.String("profile", options.ProfileDir),
		zap.Bool("headless", options.Headless),
	)

	return &Session{
		browserContext: browserContext,
		cancel: func() {
			browserCancel()
			allocatorCancel()
		},
		startURL: options.StartURL,
	}, nil
}

// Context is the browser context; locator calls must run under it.
func (s *Session) Context() context.Context {
	return s.browserContext
}

func (s *Session) StartURL() string {
	return s.startURL
}

func (s *Session) Navigate(ctx context.Context, pageURL string) error {
	log.L().Info("session_navigate", zap.String("url", pageURL))
	return chromedp.Run(ctx, chromedp.Navigate(pageURL))
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := chromedp.Run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

func (s *Session) Close() {
	s.cancel()
	log.L().Info("session_closed")
}
