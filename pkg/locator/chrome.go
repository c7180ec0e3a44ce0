package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"SyllabusScrape/pkg/log"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultPollInterval = 200 * time.Millisecond

// shownFunction is the one definition of "visible" used by every Chrome call.
const shownFunction = `(element) => element.getClientRects().length > 0 && getComputedStyle(element).visibility !== "hidden"`

// visibleSnapshotScript copies the body without any invisible subtree and
// reports the page location next to it.
const visibleSnapshotScript = `(() => {
	const shown = ` + shownFunction + `;
	const copyVisible = (element) => {
		const copy = element.cloneNode(false);
		for (const child of element.childNodes) {
			if (child.nodeType === Node.TEXT_NODE) {
				copy.appendChild(child.cloneNode(false));
			} else if (child.nodeType === Node.ELEMENT_NODE && shown(child)) {
				copy.appendChild(copyVisible(child));
			}
		}
		return copy;
	};
	return {html: copyVisible(document.body).outerHTML, url: document.location.href};
})()`

// clickFirstVisibleFormat clicks the first visible node an XPath matches and
// reports whether there was one.
const clickFirstVisibleFormat = `((xpath) => {
	const shown = ` + shownFunction + `;
	const found = document.evaluate(xpath, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	for (let index = 0; index < found.snapshotLength; index++) {
		const element = found.snapshotItem(index);
		if (shown(element)) {
			element.scrollIntoView({block: "center"});
			element.click();
			return true;
		}
	}
	return false;
})(%s)`

type visibleSnapshot struct {
	HTML string `json:"html"`
	URL  string `json:"url"`
}

// Chrome implements Locator with chromedp. Every ctx handed to its methods
// must descend from a chromedp browser context (see session.Session.Context).
type Chrome struct {
	clickTimeout time.Duration
	pollInterval time.Duration
}

func NewChrome(clickTimeout time.Duration) *Chrome {
	return &Chrome{clickTimeout: clickTimeout, pollInterval: defaultPollInterval}
}

func (c *Chrome) Click(ctx context.Context, selector Selector) error {
	quotedXPath, quoteError := json.Marshal(selector.XPath())
	if quoteError != nil {
		return quoteError
	}
	contextWithTimeout, contextCancel := context.WithTimeout(ctx, c.clickTimeout)
	defer contextCancel()

	log.L().Debug("locator_click", zap.String("xpath", selector.XPath()))
	var clicked bool
	runError := chromedp.Run(contextWithTimeout, chromedp.Poll(
		fmt.Sprintf(clickFirstVisibleFormat, quotedXPath),
		&clicked,
		chromedp.WithPollingInterval(c.pollInterval),
		chromedp.WithPollingTimeout(c.clickTimeout),
	))
	if runError != nil {
		return fmt.Errorf("click %s: %w", selector, notRenderedOr(ctx, runError))
	}
	return nil
}

// WaitRendered polls visible snapshots, so it agrees with List on what counts as rendered.
func (c *Chrome) WaitRendered(ctx context.Context, section Section, selector Selector, bound time.Duration) error {
	contextWithTimeout, contextCancel := context.WithTimeout(ctx, bound)
	defer contextCancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		elements, listError := c.List(contextWithTimeout, section, selector)
		if listError != nil {
			return fmt.Errorf("wait %s: %w", selector, notRenderedOr(ctx, listError))
		}
		if len(elements) > 0 {
			return nil
		}
		select {
		case <-contextWithTimeout.Done():
			return fmt.Errorf("wait %s: %w", selector, notRenderedOr(ctx, contextWithTimeout.Err()))
		case <-ticker.C:
		}
	}
}

func (c *Chrome) List(ctx context.Context, section Section, selector Selector) ([]Element, error) {
	var page visibleSnapshot
	if err := chromedp.Run(ctx, chromedp.Evaluate(visibleSnapshotScript, &page)); err != nil {
		return nil, err
	}
	snapshot, snapshotError := NewSnapshot(page.HTML, page.URL)
	if snapshotError != nil {
		return nil, snapshotError
	}
	return snapshot.Find(section, selector), nil
}

// notRenderedOr maps an elapsed local deadline to ErrNotRendered; a cancelled
// parent context is passed through untouched.
func notRenderedOr(parent context.Context, runError error) error {
	if parent.Err() != nil {
		return runError
	}
	if errors.Is(runError, context.DeadlineExceeded) || errors.Is(runError, chromedp.ErrPollingTimeout) {
		return ErrNotRendered
	}
	return runError
}
