package browser

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightBrowser launches a fresh Chromium per opened page
type PlaywrightBrowser struct {
	pw       *playwright.Playwright
	headless bool
	mu       sync.Mutex
}

// NewPlaywrightBrowser starts the playwright driver
func NewPlaywrightBrowser(headless bool) (*PlaywrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	return &PlaywrightBrowser{pw: pw, headless: headless}, nil
}

// Open launches Chromium with a context matching the profile
func (b *PlaywrightBrowser) Open(profile Profile) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pw == nil {
		return nil, fmt.Errorf("playwright driver is stopped")
	}

	browser, err := b.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{}
	if profile.UserAgent != "" {
		contextOptions.UserAgent = playwright.String(profile.UserAgent)
	}
	if profile.Locale != "" {
		contextOptions.Locale = playwright.String(profile.Locale)
	}
	if profile.TimezoneID != "" {
		contextOptions.TimezoneId = playwright.String(profile.TimezoneID)
	}

	browserContext, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &playwrightPage{browser: browser, page: page}, nil
}

// Close stops the playwright driver
func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pw == nil {
		return nil
	}
	err := b.pw.Stop()
	b.pw = nil
	return err
}

type playwrightPage struct {
	browser playwright.Browser
	page    playwright.Page
	closed  bool
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (p *playwrightPage) ClickButton(label string, timeout time.Duration) (bool, error) {
	locator := p.page.Locator(fmt.Sprintf("button:has-text('%s')", escapeSelectorText(label)))
	count, err := locator.Count()
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	if err := locator.First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (p *playwrightPage) ScrollToBottom() error {
	_, err := p.page.Evaluate("window.scrollBy(0, document.body.scrollHeight)")
	return err
}

func (p *playwrightPage) WaitForNetworkIdle(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

// Close tears down the whole browser, not just the tab
func (p *playwrightPage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.browser.Close()
}

func escapeSelectorText(label string) string {
	return strings.ReplaceAll(label, "'", `\'`)
}
