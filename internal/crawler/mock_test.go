package crawler

import (
	"context"
	"errors"
	"time"

	"sjsage522/rankscout/config"
	"sjsage522/rankscout/internal/browser"
)

// fakeBrowser hands out pages serving fixed HTML
type fakeBrowser struct {
	html      string
	htmlByURL map[string]string
	openErr   error
	gotoErr   error
	opened    []*fakePage
	profiles  []browser.Profile
}

func (b *fakeBrowser) Open(profile browser.Profile) (browser.Page, error) {
	b.profiles = append(b.profiles, profile)
	if b.openErr != nil {
		return nil, b.openErr
	}
	page := &fakePage{browser: b}
	b.opened = append(b.opened, page)
	return page, nil
}

func (b *fakeBrowser) allClosed() bool {
	for _, p := range b.opened {
		if !p.closed {
			return false
		}
	}
	return true
}

type fakePage struct {
	browser *fakeBrowser
	url     string
	closed  bool
}

func (p *fakePage) Goto(url string, timeout time.Duration) error {
	p.url = url
	return p.browser.gotoErr
}

func (p *fakePage) ClickButton(label string, timeout time.Duration) (bool, error) {
	return false, nil
}

func (p *fakePage) ScrollToBottom() error {
	return nil
}

func (p *fakePage) WaitForNetworkIdle(timeout time.Duration) error {
	return errors.New("Timeout 5000ms exceeded")
}

func (p *fakePage) Content() (string, error) {
	if html, ok := p.browser.htmlByURL[p.url]; ok {
		return html, nil
	}
	return p.browser.html, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// mapTranslator translates through a lookup table; unknown text fails
type mapTranslator struct {
	table map[string]string
	calls int
}

func (m *mapTranslator) Translate(_ context.Context, text, target string) (string, error) {
	m.calls++
	if translated, ok := m.table[text]; ok {
		return translated, nil
	}
	return "", errors.New("translation backend unavailable")
}

func noSleep(context.Context, time.Duration) error {
	return nil
}

func testConfig() config.Config {
	return config.Config{
		CatalogURL:            "https://ranking.rakuten.co.jp/daily/100371/",
		MarketplaceSearchURL:  "https://www.alibaba.com/trade/search?fsb=y&IndexArea=product_en&SearchText=%s&tab=supplier",
		MaxScrolls:            2,
		MarketplaceMaxScrolls: 1,
		MaxPrimaryRecords:     10,
		MaxSecondaryRecords:   5,
		NavigationTimeout:     time.Minute,
		IdleTimeout:           time.Second,
		TranslateTarget:       "en",
	}
}
