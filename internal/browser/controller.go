package browser

import (
	"context"
	"time"

	"sjsage522/rankscout/logger"
	scrapeerrors "sjsage522/rankscout/pkg/errors"
)

const (
	consentClickTimeout = 3 * time.Second
	consentSettle       = time.Second
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller prepares a page for extraction: navigate, dismiss consent,
// scroll a fixed number of times, then wait for network idle.
type Controller struct {
	profile Profile
	sleep   SleepFunc
	log     *logger.Logger
}

// NewController creates a controller for a site profile
func NewController(profile Profile) *Controller {
	return &Controller{
		profile: profile,
		sleep:   contextSleep,
		log:     logger.ForComponent("browser").WithField("site", profile.Name),
	}
}

// WithSleep replaces the settle wait, used by tests
func (c *Controller) WithSleep(sleep SleepFunc) *Controller {
	c.sleep = sleep
	return c
}

// Profile returns the profile the controller was built with
func (c *Controller) Profile() Profile {
	return c.profile
}

// Prepare readies page for extraction. Only navigation failures and context
// cancellation are returned; consent, scroll and idle problems are logged.
func (c *Controller) Prepare(ctx context.Context, page Page, url string) error {
	c.log.Info().Str("url", url).Msg("Loading page")

	if err := page.Goto(url, c.profile.NavigationTimeout); err != nil {
		return scrapeerrors.NewNavigation(c.profile.Name, url, err)
	}

	if err := c.dismissConsent(ctx, page); err != nil {
		return err
	}

	// Fixed number of cycles; new content is not detected.
	for i := 0; i < c.profile.MaxScrolls; i++ {
		if err := page.ScrollToBottom(); err != nil {
			c.log.Warn().Err(err).Int("cycle", i+1).Msg("Scroll failed")
		}
		if err := c.sleep(ctx, c.profile.ScrollSettle); err != nil {
			return err
		}
	}

	if err := page.WaitForNetworkIdle(c.profile.IdleTimeout); err != nil {
		c.log.Debug().Err(err).Msg("Network did not go idle, continuing")
	}

	return ctx.Err()
}

// dismissConsent clicks the first consent button found
func (c *Controller) dismissConsent(ctx context.Context, page Page) error {
	for _, label := range c.profile.ConsentLabels {
		clicked, err := page.ClickButton(label, consentClickTimeout)
		if err != nil {
			c.log.Debug().Err(err).Str("label", label).Msg("Consent click failed")
			continue
		}
		if clicked {
			c.log.Info().Str("label", label).Msg("Clicked consent button")
			return c.sleep(ctx, consentSettle)
		}
	}
	return nil
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
