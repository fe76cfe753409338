package pipeline

import (
	"context"
	"errors"
	"time"

	"sjsage522/rankscout/logger"
)

// Worker re-runs the catalog scrape and the cross-reference on an interval
type Worker struct {
	pipeline *Pipeline
	url      string
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a worker scraping url every interval
func NewWorker(p *Pipeline, url string, interval time.Duration) *Worker {
	return &Worker{
		pipeline: p,
		url:      url,
		interval: interval,
		log:      logger.ForComponent("worker"),
	}
}

// Start runs cycles until ctx is done. A failed cycle is logged and the
// next one still runs.
func (w *Worker) Start(ctx context.Context) error {
	for {
		start := time.Now()
		if err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error().Err(err).Msg("Cycle failed")
		}
		w.log.Info().Dur("elapsed", time.Since(start)).Dur("next_in", w.interval).Msg("Cycle finished")

		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce scrapes the catalog, cross-references it and trims the streams
func (w *Worker) RunOnce(ctx context.Context) error {
	catalog, err := w.pipeline.RunCatalog(ctx, w.url)
	if err != nil {
		return err
	}

	_, crossErr := w.pipeline.RunCrossReference(ctx, catalog.Records, "")

	var trimErr error
	if w.pipeline.publisher != nil {
		trimErr = w.pipeline.publisher.TrimStreams(ctx)
		if trimErr != nil {
			w.log.Error().Err(trimErr).Msg("Failed to trim streams")
		}
	}
	return errors.Join(crossErr, trimErr)
}
