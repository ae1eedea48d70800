package poller

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/atm-watch/internal/atm"
	"github.com/pfrederiksen/atm-watch/internal/geo"
	"github.com/pfrederiksen/atm-watch/internal/logger"
	"github.com/pfrederiksen/atm-watch/internal/notifier"
	"github.com/pfrederiksen/atm-watch/internal/telegram"
)

// Fetcher returns the ATMs currently reported inside bounds
type Fetcher interface {
	FetchATMs(ctx context.Context, currencies []string, bounds geo.Bounds) ([]*atm.ATM, error)
}

// Renderer turns the sorted, enriched ATM list into message text
type Renderer interface {
	Render(atms []*atm.ATM) (string, error)
}

// Outcome describes how a single cycle ended
type Outcome string

const (
	OutcomeNoATMs      Outcome = "no_atms"
	OutcomeSent        Outcome = "sent"
	OutcomeNothingNew  Outcome = "nothing_new"
	OutcomeRenderError Outcome = "render_error"
	OutcomeRejected    Outcome = "rejected"
	OutcomeNotifyError Outcome = "notify_error"
)

// Options configures a Poller
type Options struct {
	Currencies   []string
	Bounds       geo.Bounds
	POIs         []atm.POI
	Interval     time.Duration
	ClipToBounds bool
	// Target is only used in log fields
	Target string
}

// Poller runs the fetch, enrich, sort, render, dedupe and notify cycle
type Poller struct {
	fetcher  Fetcher
	renderer Renderer
	notifier notifier.Notifier
	opts     Options
	log      *logger.Logger
	metrics  *logger.Metrics
	sleep    func(ctx context.Context, d time.Duration) error

	// sentHash is the fingerprint of the last message the notifier accepted
	sentHash string
}

// New creates a Poller
func New(fetcher Fetcher, renderer Renderer, n notifier.Notifier, opts Options) *Poller {
	return &Poller{
		fetcher:  fetcher,
		renderer: renderer,
		notifier: n,
		opts:     opts,
		log:      logger.Default(),
		metrics:  logger.DefaultMetrics(),
		sleep:    sleepContext,
	}
}

// WithLogger replaces the logger used by the poller
func (p *Poller) WithLogger(l *logger.Logger) *Poller {
	p.log = l
	return p
}

// WithMetrics replaces the metrics tracker used by the poller
func (p *Poller) WithMetrics(m *logger.Metrics) *Poller {
	p.metrics = m
	return p
}

// Metrics returns the poller's metrics tracker
func (p *Poller) Metrics() *logger.Metrics {
	return p.metrics
}

// Run executes cycles separated by the configured interval until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	for {
		if _, err := p.Cycle(ctx); err != nil {
			return err
		}
		if err := p.sleep(ctx, p.opts.Interval); err != nil {
			return err
		}
	}
}

// Cycle runs a single poll without sleeping afterwards. Recoverable failures
// are logged and reported through the outcome; the error is only set when ctx
// was cancelled.
func (p *Poller) Cycle(ctx context.Context) (Outcome, error) {
	fields := logger.Fields{"cycle_id": uuid.NewString()}
	p.metrics.IncrCounter("poll.cycles")

	atms := p.fetch(ctx, fields)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(atms) == 0 {
		p.log.Info("No ATMs", fields)
		return OutcomeNoATMs, nil
	}

	fields["atms"] = len(atms)
	p.metrics.SetGauge("atms", float64(len(atms)))
	p.log.Info(fmt.Sprintf("%d ATMs", len(atms)), fields)

	atm.Enrich(atms, p.opts.POIs)
	atm.Sort(atms)

	text, err := p.renderer.Render(atms)
	if err != nil {
		p.metrics.IncrCounter("render.errors")
		p.log.Error("Rendering message failed", fields, err)
		return OutcomeRenderError, nil
	}

	hash := Fingerprint(text)
	if hash == p.sentHash {
		p.metrics.IncrCounter("notify.skipped")
		p.log.Info("Message omitted - nothing new", fields)
		return OutcomeNothingNew, nil
	}

	if err := p.notifier.Notify(ctx, text); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// A rejected message counts as delivered so identical text is not posted again
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			p.sentHash = hash
			p.metrics.IncrCounter("notify.rejected")
			p.log.Error("Message rejected", fields, err)
			return OutcomeRejected, nil
		}
		p.metrics.IncrCounter("notify.errors")
		p.log.Error("Sending message failed", fields, err)
		return OutcomeNotifyError, nil
	}

	p.sentHash = hash
	p.metrics.IncrCounter("notify.sent")
	fields["target"] = p.opts.Target
	p.log.Info("Message sent", fields)
	return OutcomeSent, nil
}

// fetch queries the source and applies the optional bounds clip. Failures
// are logged and reported as an empty list.
func (p *Poller) fetch(ctx context.Context, fields logger.Fields) []*atm.ATM {
	start := time.Now()
	atms, err := p.fetcher.FetchATMs(ctx, p.opts.Currencies, p.opts.Bounds)
	p.metrics.RecordTiming("atm.fetch", time.Since(start))
	if err != nil {
		if ctx.Err() == nil {
			p.metrics.IncrCounter("fetch.errors")
			p.log.Warn("Fetching ATMs failed", fields, err)
		}
		return nil
	}

	if !p.opts.ClipToBounds || len(atms) == 0 {
		return atms
	}

	clipped, err := atm.Clip(atms, p.opts.Bounds)
	if err != nil {
		p.log.Warn("Clipping ATMs to bounds failed", fields, err)
		return atms
	}
	if dropped := len(atms) - len(clipped); dropped > 0 {
		p.log.Debug("Dropped ATMs outside bounds", logger.Fields{
			"cycle_id": fields["cycle_id"],
			"dropped":  dropped,
		})
	}
	return clipped
}

// Fingerprint returns the MD5 hex digest used to detect unchanged messages
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// sleepContext pauses for d or until ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
