package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventSummary is the event type carrying a refreshed Summary.
const EventSummary = "dashboard.summary"

// ErrFeedClosed is returned by Refresh after Close.
var ErrFeedClosed = errors.New("dashboard feed closed")

// Publisher delivers a payload to subscribers of a topic.
type Publisher interface {
	PublishJSON(topic, eventType string, v interface{}) error
}

// Feed keeps the latest Summary and pushes it to subscribers whenever a
// mutation requests a refresh.
//
// Each refresh takes a generation number. A result is kept only when no newer
// refresh has started since, so a slow load can never overwrite a newer one.
type Feed struct {
	source Source
	pub    Publisher
	topic  string
	now    func() time.Time
	logger zerolog.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	gen    uint64
	latest *Summary
	closed bool
}

// NewFeed returns a Feed publishing to topic. pub may be nil.
func NewFeed(source Source, pub Publisher, topic string, now func() time.Time, logger zerolog.Logger) *Feed {
	if now == nil {
		now = time.Now
	}
	base, cancel := context.WithCancel(context.Background())
	return &Feed{
		source: source,
		pub:    pub,
		topic:  topic,
		now:    now,
		logger: logger.With().Str("component", "dashboard_feed").Logger(),
		base:   base,
		cancel: cancel,
	}
}

// Refresh reloads every collection and, unless superseded, stores and
// publishes the new Summary. It reports whether the result was applied. On a
// load failure the previous Summary is kept.
func (f *Feed) Refresh(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false, ErrFeedClosed
	}
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	c, err := f.source.Load(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Uint64("generation", gen).Msg("dashboard refresh failed")
		return false, err
	}
	s := NewSummary(c, f.now())

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.gen || ctx.Err() != nil {
		f.logger.Debug().Uint64("generation", gen).Msg("discarding superseded dashboard refresh")
		return false, nil
	}
	f.latest = &s
	if f.pub != nil {
		if err := f.pub.PublishJSON(f.topic, EventSummary, s); err != nil {
			f.logger.Error().Err(err).Msg("publish dashboard summary")
		}
	}
	return true, nil
}

// Trigger starts a refresh in the background. The refresh is detached from
// ctx's cancellation so it outlives the request that caused it, but it stops
// when the feed is closed.
func (f *Feed) Trigger(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.wg.Add(1)
	f.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer f.wg.Done()
		rctx, stop := context.WithCancel(detached)
		defer stop()
		go func() {
			select {
			case <-f.base.Done():
				stop()
			case <-rctx.Done():
			}
		}()
		_, _ = f.Refresh(rctx)
	}()
}

// Latest returns the most recently applied Summary.
func (f *Feed) Latest() (Summary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return Summary{}, false
	}
	return *f.latest, true
}

// Close cancels in-flight refreshes and waits for them to return. Results
// arriving afterwards are discarded.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()
	f.cancel()
	f.wg.Wait()
}
