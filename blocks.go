package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// onceInterval makes a block poll a single time and keep that value.
const onceInterval = -1

const (
	defaultProducerTimeout = 5 * time.Second
	unavailable            = "N/A"
)

// ErrHidden is returned by a producer that has nothing to show this cycle.
// The block renders empty until a later poll succeeds.
var ErrHidden = errors.New("nothing to show")

// Common holds the settings every block type understands.
type Common struct {
	Icon       Icon    `yaml:"icon"`
	Interval   int     `yaml:"interval"`
	Margin     Spacing `yaml:"margin"`
	Padding    Spacing `yaml:"padding"`
	Foreground string  `yaml:"foreground"`
	Background string  `yaml:"background"`
	Swap       bool    `yaml:"swap"`
	Timeout    float64 `yaml:"timeout"`
}

func (c Common) validate() error {
	if c.Interval < onceInterval {
		return fmt.Errorf("interval must be -1 or >= 0, got %d", c.Interval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

type Block interface {
	Render() string
}

// Refresher is implemented by blocks that can be asked to poll early.
type Refresher interface {
	RequestRefresh()
	RefreshPending() bool
}

// Producer computes the current value of a block.
type Producer func(ctx context.Context) (string, error)

// StaticBlock renders fixed text through its template.
type StaticBlock struct {
	text     string
	template string
}

func NewStaticBlock(text string, c Common) *StaticBlock {
	return &StaticBlock{text: text, template: buildTemplate(c)}
}

func (b *StaticBlock) Render() string {
	return fill(b.template, b.text)
}

func newAlignBlock(a Alignment) *StaticBlock {
	return &StaticBlock{text: "%{" + string(a) + "}", template: valuePlaceholder}
}

// BlockStatus tracks how a polled block's producer has been doing.
type BlockStatus struct {
	Name        string
	Runs        int64
	Failures    int64
	LastRun     time.Time
	LastError   error
	LastLatency time.Duration
}

// PolledBlock re-runs its producer once its interval has elapsed or a
// refresh was requested. It is not safe for concurrent Render calls; only
// the refresh flag may be touched from other goroutines.
type PolledBlock struct {
	name     string
	template string
	interval time.Duration
	once     bool
	timeout  time.Duration
	produce  Producer
	logger   *slog.Logger
	now      func() time.Time

	lastUpdate time.Time
	polledOnce bool
	refresh    atomic.Bool
	refreshed  atomic.Bool
	value      string
	hidden     bool
	status     BlockStatus
}

func NewPolledBlock(name string, c Common, produce Producer, logger *slog.Logger) *PolledBlock {
	timeout := defaultProducerTimeout
	if c.Timeout > 0 {
		timeout = seconds(c.Timeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PolledBlock{
		name:     name,
		template: buildTemplate(c),
		interval: time.Duration(c.Interval) * time.Second,
		once:     c.Interval == onceInterval,
		timeout:  timeout,
		produce:  produce,
		logger:   logger.With("block", name),
		now:      time.Now,
		value:    unavailable,
		status:   BlockStatus{Name: name},
	}
}

func (b *PolledBlock) Name() string { return b.name }

// RequestRefresh makes the next Render poll regardless of the interval.
// Blocks that poll once ignore it.
func (b *PolledBlock) RequestRefresh() {
	if !b.once {
		b.refresh.Store(true)
	}
}

func (b *PolledBlock) RefreshPending() bool { return b.refresh.Load() }

// takeRefreshed reports whether a Render since the last call polled because
// of a refresh request.
func (b *PolledBlock) takeRefreshed() bool { return b.refreshed.Swap(false) }

func (b *PolledBlock) Status() BlockStatus { return b.status }

func (b *PolledBlock) due(now time.Time) bool {
	if b.once {
		return !b.polledOnce
	}
	if !b.polledOnce || b.refresh.Load() {
		return true
	}
	return !now.Before(b.lastUpdate.Add(b.interval))
}

func (b *PolledBlock) Render() string {
	now := b.now()
	if b.due(now) {
		if b.refresh.Swap(false) {
			b.refreshed.Store(true)
		}
		b.poll(now)
	}
	if b.hidden {
		return ""
	}
	return fill(b.template, b.value)
}

// poll runs the producer and keeps the previous value on failure.
func (b *PolledBlock) poll(now time.Time) {
	b.polledOnce = true
	b.lastUpdate = now

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	start := time.Now()
	v, err := b.run(ctx)
	b.status.Runs++
	b.status.LastRun = now
	b.status.LastLatency = time.Since(start)

	switch {
	case errors.Is(err, ErrHidden):
		b.hidden = true
	case err != nil:
		perr := &ProducerError{Block: b.name, Err: err}
		b.status.Failures++
		b.status.LastError = perr
		b.logger.Warn("producer failed", "error", err, "keeping", b.value)
	default:
		b.value = v
		b.hidden = false
	}
}

type produced struct {
	value string
	err   error
}

// run calls the producer on its own goroutine so one that ignores ctx cannot
// hold the feed loop past its timeout.
func (b *PolledBlock) run(ctx context.Context) (string, error) {
	done := make(chan produced, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- produced{err: fmt.Errorf("producer panic: %v", r)}
			}
		}()
		v, err := b.produce(ctx)
		done <- produced{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return r.value, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
