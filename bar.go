package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultUpdateInterval = time.Second
	defaultTick           = 100 * time.Millisecond
)

type Alignment string

const (
	AlignLeft   Alignment = "l"
	AlignCenter Alignment = "c"
	AlignRight  Alignment = "r"
)

var alignments = []Alignment{AlignLeft, AlignCenter, AlignRight}

// Layout groups blocks by alignment.
type Layout map[Alignment][]Block

// Sink receives composed lines.
type Sink interface {
	WriteLine(line string) error
	Close() error
}

// Bar composes the blocks into one line per tick and pushes it to the sink
// when the update interval elapsed or a refresh was requested.
type Bar struct {
	blocks         []Block
	updateInterval time.Duration
	tick           time.Duration
	logger         *slog.Logger
	now            func() time.Time

	lastPush time.Time
	pushed   bool
	refresh  atomic.Bool
}

// NewBar orders the blocks left, center, right. Each non-empty group is
// prefixed by its alignment marker.
func NewBar(layout Layout, updateInterval, tick time.Duration, logger *slog.Logger) *Bar {
	if updateInterval <= 0 {
		updateInterval = defaultUpdateInterval
	}
	if tick <= 0 {
		tick = defaultTick
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bar{
		updateInterval: updateInterval,
		tick:           tick,
		logger:         logger,
		now:            time.Now,
	}
	for _, a := range alignments {
		group := layout[a]
		if len(group) == 0 {
			continue
		}
		b.blocks = append(b.blocks, newAlignBlock(a))
		b.blocks = append(b.blocks, group...)
	}
	return b
}

// Blocks returns the blocks in render order, alignment markers included.
func (b *Bar) Blocks() []Block { return b.blocks }

// Refresh forces a push on the next tick and makes every block poll again.
func (b *Bar) Refresh() {
	for _, blk := range b.blocks {
		if r, ok := blk.(Refresher); ok {
			r.RequestRefresh()
		}
	}
	b.refresh.Store(true)
}

// Compose renders every block in order.
func (b *Bar) Compose() string {
	var sb strings.Builder
	for _, blk := range b.blocks {
		sb.WriteString(blk.Render())
	}
	sb.WriteByte('\n')
	return sb.String()
}

type refreshConsumer interface {
	takeRefreshed() bool
}

// consumedRefresh reports whether a refresh was requested for the bar or
// used up by a block during the last Compose. Every block flag is cleared.
func (b *Bar) consumedRefresh() bool {
	pending := b.refresh.Swap(false)
	for _, blk := range b.blocks {
		if r, ok := blk.(refreshConsumer); ok && r.takeRefreshed() {
			pending = true
		}
	}
	return pending
}

// Step runs one tick. It returns the composed line and whether it is due
// for the sink.
func (b *Bar) Step() (string, bool) {
	line := b.Compose()
	// Read after rendering so requests made during Compose still push.
	pending := b.consumedRefresh()
	now := b.now()
	due := !b.pushed || !now.Before(b.lastPush.Add(b.updateInterval)) || pending
	if due {
		b.lastPush = now
		b.pushed = true
	}
	return line, due
}

// Run feeds the sink until ctx is cancelled or the sink fails. The sink is
// closed on return.
func (b *Bar) Run(ctx context.Context, sink Sink) (err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
		b.logStatus()
	}()

	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	for {
		if line, due := b.Step(); due {
			if werr := sink.WriteLine(line); werr != nil {
				if errors.Is(werr, ErrSink) {
					return werr
				}
				return fmt.Errorf("%w: %v", ErrSink, werr)
			}
		}

		select {
		case <-ctx.Done():
			b.logger.Info("feed loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (b *Bar) logStatus() {
	for _, blk := range b.blocks {
		p, ok := blk.(*PolledBlock)
		if !ok {
			continue
		}
		s := p.Status()
		b.logger.Debug("block status",
			"block", s.Name,
			"runs", s.Runs,
			"failures", s.Failures,
			"last_latency", s.LastLatency,
		)
	}
}
