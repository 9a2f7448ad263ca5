// Package playback drives the time index of a session's dataset: direct
// slider seeks and a play/pause ticker that stops at the last record.
package playback

import (
	"context"
	"sync"
	"time"

	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
)

// DefaultInterval matches the dashboard's 50 ms animation frame duration.
const DefaultInterval = 50 * time.Millisecond

// State is a snapshot of the playback position.
type State struct {
	Index   int  `json:"index"`
	Length  int  `json:"length"`
	Playing bool `json:"playing"`
}

// AtEnd reports whether the index is on the last record.
func (s State) AtEnd() bool {
	return s.Length == 0 || s.Index >= s.Length-1
}

// TickHook is called after every index advance made by the ticker.
type TickHook func(State)

// Controller owns one session's playback state.
type Controller struct {
	interval time.Duration
	logger   customlog.Logger

	mu      sync.Mutex
	index   int
	length  int
	playing bool
	// gen changes whenever a running ticker must stop applying ticks.
	gen    uint64
	cancel context.CancelFunc
	hook   TickHook
	closed bool

	subs    map[int]chan State
	nextSub int
}

// NewController creates a stopped controller with an empty dataset.
func NewController(interval time.Duration, logger customlog.Logger) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		interval: interval,
		logger:   logger,
		subs:     make(map[int]chan State),
	}
}

// SetTickHook installs a callback run after each ticker advance.
func (c *Controller) SetTickHook(h TickHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = h
}

// Interval returns the ticker cadence.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{Index: c.index, Length: c.length, Playing: c.playing}
}

func (c *Controller) clampLocked(i int) int {
	if i >= c.length {
		i = c.length - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Reset is called when a new dataset is loaded: playback stops and the index
// returns to zero.
func (c *Controller) Reset(length int) State {
	c.mu.Lock()
	c.stopLocked()
	if length < 0 {
		length = 0
	}
	c.length = length
	c.index = 0
	s := c.stateLocked()
	c.publishLocked(s)
	c.mu.Unlock()

	return s
}

// Seek sets the index directly. Out-of-range values are clamped, never rejected.
// A running playback continues from the new index.
func (c *Controller) Seek(index int) State {
	c.mu.Lock()
	c.index = c.clampLocked(index)
	s := c.stateLocked()
	c.publishLocked(s)
	c.mu.Unlock()

	return s
}

// Play starts advancing the index every interval. It does nothing when the
// controller is already playing, closed, or sitting on the last record.
func (c *Controller) Play() State {
	c.mu.Lock()
	if c.playing || c.closed || c.stateLocked().AtEnd() {
		s := c.stateLocked()
		c.mu.Unlock()
		return s
	}

	c.playing = true
	c.gen++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx, c.gen)

	s := c.stateLocked()
	c.publishLocked(s)
	c.mu.Unlock()

	c.logger.Debugf("Playback started at index %d/%d", s.Index, s.Length)
	return s
}

// Pause stops playback. Any tick already in flight is discarded.
func (c *Controller) Pause() State {
	c.mu.Lock()
	wasPlaying := c.playing
	c.stopLocked()
	s := c.stateLocked()
	if wasPlaying {
		c.publishLocked(s)
	}
	c.mu.Unlock()

	if wasPlaying {
		c.logger.Debugf("Playback paused at index %d/%d", s.Index, s.Length)
	}
	return s
}

// stopLocked clears the play flag and releases the ticker.
func (c *Controller) stopLocked() {
	c.playing = false
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Step applies one tick: advance by one record, or stop when already on the
// last one. It reports whether the index moved.
func (c *Controller) Step() (State, bool) {
	c.mu.Lock()
	s, moved, hook := c.stepLocked()
	c.publishLocked(s)
	c.mu.Unlock()

	if moved && hook != nil {
		hook(s)
	}
	return s, moved
}

func (c *Controller) stepLocked() (State, bool, TickHook) {
	if c.stateLocked().AtEnd() {
		c.stopLocked()
		return c.stateLocked(), false, nil
	}
	c.index++
	return c.stateLocked(), true, c.hook
}

func (c *Controller) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.gen != gen || !c.playing {
			c.mu.Unlock()
			return
		}
		s, moved, hook := c.stepLocked()
		c.publishLocked(s)
		c.mu.Unlock()

		if !moved {
			c.logger.Debugf("Playback reached the end at index %d", s.Index)
			return
		}
		if hook != nil {
			hook(s)
		}
	}
}

// Subscribe returns a channel receiving the newest state after every change.
// Slow readers only ever see the most recent state. The returned func
// unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
			c.mu.Unlock()
		})
	}
}

// Subscribers is the number of open subscriptions.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// publishLocked fans s out to subscribers. Sends never block.
func (c *Controller) publishLocked(s State) {
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			// drop the stale state, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Close stops playback and closes every subscriber channel.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
