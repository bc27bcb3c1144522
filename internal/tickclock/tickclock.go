// Package tickclock drives the fixed-step simulation loop: a
// time.Ticker-fed accumulator that runs at most config.MaxCatchUpTicks
// logic ticks per ticker wakeup, plus conversions between the three
// timing units the original game used (game frames at 15Hz, and the
// "fast"/"slow" tick units the original's timer interrupt exposed at
// 280Hz/140Hz for finer-grained animation and physics effects).
package tickclock

import (
	"sync"
	"time"

	"duke2sim/internal/config"
	"duke2sim/internal/gamelog"
)

// StepFunc runs one fixed logic tick.
type StepFunc func(tickNum uint64)

// Clock runs a fixed-step accumulator loop on its own goroutine,
// calling StepFunc once per logic tick and bounding catch-up so a stall
// (GC pause, slow render) can't cause a burst of simulation ticks.
type Clock struct {
	mu       sync.Mutex
	timing   config.TimingConfig
	step     StepFunc
	ticker   *time.Ticker
	stopChan chan struct{}
	running  bool

	tickCount uint64
	accum     time.Duration
	lastTick  time.Time
}

// New creates a Clock bound to the given timing configuration and step
// function. The step function must be safe to call from the clock's
// internal goroutine only; callers synchronize with it externally (the
// teacher's engine used a single mutex around the whole tick — session
// orchestration here does the same around StepFunc).
func New(timing config.TimingConfig, step StepFunc) *Clock {
	return &Clock{
		timing:   timing,
		step:     step,
		stopChan: make(chan struct{}),
	}
}

// Start begins the accumulator loop. The ticker fires far more often
// than the logic rate (every fast tick) so the accumulator can track
// real elapsed time precisely and never drift.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.lastTick = time.Now()
	c.mu.Unlock()

	driverInterval := time.Second / time.Duration(c.timing.FastTickHz)
	c.ticker = time.NewTicker(driverInterval)

	go func() {
		for {
			select {
			case <-c.ticker.C:
				c.advance()
			case <-c.stopChan:
				return
			}
		}
	}()

	gamelog.Info("tick clock started at %d Hz (catch-up bound %d)", c.timing.GameHz, c.timing.MaxCatchUpTicks)
}

// Stop halts the accumulator loop.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false
	if c.ticker != nil {
		c.ticker.Stop()
	}
	close(c.stopChan)
	gamelog.Info("tick clock stopped")
}

func (c *Clock) advance() {
	c.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(c.lastTick)
	c.lastTick = now
	c.accum += elapsed

	step := c.timing.GameStep()
	ticksRun := 0
	for c.accum >= step && ticksRun < c.timing.MaxCatchUpTicks {
		c.accum -= step
		c.tickCount++
		ticksRun++
		tickNum := c.tickCount
		c.mu.Unlock()
		c.step(tickNum)
		c.mu.Lock()
	}
	if ticksRun == c.timing.MaxCatchUpTicks && c.accum >= step {
		// Dropped accumulated time rather than spiral into a death loop.
		c.accum = 0
	}
	c.mu.Unlock()
}

// RunDemoTick runs exactly one logic tick unconditionally, bypassing the
// accumulator entirely. Demo playback must be deterministic: one input
// byte always advances the simulation by exactly one tick regardless of
// wall-clock time.
func (c *Clock) RunDemoTick() {
	c.mu.Lock()
	c.tickCount++
	tickNum := c.tickCount
	c.mu.Unlock()
	c.step(tickNum)
}

// TickCount returns the number of logic ticks executed so far.
func (c *Clock) TickCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickCount
}

// InterpolationFactor returns how far into the next logic tick the
// accumulator currently sits, in [0, 1) — used by the renderer to
// interpolate between the previous and current snapshot.
func (c *Clock) InterpolationFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.timing.GameStep()
	if step <= 0 {
		return 0
	}
	return float64(c.accum) / float64(step)
}

// SlowTicksToDuration converts a count of 140Hz "slow ticks" (the unit
// used for cloak/rapid-fire timers) to a time.Duration.
func SlowTicksToDuration(ticks int) time.Duration {
	return time.Duration(ticks) * time.Second / 140
}

// DurationToSlowTicks converts a duration to a count of 140Hz slow ticks.
func DurationToSlowTicks(d time.Duration) int {
	return int(d * 140 / time.Second)
}

// FastTicksToDuration converts a count of 280Hz "fast ticks" to a
// time.Duration.
func FastTicksToDuration(ticks int) time.Duration {
	return time.Duration(ticks) * time.Second / 280
}

// DurationToFastTicks converts a duration to a count of 280Hz fast ticks.
func DurationToFastTicks(d time.Duration) int {
	return int(d * 280 / time.Second)
}

// GameFramesToDuration converts a count of 15Hz game frames (logic
// ticks) to a time.Duration. One game frame is about 18.7 fast ticks
// (280/15).
func GameFramesToDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / 15
}

// DurationToGameFrames converts a duration to a count of 15Hz game
// frames.
func DurationToGameFrames(d time.Duration) int {
	return int(d * 15 / time.Second)
}
