// Package cycle runs the display cycle: a fixed-topology state machine ticked
// at a constant period.
//
// Each tick runs, in order: the one-shot entry action of a freshly entered
// state, collection of an in-flight weather fetch, the display poll (which
// either converts pending requests into time-to triggers or restarts the
// current animation), queued manual requests, the timers watched by the
// current state, and finally the transition table.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/i474232898/weather-scroller/internal/display"
	"github.com/i474232898/weather-scroller/internal/weather"
)

// WeatherFetcher performs one blocking fetch. Failures come back as cleared
// snapshots.
type WeatherFetcher interface {
	Fetch(ctx context.Context) weather.Snapshot
}

// TimeFormatter resolves the current time as display text.
type TimeFormatter interface {
	Format() string
}

// Config tunes the controller. Zero durations take the defaults of the
// topology, except Pause: zero holds for no time, negative takes the default.
type Config struct {
	Topology       Topology
	GatherInterval time.Duration
	ClockInterval  time.Duration
	Speed          time.Duration // display frame delay
	Pause          time.Duration // display hold time
	Async          bool          // fetch on a background worker
	Debug          bool          // log every tick
}

func (c Config) withDefaults() Config {
	if c.Topology == "" {
		c.Topology = TopologyFull
	}
	if c.GatherInterval == 0 {
		if c.Topology == TopologyWeather {
			c.GatherInterval = time.Minute
		} else {
			c.GatherInterval = 5 * time.Minute
		}
	}
	if c.ClockInterval == 0 {
		c.ClockInterval = time.Minute
	}
	if c.Speed == 0 {
		c.Speed = 100 * time.Millisecond
	}
	if c.Pause < 0 {
		c.Pause = 100 * time.Millisecond
	}
	return c
}

type look struct {
	align  display.Alignment
	effect display.Effect
}

var looks = map[State]look{
	StateIdle:   {display.AlignLeft, display.EffectScrollLeft},
	StateGather: {display.AlignLeft, display.EffectScrollLeft},
	StateClock:  {display.AlignCenter, display.EffectPrint},
	StateNtc:    {display.AlignCenter, display.EffectPrint},
}

var (
	ErrUnknownKind = errors.New("request kind not used by this topology")
	ErrBusy        = errors.New("request queue full")
)

// Controller owns all cycle state. Apart from Request and Status, its methods
// must be called from the goroutine that ticks it.
type Controller struct {
	cfg     Config
	table   []Transition
	watched map[State][]Kind

	weather  WeatherFetcher
	times    TimeFormatter
	display  display.Driver
	clock    clock.Clock
	gatherer gatherer

	state   State
	entered bool

	content     string
	weatherText string
	timeText    string
	last        weather.Snapshot

	latches  map[Kind]*latch
	task     *fetchTask
	gathered bool

	requests chan Kind
	ticks    uint64

	status statusBox
}

// New creates a controller. The cycle starts in Gather so the first tick
// fetches the weather.
func New(cfg Config, w WeatherFetcher, t TimeFormatter, d display.Driver, clk clock.Clock) (*Controller, error) {
	cfg = cfg.withDefaults()

	table, err := Table(cfg.Topology)
	if err != nil {
		return nil, err
	}
	if w == nil || d == nil {
		return nil, errors.New("cycle: weather fetcher and display are required")
	}
	if t == nil && cfg.Topology == TopologyFull {
		return nil, errors.New("cycle: time formatter is required for the full topology")
	}
	if cfg.GatherInterval < 0 || cfg.ClockInterval < 0 {
		return nil, fmt.Errorf("cycle: negative timer period")
	}
	if clk == nil {
		clk = clock.NewClock()
	}

	c := &Controller{
		cfg:      cfg,
		table:    table,
		watched:  watched(table),
		weather:  w,
		times:    t,
		display:  d,
		clock:    clk,
		gatherer: inline{},
		state:    StateGather,
		entered:  true,
		latches:  make(map[Kind]*latch),
		requests: make(chan Kind, 4),
	}
	if cfg.Async {
		c.gatherer = newWorker()
	}

	now := clk.Now()
	periods := map[Kind]time.Duration{
		KindGather: cfg.GatherInterval,
		KindClock:  cfg.ClockInterval,
	}
	for _, tr := range table {
		if k, ok := tr.Event.kind(); ok {
			c.latches[k] = newLatch(periods[k], now)
		}
	}

	c.publish(now)
	return c, nil
}

// Run ticks the controller, waiting period after each tick, until ctx is
// done.
func (c *Controller) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("cycle: tick period must be positive, got %s", period)
	}
	log.Printf("INFO: cycle: running %s topology, tick %s, gather every %s", c.cfg.Topology, period, c.cfg.GatherInterval)

	for {
		c.Tick(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.clock.After(period):
		}
	}
}

// Tick runs one step of the cycle.
func (c *Controller) Tick(ctx context.Context) {
	c.ticks++
	if c.cfg.Debug {
		log.Printf("DEBUG: cycle: [%s state]", c.state)
	}

	if c.entered {
		c.entered = false
		c.enter(ctx)
		c.collect()
		c.render()
	} else if c.collect() {
		c.render()
	}

	if c.display.Animate() {
		if !c.armWatched() {
			c.render()
		}
	}

	now := c.clock.Now()
	c.drainRequests(now)
	for _, k := range c.watched[c.state] {
		if c.latches[k].check(now) && c.cfg.Debug {
			log.Printf("DEBUG: cycle: %s timer fired", k)
		}
	}

	c.evaluate()
	c.publish(now)
}

// enter runs the one-shot action of the current state.
func (c *Controller) enter(ctx context.Context) {
	switch c.state {
	case StateIdle:
		c.content = c.weatherText
	case StateClock:
		c.content = c.timeText
	case StateGather:
		c.gathered = false
		c.task = c.gatherer.start(ctx, c.weather)
	case StateNtc:
		c.timeText = c.times.Format()
		c.content = c.timeText
	}
}

// collect takes the result of the in-flight fetch if it is ready.
func (c *Controller) collect() bool {
	if c.task == nil {
		return false
	}
	s, ok := c.task.poll()
	if !ok {
		return false
	}

	c.task = nil
	c.gathered = true
	c.last = s
	c.weatherText = s.Format()
	c.content = c.weatherText
	if s.Cleared() {
		log.Printf("cycle: gather #%d returned no data", s.Sequence)
	}
	return true
}

// armWatched converts the pending latches of the current state. It reports
// whether any was converted.
func (c *Controller) armWatched() bool {
	armed := false
	for _, k := range c.watched[c.state] {
		if c.latches[k].arm() {
			armed = true
		}
	}
	return armed
}

func (c *Controller) render() {
	l := looks[c.state]
	c.display.Render(c.content, l.align, c.cfg.Speed, c.cfg.Pause, l.effect)
}

func (c *Controller) evaluate() {
	for _, tr := range c.table {
		if tr.From != c.state {
			continue
		}
		if c.fire(tr.Event) {
			log.Printf("cycle: %s -> %s on %s", c.state, tr.To, tr.Event)
			c.state = tr.To
			c.entered = true
			return
		}
	}
}

func (c *Controller) fire(e Event) bool {
	switch e {
	case EventTimeToGather, EventTimeToClock:
		k, _ := e.kind()
		return c.latches[k].consume()
	case EventGathered:
		return c.gathered
	case EventAlways:
		return true
	default:
		return false
	}
}

// Request queues a manual request. It is applied on the next tick as if the
// timer of that kind had fired.
func (c *Controller) Request(k Kind) error {
	if _, ok := c.latches[k]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	select {
	case c.requests <- k:
		return nil
	default:
		return ErrBusy
	}
}

func (c *Controller) drainRequests(now time.Time) {
	for {
		select {
		case k := <-c.requests:
			log.Printf("INFO: cycle: manual %s request", k)
			c.latches[k].raise(now)
		default:
			return
		}
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Content returns the text currently on the display.
func (c *Controller) Content() string {
	return c.content
}
