package cycle

import "time"

// latch defers a timer event until the display is free. The timer sets
// pending; the first finished animation turns pending into timeTo; the
// transition predicate consumes timeTo.
type latch struct {
	period  time.Duration
	epoch   time.Time
	pending bool
	timeTo  bool
}

func newLatch(period time.Duration, now time.Time) *latch {
	return &latch{period: period, epoch: now}
}

// check sets pending when more than period has elapsed since the last firing,
// and restarts the period from now.
func (l *latch) check(now time.Time) bool {
	if now.Sub(l.epoch) <= l.period {
		return false
	}
	l.raise(now)
	return true
}

func (l *latch) raise(now time.Time) {
	l.pending = true
	l.epoch = now
}

// arm converts a pending request into a time-to trigger.
func (l *latch) arm() bool {
	if !l.pending {
		return false
	}
	l.pending = false
	l.timeTo = true
	return true
}

// consume reports and clears the time-to trigger.
func (l *latch) consume() bool {
	if !l.timeTo {
		return false
	}
	l.timeTo = false
	return true
}
