package engine

import "sync"

// Tracker turns per-phase step counts into a single weighted 0-100 progress
// stream. Phase weights must sum to 100 across a run; within a phase the
// percentage only moves forward, so consumers see a monotonic stream even
// when steps arrive out of order from concurrent workers.
type Tracker struct {
	mu      sync.Mutex
	fn      ProgressFunc
	phase   string
	base    int
	weight  int
	current int
}

// NewTracker wraps fn. A nil fn yields a tracker that swallows updates.
func NewTracker(fn ProgressFunc) *Tracker {
	return &Tracker{fn: fn}
}

// Phase closes the current phase (advancing the base by its weight) and
// opens a new one worth weight percentage points.
func (t *Tracker) Phase(name string, weight int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.base += t.weight
	t.phase = name
	t.weight = weight
}

// Step reports completion of step done out of total within the current
// phase. Steps never move the percentage backwards.
func (t *Tracker) Step(done, total int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total <= 0 {
		total = 1
	}
	pct := t.base + done*t.weight/total
	if pct > t.base+t.weight {
		pct = t.base + t.weight
	}
	t.emit(pct, message)
}

// Done reports the current phase fully complete.
func (t *Tracker) Done(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit(t.base+t.weight, message)
}

// Percent returns the last emitted percentage.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// emit is called with t.mu held.
func (t *Tracker) emit(pct int, message string) {
	if pct < t.current {
		pct = t.current
	}
	if pct > 100 {
		pct = 100
	}
	t.current = pct
	if t.fn != nil {
		t.fn(ProgressUpdate{Phase: t.phase, Message: message, Percent: pct})
	}
}
