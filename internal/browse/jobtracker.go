package browse

import (
	"context"
	"sync"
	"time"

	"pixery/internal/domain"
	"pixery/internal/ports"
)

// TrackerConfig tunes the polling cadence of a JobTracker.
type TrackerConfig struct {
	// FastInterval is used after a successful active-jobs poll that
	// returned at least one job; SlowInterval when it returned none.
	FastInterval time.Duration
	SlowInterval time.Duration
	// FailedInterval is the fixed base cadence of the failed-jobs stream,
	// independent of active-job activity.
	FailedInterval time.Duration
	// MaxBackoff caps the per-stream exponential backoff on poll errors.
	MaxBackoff time.Duration
	// FailedLimit bounds how many recent failures are fetched per poll.
	FailedLimit int64
}

// DefaultTrackerConfig matches the cadence the GUI uses.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		FastInterval:   2 * time.Second,
		SlowInterval:   10 * time.Second,
		FailedInterval: 30 * time.Second,
		MaxBackoff:     5 * time.Minute,
		FailedLimit:    10,
	}
}

// JobTracker polls generation job status on two independent streams:
// active jobs (pending + running) at an adaptive cadence, and recent
// failures at a fixed one. Each stream backs off exponentially on error
// and resets to its base interval on the next success.
//
// Dismissing a failed job is purely local and session-scoped: the raw poll
// keeps returning the job, the exposed list filters it.
type JobTracker struct {
	jobs ports.JobService
	cfg  TrackerConfig

	// after schedules fn once after d; the returned func cancels it.
	// Overridable in tests.
	after func(d time.Duration, fn func()) (cancel func())

	mu          sync.Mutex
	alive       bool
	ctx         context.Context
	active      []domain.Job
	failed      []domain.Job
	dismissed   map[int64]struct{}
	activeDelay time.Duration // last scheduled delay, doubles on error
	failedDelay time.Duration
	cancelA     func()
	cancelF     func()
	// Per-stream generations. Cancelling a timer whose callback already
	// fired cannot stop the in-flight poll, so each poll captures its
	// stream's generation on entry and only a current-generation poll may
	// store results and reschedule. PollNow bumps both.
	activeGen uint64
	failedGen uint64

	changed signal
}

// NewJobTracker creates a stopped tracker. Zero config fields fall back to
// DefaultTrackerConfig.
func NewJobTracker(jobs ports.JobService, cfg TrackerConfig) *JobTracker {
	def := DefaultTrackerConfig()
	if cfg.FastInterval <= 0 {
		cfg.FastInterval = def.FastInterval
	}
	if cfg.SlowInterval <= 0 {
		cfg.SlowInterval = def.SlowInterval
	}
	if cfg.FailedInterval <= 0 {
		cfg.FailedInterval = def.FailedInterval
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.FailedLimit <= 0 {
		cfg.FailedLimit = def.FailedLimit
	}
	return &JobTracker{
		jobs:      jobs,
		cfg:       cfg,
		dismissed: make(map[int64]struct{}),
		after: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
	}
}

// Subscribe registers fn to run after every successful poll or dismissal.
func (t *JobTracker) Subscribe(fn func()) (cancel func()) {
	return t.changed.subscribe(fn)
}

// Start begins both poll streams with an immediate poll each. Repeated
// Start calls while running are no-ops.
func (t *JobTracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.alive {
		t.mu.Unlock()
		return
	}
	t.alive = true
	t.ctx = ctx
	t.activeDelay = t.cfg.SlowInterval
	t.failedDelay = t.cfg.FailedInterval
	t.mu.Unlock()

	go t.pollActive()
	go t.pollFailed()
}

// Stop tears both streams down: scheduled polls are cancelled and a fetch
// that resolves after Stop schedules nothing further.
func (t *JobTracker) Stop() {
	t.mu.Lock()
	t.alive = false
	cancelA, cancelF := t.cancelA, t.cancelF
	t.cancelA, t.cancelF = nil, nil
	t.mu.Unlock()

	if cancelA != nil {
		cancelA()
	}
	if cancelF != nil {
		cancelF()
	}
}

// PollNow triggers an immediate out-of-cycle poll of both streams, e.g.
// after an external change notification. Any scheduled or in-flight poll
// is superseded; the regular schedules resume from the new polls' outcomes.
func (t *JobTracker) PollNow() {
	t.mu.Lock()
	if !t.alive {
		t.mu.Unlock()
		return
	}
	if t.cancelA != nil {
		t.cancelA()
		t.cancelA = nil
	}
	if t.cancelF != nil {
		t.cancelF()
		t.cancelF = nil
	}
	t.activeGen++
	t.failedGen++
	t.mu.Unlock()
	go t.pollActive()
	go t.pollFailed()
}

// ActiveJobs returns the last successfully polled active jobs.
func (t *JobTracker) ActiveJobs() []domain.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Job, len(t.active))
	copy(out, t.active)
	return out
}

// ActiveCount returns how many jobs were active at the last poll.
func (t *JobTracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// FailedJobs returns the last polled failures minus dismissed ids.
func (t *JobTracker) FailedJobs() []domain.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Job, 0, len(t.failed))
	for _, j := range t.failed {
		if _, ok := t.dismissed[j.ID]; ok {
			continue
		}
		out = append(out, j)
	}
	return out
}

// Dismiss hides a failed job id for the rest of the session. Dismissing an
// id that never appears is a harmless no-op.
func (t *JobTracker) Dismiss(id int64) {
	t.mu.Lock()
	t.dismissed[id] = struct{}{}
	t.mu.Unlock()
	t.changed.emit()
}

func (t *JobTracker) pollActive() {
	t.mu.Lock()
	if !t.alive {
		t.mu.Unlock()
		return
	}
	ctx := t.ctx
	gen := t.activeGen
	t.mu.Unlock()

	jobs, err := t.jobs.ListActive(ctx)

	t.mu.Lock()
	if !t.alive || gen != t.activeGen {
		t.mu.Unlock()
		return
	}
	var next time.Duration
	if err != nil {
		// Silent to the user; the stream just slows down until the
		// backend recovers.
		next = t.backoff(t.activeDelay)
	} else {
		t.active = jobs
		if len(jobs) > 0 {
			next = t.cfg.FastInterval
		} else {
			next = t.cfg.SlowInterval
		}
	}
	t.activeDelay = next
	t.cancelA = t.after(next, t.pollActive)
	t.mu.Unlock()

	if err == nil {
		t.changed.emit()
	}
}

func (t *JobTracker) pollFailed() {
	t.mu.Lock()
	if !t.alive {
		t.mu.Unlock()
		return
	}
	ctx := t.ctx
	gen := t.failedGen
	t.mu.Unlock()

	jobs, err := t.jobs.ListFailed(ctx, t.cfg.FailedLimit)

	t.mu.Lock()
	if !t.alive || gen != t.failedGen {
		t.mu.Unlock()
		return
	}
	var next time.Duration
	if err != nil {
		next = t.backoff(t.failedDelay)
	} else {
		t.failed = jobs
		next = t.cfg.FailedInterval
	}
	t.failedDelay = next
	t.cancelF = t.after(next, t.pollFailed)
	t.mu.Unlock()

	if err == nil {
		t.changed.emit()
	}
}

func (t *JobTracker) backoff(last time.Duration) time.Duration {
	next := last * 2
	if next > t.cfg.MaxBackoff {
		next = t.cfg.MaxBackoff
	}
	return next
}
