package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pixery/internal/domain"
)

// fakeJobs is an in-memory ports.JobService with settable poll results.
type fakeJobs struct {
	mu        sync.Mutex
	active    []domain.Job
	failed    []domain.Job
	activeErr error
	failedErr error
	onActive  func()
	onFailed  func()
}

func (f *fakeJobs) CreateJob(context.Context, string, string, []string, domain.JobSource, int) (int64, error) {
	return 0, nil
}
func (f *fakeJobs) MarkStarted(context.Context, int64) error        { return nil }
func (f *fakeJobs) MarkCompleted(context.Context, int64, int64) error { return nil }
func (f *fakeJobs) MarkFailed(context.Context, int64, string) error { return nil }
func (f *fakeJobs) CleanupStalled(context.Context) (int, error)     { return 0, nil }
func (f *fakeJobs) CleanupOld(context.Context, int) (int, error)    { return 0, nil }

func (f *fakeJobs) ListActive(context.Context) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onActive != nil {
		f.onActive()
	}
	return f.active, f.activeErr
}

func (f *fakeJobs) ListFailed(context.Context, int64) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onFailed != nil {
		f.onFailed()
	}
	return f.failed, f.failedErr
}

func (f *fakeJobs) set(fn func(*fakeJobs)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func job(id int64, status domain.JobStatus) domain.Job {
	return domain.Job{ID: id, Status: status, Model: "test-model"}
}

// newManualTracker returns a tracker whose timer never fires on its own.
// Each scheduled delay is recorded; tests drive the polls synchronously by
// calling pollActive/pollFailed themselves.
func newManualTracker(svc *fakeJobs, cfg TrackerConfig) (*JobTracker, *[]time.Duration) {
	tr := NewJobTracker(svc, cfg)
	delays := &[]time.Duration{}
	tr.after = func(d time.Duration, fn func()) func() {
		*delays = append(*delays, d)
		return func() {}
	}
	tr.mu.Lock()
	tr.alive = true
	tr.ctx = context.Background()
	tr.activeDelay = tr.cfg.SlowInterval
	tr.failedDelay = tr.cfg.FailedInterval
	tr.mu.Unlock()
	return tr, delays
}

func lastDelay(t *testing.T, delays *[]time.Duration) time.Duration {
	t.Helper()
	if len(*delays) == 0 {
		t.Fatal("no poll was scheduled")
	}
	return (*delays)[len(*delays)-1]
}

func TestActivePollAdaptsInterval(t *testing.T) {
	svc := &fakeJobs{}
	cfg := DefaultTrackerConfig()
	tr, delays := newManualTracker(svc, cfg)

	// No active jobs: settle on the slow cadence.
	tr.pollActive()
	if d := lastDelay(t, delays); d != cfg.SlowInterval {
		t.Errorf("idle poll scheduled %v, want %v", d, cfg.SlowInterval)
	}

	// A job appears: tighten to the fast cadence.
	svc.set(func(f *fakeJobs) { f.active = []domain.Job{job(1, domain.JobRunning)} })
	tr.pollActive()
	if d := lastDelay(t, delays); d != cfg.FastInterval {
		t.Errorf("busy poll scheduled %v, want %v", d, cfg.FastInterval)
	}
	if tr.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", tr.ActiveCount())
	}

	// The job finishes: back to slow.
	svc.set(func(f *fakeJobs) { f.active = nil })
	tr.pollActive()
	if d := lastDelay(t, delays); d != cfg.SlowInterval {
		t.Errorf("poll after drain scheduled %v, want %v", d, cfg.SlowInterval)
	}
}

func TestActivePollBacksOffOnErrorAndRecovers(t *testing.T) {
	svc := &fakeJobs{}
	cfg := TrackerConfig{
		FastInterval:   2 * time.Second,
		SlowInterval:   10 * time.Second,
		FailedInterval: 30 * time.Second,
		MaxBackoff:     60 * time.Second,
		FailedLimit:    10,
	}
	tr, delays := newManualTracker(svc, cfg)

	svc.set(func(f *fakeJobs) { f.activeErr = errors.New("db locked") })
	want := []time.Duration{20 * time.Second, 40 * time.Second, 60 * time.Second, 60 * time.Second}
	for i, w := range want {
		tr.pollActive()
		if d := lastDelay(t, delays); d != w {
			t.Fatalf("error poll %d scheduled %v, want %v", i+1, d, w)
		}
	}

	// First success resets to the base cadence.
	svc.set(func(f *fakeJobs) { f.activeErr = nil })
	tr.pollActive()
	if d := lastDelay(t, delays); d != cfg.SlowInterval {
		t.Errorf("recovery poll scheduled %v, want %v", d, cfg.SlowInterval)
	}
}

func TestFailedPollKeepsFixedCadence(t *testing.T) {
	svc := &fakeJobs{}
	cfg := DefaultTrackerConfig()
	tr, delays := newManualTracker(svc, cfg)

	// Failures present or not, the cadence stays fixed.
	tr.pollFailed()
	svc.set(func(f *fakeJobs) {
		f.failed = []domain.Job{job(7, domain.JobFailed)}
	})
	tr.pollFailed()
	for i, d := range *delays {
		if d != cfg.FailedInterval {
			t.Errorf("failed poll %d scheduled %v, want %v", i+1, d, cfg.FailedInterval)
		}
	}
	if got := tr.FailedJobs(); len(got) != 1 || got[0].ID != 7 {
		t.Errorf("FailedJobs = %v, want the one polled failure", got)
	}
}

func TestDismissalPersistsAcrossPolls(t *testing.T) {
	svc := &fakeJobs{}
	svc.set(func(f *fakeJobs) {
		f.failed = []domain.Job{job(7, domain.JobFailed)}
	})
	tr, _ := newManualTracker(svc, DefaultTrackerConfig())

	tr.pollFailed()
	if len(tr.FailedJobs()) != 1 {
		t.Fatal("setup: expected one failure before dismissal")
	}

	tr.Dismiss(7)
	if len(tr.FailedJobs()) != 0 {
		t.Fatal("a dismissed failure must disappear from the exposed list")
	}

	// The store keeps returning it; the dismissal holds. A new failure is
	// still surfaced.
	svc.set(func(f *fakeJobs) {
		f.failed = []domain.Job{job(43, domain.JobFailed), job(7, domain.JobFailed)}
	})
	tr.pollFailed()
	got := tr.FailedJobs()
	if len(got) != 1 || got[0].ID != 43 {
		t.Errorf("FailedJobs after repoll = %v, want only id 43", got)
	}

	// Dismissing an id that never appeared is harmless.
	tr.Dismiss(999)
	if len(tr.FailedJobs()) != 1 {
		t.Error("dismissing an unknown id must not disturb the list")
	}
}

func TestStopDropsLateFetchResults(t *testing.T) {
	svc := &fakeJobs{}
	tr, delays := newManualTracker(svc, DefaultTrackerConfig())

	// Teardown lands while the fetch is in flight.
	svc.onActive = func() { tr.mu.Lock(); tr.alive = false; tr.mu.Unlock() }
	svc.set(func(f *fakeJobs) { f.active = []domain.Job{job(1, domain.JobPending)} })

	tr.pollActive()
	if len(*delays) != 0 {
		t.Error("a poll resolving after teardown must not reschedule")
	}
	if tr.ActiveCount() != 0 {
		t.Error("a poll resolving after teardown must not store results")
	}
}

func TestPollNowTriggersImmediatePoll(t *testing.T) {
	svc := &fakeJobs{}
	polled := make(chan struct{}, 1)
	failedPolled := make(chan struct{}, 1)
	svc.onActive = func() {
		select {
		case polled <- struct{}{}:
		default:
		}
	}
	svc.onFailed = func() {
		select {
		case failedPolled <- struct{}{}:
		default:
		}
	}
	tr := NewJobTracker(svc, DefaultTrackerConfig())
	tr.after = func(time.Duration, func()) func() { return func() {} }
	tr.mu.Lock()
	tr.alive = true
	tr.ctx = context.Background()
	tr.activeDelay = tr.cfg.SlowInterval
	tr.failedDelay = tr.cfg.FailedInterval
	tr.mu.Unlock()

	tr.PollNow()
	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("PollNow must poll without waiting for the schedule")
	}
	select {
	case <-failedPolled:
	case <-time.After(2 * time.Second):
		t.Fatal("PollNow must also re-poll the failed stream")
	}

	tr.Stop()
	tr.PollNow()
	select {
	case <-polled:
		t.Fatal("PollNow after Stop must be a no-op")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollNowSupersedesInFlightPoll(t *testing.T) {
	svc := &fakeJobs{}
	tr, delays := newManualTracker(svc, DefaultTrackerConfig())

	// The generation moves on while the fetch is in flight, as it does when
	// PollNow lands after the scheduled callback has already started.
	svc.onActive = func() {
		tr.mu.Lock()
		tr.activeGen++
		tr.mu.Unlock()
	}
	svc.set(func(f *fakeJobs) { f.active = []domain.Job{job(1, domain.JobRunning)} })

	tr.pollActive()
	if len(*delays) != 0 {
		t.Error("a superseded poll must not reschedule; only one chain may run per stream")
	}
	if tr.ActiveCount() != 0 {
		t.Error("a superseded poll must not store results")
	}

	svc.onFailed = func() {
		tr.mu.Lock()
		tr.failedGen++
		tr.mu.Unlock()
	}
	svc.set(func(f *fakeJobs) { f.failed = []domain.Job{job(7, domain.JobFailed)} })

	tr.pollFailed()
	if len(*delays) != 0 {
		t.Error("a superseded failed poll must not reschedule")
	}
	if len(tr.FailedJobs()) != 0 {
		t.Error("a superseded failed poll must not store results")
	}
}
