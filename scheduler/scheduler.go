package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownTask is returned by RunNow for a name that is not registered.
var ErrUnknownTask = errors.New("scheduler: unknown task")

// TaskFn is a periodic job. ctx is cancelled when the scheduler stops.
type TaskFn func(ctx context.Context) error

// TaskInfo is a snapshot of a registered task.
type TaskInfo struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	LastRun   time.Time     `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

type task struct {
	name     string
	interval time.Duration
	fn       TaskFn
	stopCh   chan struct{}
	runMu    sync.Mutex // one run at a time per task

	mu        sync.Mutex
	runs      int64
	lastRun   time.Time
	lastError string
}

// Scheduler runs named tasks on fixed intervals.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[string]*task),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTicker registers fn to run every interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	t := &task{name: name, interval: interval, fn: fn, stopCh: make(chan struct{})}

	s.mu.Lock()
	if old, ok := s.tasks[name]; ok {
		close(old.stopCh)
	}
	s.tasks[name] = t
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(t)
			case <-t.stopCh:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(t *task) error {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = t.fn(s.ctx)
	}()

	t.mu.Lock()
	t.runs++
	t.lastRun = time.Now()
	t.lastError = ""
	if err != nil {
		t.lastError = err.Error()
	}
	t.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduler task failed", zap.String("task", t.name), zap.Error(err))
	}
	return err
}

// RunNow runs the named task immediately, waiting for any in-flight run of
// the same task to finish first.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return s.run(t)
}

// Remove stops and removes a task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		close(t.stopCh)
		delete(s.tasks, name)
	}
}

// Stop stops all tasks and cancels the context of running ones.
func (s *Scheduler) Stop() {
	s.cancel()
}

// Tasks returns a snapshot of all registered tasks sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	list := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		list = append(list, t)
	}
	s.mu.Unlock()

	out := make([]TaskInfo, 0, len(list))
	for _, t := range list {
		t.mu.Lock()
		out = append(out, TaskInfo{
			Name:      t.name,
			Interval:  t.interval,
			Runs:      t.runs,
			LastRun:   t.lastRun,
			LastError: t.lastError,
		})
		t.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
