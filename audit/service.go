package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/krtchnt/zenki/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type traceKey struct{}

// WithTraceID returns ctx carrying the request trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceID returns the trace ID stored in ctx, or "".
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}

// Entry holds one audit event to be logged.
type Entry struct {
	TraceID    string
	UID        int64
	Action     string
	Request    interface{}
	Response   interface{}
	Error      string
	DurationMs int
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	db       *gorm.DB
	ch       chan *model.AuditLog
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
	interval time.Duration
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:       db,
		ch:       make(chan *model.AuditLog, 1024),
		stopCh:   make(chan struct{}),
		logger:   logger,
		interval: 2 * time.Second,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Record builds an Entry from a finished core operation and enqueues it.
// The trace ID is taken from ctx.
func (svc *Service) Record(ctx context.Context, uid int64, action string, req interface{}, opErr error, started time.Time) {
	e := Entry{
		TraceID:    TraceID(ctx),
		UID:        uid,
		Action:     action,
		Request:    req,
		DurationMs: int(time.Since(started).Milliseconds()),
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	svc.Log(e)
}

// Log enqueues an audit entry for async DB write. Entries are dropped with a
// warning when the queue is full.
func (svc *Service) Log(entry Entry) {
	reqJSON, _ := json.Marshal(entry.Request)
	respJSON, _ := json.Marshal(entry.Response)
	record := &model.AuditLog{
		TraceID:    entry.TraceID,
		UID:        entry.UID,
		Action:     entry.Action,
		Request:    datatypes.JSON(reqJSON),
		Response:   datatypes.JSON(respJSON),
		Error:      entry.Error,
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err), zap.Int("entries", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
