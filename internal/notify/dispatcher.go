package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ciet-hostel/gatepass-api/pkg/jobs"
)

// Dispatcher decouples notification sending from the request path by pushing
// each notification through a background worker queue.
type Dispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers    int
	BufferSize int
}

// NewDispatcher wires a notifier behind a worker queue.
func NewDispatcher(notifier GuardianNotifier, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(GuardianNotification)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return notifier.Notify(ctx, msg)
	}

	queue := jobs.NewQueue("guardian-notify", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})

	return &Dispatcher{queue: queue, logger: logger}
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Notify enqueues the notification. Enqueue failures are logged and
// swallowed: the review that triggered the notification has already
// committed and must not fail.
func (d *Dispatcher) Notify(_ context.Context, msg GuardianNotification) error {
	if err := d.queue.Enqueue(jobs.Job{ID: msg.PassID, Type: "guardian_sms", Payload: msg}); err != nil {
		d.logger.Warn("failed to enqueue guardian notification",
			zap.String("pass_id", msg.PassID), zap.Error(err))
	}
	return nil
}
