package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciet-hostel/gatepass-api/internal/models"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []GuardianNotification
	err   error
	done  chan struct{}
}

func (r *recordingNotifier) Notify(ctx context.Context, n GuardianNotification) error {
	r.mu.Lock()
	r.calls = append(r.calls, n)
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestDispatcherDeliversNotification(t *testing.T) {
	notifier := &recordingNotifier{done: make(chan struct{}, 1)}
	d := NewDispatcher(notifier, DispatcherConfig{Workers: 1, BufferSize: 4}, nil)
	d.Start(context.Background())
	defer d.Stop()

	err := d.Notify(context.Background(), GuardianNotification{
		PassID:      "p1",
		StudentName: "Arun Kumar",
		ParentPhone: "9876543211",
		Status:      models.StatusApproved,
	})
	require.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}

	assert.Equal(t, 1, notifier.count())
	notifier.mu.Lock()
	assert.Equal(t, "9876543211", notifier.calls[0].ParentPhone)
	notifier.mu.Unlock()
}

func TestDispatcherSendFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("gateway down"), done: make(chan struct{}, 1)}
	d := NewDispatcher(notifier, DispatcherConfig{Workers: 1, BufferSize: 4}, nil)
	d.Start(context.Background())
	defer d.Stop()

	err := d.Notify(context.Background(), GuardianNotification{PassID: "p1"})
	require.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not attempted")
	}
	assert.Equal(t, 1, notifier.count())
}

func TestDispatcherNotifyBeforeStart(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, DispatcherConfig{}, nil)

	// The review path must never fail because of notification plumbing.
	err := d.Notify(context.Background(), GuardianNotification{PassID: "p1"})
	assert.NoError(t, err)
	assert.Equal(t, 0, notifier.count())
}
