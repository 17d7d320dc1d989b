package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type callRecorder struct {
	mu     sync.Mutex
	values []string
}

func (r *callRecorder) record(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *callRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncerCoalescesRapidTriggers(t *testing.T) {
	recorder := &callRecorder{}
	d := NewDebouncer(20*time.Millisecond, recorder.record)

	d.Trigger("r")
	d.Trigger("re")
	d.Trigger("rea")
	d.Trigger("react")

	assert.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"react"}, recorder.snapshot())

	// Quiet period passed; no further invocations arrive.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"react"}, recorder.snapshot())
}

func TestDebouncerSpacedTriggersAllFire(t *testing.T) {
	recorder := &callRecorder{}
	d := NewDebouncer(10*time.Millisecond, recorder.record)

	d.Trigger("first")
	assert.Eventually(t, func() bool { return len(recorder.snapshot()) == 1 }, time.Second, time.Millisecond)
	d.Trigger("second")
	assert.Eventually(t, func() bool { return len(recorder.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, recorder.snapshot())
}

func TestDebouncerCancelDropsPending(t *testing.T) {
	recorder := &callRecorder{}
	d := NewDebouncer(20*time.Millisecond, recorder.record)

	d.Trigger("react")
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, recorder.snapshot())
}
