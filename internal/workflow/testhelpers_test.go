package workflow_test

import (
	"context"
	"sync"
	"sync/atomic"

	"shoebox/internal/notifications"
	"shoebox/internal/queue"
	"shoebox/internal/stage"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
	executions  atomic.Int64
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	s.executions.Add(1)
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	byKind map[notifications.Event][]notifications.Payload
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{byKind: make(map[notifications.Event][]notifications.Payload)}
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.byKind[event] = append(r.byKind[event], payload)
	return nil
}

func (r *recordingNotifier) count(event notifications.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKind[event])
}

func (r *recordingNotifier) last(event notifications.Event) notifications.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	payloads := r.byKind[event]
	if len(payloads) == 0 {
		return nil
	}
	return payloads[len(payloads)-1]
}
