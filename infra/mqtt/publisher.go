package mqtt

import (
	"context"
	"sync"

	coremqtt "github.com/kilianp07/v2g-planner/core/mqtt"
)

// MockPublisher records plans instead of sending them.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []coremqtt.PlanMessage
	Err      error
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// PublishPlan stores the message, or returns Err when set.
func (m *MockPublisher) PublishPlan(_ context.Context, msg coremqtt.PlanMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// Published returns a copy of the stored messages.
func (m *MockPublisher) Published() []coremqtt.PlanMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.PlanMessage(nil), m.Messages...)
}
