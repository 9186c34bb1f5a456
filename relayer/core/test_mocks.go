package core

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type RelayerManagerMock struct {
	mock.Mock
}

var _ RelayerManager = (*RelayerManagerMock)(nil)

func (m *RelayerManagerMock) Start() error {
	return m.Called().Error(0)
}

func (m *RelayerManagerMock) Stop() error {
	return m.Called().Error(0)
}

func (m *RelayerManagerMock) Dump() bool {
	return m.Called().Bool(0)
}

func (m *RelayerManagerMock) ErrorCh() <-chan error {
	return m.Called().Get(0).(<-chan error) //nolint:forcetypeassert
}

func (m *RelayerManagerMock) GetPairs() []string {
	return m.Called().Get(0).([]string) //nolint:forcetypeassert
}

func (m *RelayerManagerMock) GetRelayer(pair string) (Relayer, bool) {
	args := m.Called(pair)

	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}

	return args.Get(0).(Relayer), args.Bool(1) //nolint:forcetypeassert
}

type RelayerMock struct {
	mock.Mock
}

var _ Relayer = (*RelayerMock)(nil)

func (m *RelayerMock) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *RelayerMock) Wait() {
	m.Called()
}

func (m *RelayerMock) ErrorCh() <-chan error {
	return m.Called().Get(0).(<-chan error) //nolint:forcetypeassert
}

func (m *RelayerMock) Append(ctx context.Context, direction Direction, event *PendingEvent) error {
	return m.Called(ctx, direction, event).Error(0)
}

func (m *RelayerMock) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *RelayerMock) Peek() map[Direction][]PendingEvent {
	return m.Called().Get(0).(map[Direction][]PendingEvent) //nolint:forcetypeassert
}

func (m *RelayerMock) Snapshot() RelayerSnapshot {
	return m.Called().Get(0).(RelayerSnapshot) //nolint:forcetypeassert
}

func (m *RelayerMock) GetDeadLetters() ([]*DeadLetter, error) {
	args := m.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*DeadLetter), args.Error(1) //nolint:forcetypeassert
}

func (m *RelayerMock) GetDroppedEvents() ([]*DroppedEvent, error) {
	args := m.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*DroppedEvent), args.Error(1) //nolint:forcetypeassert
}

func (m *RelayerMock) RequeueDeadLetter(id string) (int, error) {
	args := m.Called(id)

	return args.Int(0), args.Error(1)
}
