package databaseaccess

import (
	"context"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/stretchr/testify/mock"
)

type DBMock struct {
	mock.Mock
}

var _ core.Database = (*DBMock)(nil)

func (d *DBMock) Init(filePath string) error {
	return nil
}

func (d *DBMock) Close() error {
	return nil
}

func (d *DBMock) AddDeadLetter(deadLetter *core.DeadLetter) error {
	return d.Called(deadLetter).Error(0)
}

func (d *DBMock) GetDeadLetters() ([]*core.DeadLetter, error) {
	args := d.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*core.DeadLetter), args.Error(1) //nolint:forcetypeassert
}

func (d *DBMock) RemoveDeadLetter(id string) error {
	return d.Called(id).Error(0)
}

func (d *DBMock) AddDroppedEvent(droppedEvent *core.DroppedEvent) error {
	return d.Called(droppedEvent).Error(0)
}

func (d *DBMock) GetDroppedEvents() ([]*core.DroppedEvent, error) {
	args := d.Called()

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*core.DroppedEvent), args.Error(1) //nolint:forcetypeassert
}

type BatchExecutorMock struct {
	mock.Mock
}

var _ core.BatchExecutor = (*BatchExecutorMock)(nil)

func (m *BatchExecutorMock) Execute(
	ctx context.Context, direction core.Direction, events []core.PendingEvent,
) (core.BatchResult, error) {
	args := m.Called(ctx, direction, events)

	return args.Get(0).(core.BatchResult), args.Error(1) //nolint:forcetypeassert
}
