// Package mocks holds testify mocks for the interfaces in internal/interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"drivesync/internal/interfaces"
	"drivesync/internal/models"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockDriveSnapshotter is a mock of interfaces.DriveSnapshotter
type MockDriveSnapshotter struct {
	mock.Mock
}

func NewMockDriveSnapshotter(t testingT) *MockDriveSnapshotter {
	m := &MockDriveSnapshotter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDriveSnapshotter) Snapshot(ctx context.Context, includeNetwork bool) (*models.Snapshot, error) {
	ret := m.Called(ctx, includeNetwork)
	snapshot, _ := ret.Get(0).(*models.Snapshot)
	return snapshot, ret.Error(1)
}

// MockPairExecutor is a mock of interfaces.PairExecutor
type MockPairExecutor struct {
	mock.Mock
}

func NewMockPairExecutor(t testingT) *MockPairExecutor {
	m := &MockPairExecutor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPairExecutor) Execute(ctx context.Context, jobID string, pairs []models.Pair) (*models.JobResult, error) {
	ret := m.Called(ctx, jobID, pairs)
	result, _ := ret.Get(0).(*models.JobResult)
	return result, ret.Error(1)
}

// MockConfirmer is a mock of interfaces.Confirmer
type MockConfirmer struct {
	mock.Mock
}

func NewMockConfirmer(t testingT) *MockConfirmer {
	m := &MockConfirmer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConfirmer) Confirm(prompt string) error {
	return m.Called(prompt).Error(0)
}

// MockNotifier is a mock of interfaces.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier(t testingT) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) IsEnabled() bool {
	return m.Called().Bool(0)
}

func (m *MockNotifier) NotifyRunCompleted(summary *models.RunSummary) error {
	return m.Called(summary).Error(0)
}

func (m *MockNotifier) NotifyRunFailed(summary *models.RunSummary, runErr error) error {
	return m.Called(summary, runErr).Error(0)
}

// MockGatekeeper is a mock of interfaces.Gatekeeper
type MockGatekeeper struct {
	mock.Mock
}

func NewMockGatekeeper(t testingT) *MockGatekeeper {
	m := &MockGatekeeper{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGatekeeper) CanStartRun(ctx context.Context) interfaces.GateDecision {
	return m.Called(ctx).Get(0).(interfaces.GateDecision)
}

var (
	_ interfaces.DriveSnapshotter = (*MockDriveSnapshotter)(nil)
	_ interfaces.PairExecutor     = (*MockPairExecutor)(nil)
	_ interfaces.Confirmer        = (*MockConfirmer)(nil)
	_ interfaces.Notifier         = (*MockNotifier)(nil)
	_ interfaces.Gatekeeper       = (*MockGatekeeper)(nil)
)
