// mock_interface.go - Mock implementation of datastore.Interface using testify/mock
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sofi-fitness/studio-landing/internal/datastore"
)

var _ datastore.Interface = (*MockDataStore)(nil)

// MockDataStore is a testify mock of datastore.Interface.
// Transaction calls fn with the mock itself unless an error is configured.
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) Open() error {
	return m.Called().Error(0)
}

func (m *MockDataStore) Close() error {
	return m.Called().Error(0)
}

func (m *MockDataStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDataStore) CountWaitlistEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataStore) GetWaitlistEntryByClerkID(ctx context.Context, clerkUserID string) (*datastore.WaitlistEntry, error) {
	return m.entry(m.Called(ctx, clerkUserID))
}

func (m *MockDataStore) GetWaitlistEntryByEmail(ctx context.Context, email string) (*datastore.WaitlistEntry, error) {
	return m.entry(m.Called(ctx, email))
}

func (m *MockDataStore) GetWaitlistEntryByReferralCode(ctx context.Context, code string) (*datastore.WaitlistEntry, error) {
	return m.entry(m.Called(ctx, code))
}

func (m *MockDataStore) entry(args mock.Arguments) (*datastore.WaitlistEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if e, ok := args.Get(0).(*datastore.WaitlistEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataStore) CreateWaitlistEntry(ctx context.Context, entry *datastore.WaitlistEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockDataStore) MergeWaitlistEntry(ctx context.Context, id string, fields datastore.MergeFields) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockDataStore) IncrementReferralCount(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockDataStore) SaveAnalyticsEvent(ctx context.Context, event *datastore.AnalyticsEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockDataStore) CountAnalyticsEvents(ctx context.Context, filter datastore.AnalyticsFilter) ([]datastore.EventCount, error) {
	args := m.Called(ctx, filter)
	if rows, ok := args.Get(0).([]datastore.EventCount); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDataStore) Transaction(ctx context.Context, fn func(tx datastore.Interface) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(m)
}
