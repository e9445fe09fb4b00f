package linkrot

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockBookmarkStore is a mock implementation of BookmarkStore for testing.
type MockBookmarkStore struct {
	mock.Mock
}

// Authenticate is the mock implementation of the Authenticate method.
func (m *MockBookmarkStore) Authenticate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0) //nolint:wrapcheck
}

// ListAll is the mock implementation of the ListAll method.
func (m *MockBookmarkStore) ListAll(ctx context.Context) ([]Bookmark, error) {
	args := m.Called(ctx)
	bookmarks, _ := args.Get(0).([]Bookmark)
	return bookmarks, args.Error(1) //nolint:wrapcheck
}

// GetByURL is the mock implementation of the GetByURL method.
func (m *MockBookmarkStore) GetByURL(ctx context.Context, url string) ([]Bookmark, error) {
	args := m.Called(ctx, url)
	bookmarks, _ := args.Get(0).([]Bookmark)
	return bookmarks, args.Error(1) //nolint:wrapcheck
}

// Add is the mock implementation of the Add method.
func (m *MockBookmarkStore) Add(ctx context.Context, bookmark Bookmark) error {
	args := m.Called(ctx, bookmark)
	return args.Error(0) //nolint:wrapcheck
}

// DeleteByURL is the mock implementation of the DeleteByURL method.
func (m *MockBookmarkStore) DeleteByURL(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0) //nolint:wrapcheck
}

// MockSnapshotResolver is a mock implementation of SnapshotResolver for testing.
type MockSnapshotResolver struct {
	mock.Mock
}

// Resolve is the mock implementation of the Resolve method.
func (m *MockSnapshotResolver) Resolve(ctx context.Context, url string, at time.Time) (SnapshotLookup, error) {
	args := m.Called(ctx, url, at)
	return args.Get(0).(SnapshotLookup), args.Error(1) //nolint:wrapcheck
}

// MockLinkChecker is a mock implementation of LinkChecker for testing.
type MockLinkChecker struct {
	mock.Mock
}

// Check is the mock implementation of the Check method.
func (m *MockLinkChecker) Check(ctx context.Context, url string) CheckResult {
	args := m.Called(ctx, url)
	return args.Get(0).(CheckResult)
}

// CheckAll is the mock implementation of the CheckAll method.
func (m *MockLinkChecker) CheckAll(ctx context.Context, urls []string) []CheckResult {
	args := m.Called(ctx, urls)
	results, _ := args.Get(0).([]CheckResult)
	return results
}
