// package testing contains shared testing utilities
package testing

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytsync/internal/provider"
	"github.com/desertthunder/ytsync/internal/shared"
)

// MockProvider is a configurable test double for [provider.Provider].
//
// Feeds and Items are keyed by canonical URL, Details by item URL. Any URL
// listed in Fail returns a fetch error. Calls are counted per method for
// asserting that no redundant remote calls happen.
type MockProvider struct {
	Feeds   map[string]*provider.FeedMetadata
	Items   map[string][]provider.ItemMetadata
	Details map[string]*provider.ItemDetail
	Fail    map[string]bool

	FeedCalls   int
	ItemCalls   int
	DetailCalls int
}

// NewMockProvider creates an empty MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Feeds:   map[string]*provider.FeedMetadata{},
		Items:   map[string][]provider.ItemMetadata{},
		Details: map[string]*provider.ItemDetail{},
		Fail:    map[string]bool{},
	}
}

func (m *MockProvider) FetchFeed(ctx context.Context, canonicalURL string) (*provider.FeedMetadata, error) {
	m.FeedCalls++
	if m.Fail[canonicalURL] {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, canonicalURL)
	}
	meta, ok := m.Feeds[canonicalURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, canonicalURL)
	}
	return meta, nil
}

func (m *MockProvider) FetchFeedItems(ctx context.Context, canonicalURL string) ([]provider.ItemMetadata, error) {
	m.ItemCalls++
	if m.Fail[canonicalURL] {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, canonicalURL)
	}
	return m.Items[canonicalURL], nil
}

func (m *MockProvider) FetchItemDetail(ctx context.Context, itemURL string) (*provider.ItemDetail, error) {
	m.DetailCalls++
	if m.Fail[itemURL] {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, itemURL)
	}
	detail, ok := m.Details[itemURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrIncompleteMetadata, itemURL)
	}
	return detail, nil
}

// ViewCount returns a pointer for literal view counts in test fixtures.
func ViewCount(n int64) *int64 {
	return &n
}
