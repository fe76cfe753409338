package pipeline

import (
	"context"
	"errors"
	"sync"

	"sjsage522/rankscout/internal/crawler"
	"sjsage522/rankscout/services/publisher"
)

// MockCatalog implements crawler.CatalogSource for testing
type MockCatalog struct {
	records     []crawler.CatalogRecord
	err         error
	urls        []string
	hadDeadline bool
}

var _ crawler.CatalogSource = (*MockCatalog)(nil)

func (m *MockCatalog) Scrape(ctx context.Context, url string) ([]crawler.CatalogRecord, error) {
	m.urls = append(m.urls, url)
	_, m.hadDeadline = ctx.Deadline()
	return m.records, m.err
}

func (m *MockCatalog) GetName() string {
	return "MockCatalog"
}

// MockMarketplace implements crawler.SupplierSearcher for testing
type MockMarketplace struct {
	suppliers map[string][]crawler.SupplierRecord
	failures  map[string]error
	keywords  []string
	deadlines int
}

var _ crawler.SupplierSearcher = (*MockMarketplace)(nil)

func (m *MockMarketplace) Search(ctx context.Context, keyword string) ([]crawler.SupplierRecord, error) {
	m.keywords = append(m.keywords, keyword)
	if _, ok := ctx.Deadline(); ok {
		m.deadlines++
	}
	if err := m.failures[keyword]; err != nil {
		return nil, err
	}
	return m.suppliers[keyword], nil
}

func (m *MockMarketplace) GetName() string {
	return "MockMarketplace"
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	trims    int
	trimErr  error
	fail     bool
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("redis: connection refused")
	}
	m.messages[key] = append(m.messages[key], append([]byte(nil), message...))
	return nil
}

func (m *MockPublisher) TrimStreams(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trims++
	return m.trimErr
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[key])
}

func strPtr(s string) *string { return &s }
