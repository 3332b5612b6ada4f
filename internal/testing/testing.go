// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// NewTestLogger returns a logger writing into buf, or discarding when buf is nil.
func NewTestLogger(buf *bytes.Buffer) *log.Logger {
	if buf == nil {
		return log.New(io.Discard)
	}
	return log.New(buf)
}

// MockResolver is a test double for services.Resolver keyed by raw cell value.
//
// Links missing from Results resolve as unavailable.
type MockResolver struct {
	Results map[string]models.StatsResult
	OnCall  func(raw string) // Invoked before each lookup, if set

	mu    sync.Mutex
	calls []string
}

func (m *MockResolver) Resolve(ctx context.Context, raw string) models.StatsResult {
	m.mu.Lock()
	m.calls = append(m.calls, raw)
	m.mu.Unlock()

	if m.OnCall != nil {
		m.OnCall(raw)
	}
	if r, ok := m.Results[raw]; ok {
		return r
	}
	return models.Unavailable()
}

// Calls returns the raw values passed to Resolve, in order.
func (m *MockResolver) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockTable is an in-memory services.TableStore.
type MockTable struct {
	Columns  map[string][]string
	ReadErr  error
	WriteErr error

	mu      sync.Mutex
	batches []models.BatchWrite
}

func (m *MockTable) Name() string { return "mock" }

func (m *MockTable) ReadColumn(ctx context.Context, table string) ([]string, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]string(nil), m.Columns[table]...), nil
}

func (m *MockTable) WriteBatch(ctx context.Context, table string, batch models.BatchWrite) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, batch)
	return nil
}

// Batches returns every batch written so far.
func (m *MockTable) Batches() []models.BatchWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BatchWrite(nil), m.batches...)
}
