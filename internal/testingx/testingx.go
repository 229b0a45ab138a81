// Package testingx provides test helpers shared by the pipeline packages.
//
// Overview:
//   - Responsibility: Capturing logger, error-code assertions, schema fixtures
//   - Key Types: MockLogger, LogEntry
//   - Concurrency Model: MockLogger is safe for concurrent use
//   - Error Semantics: Test failures via testing.T
//   - Performance Notes: Optimized for test execution
//
// Usage:
//
//	logger := testingx.NewMockLogger(t)
//	path := testingx.WriteSchema(t, "order.proto", testingx.OrderSchema)
//	testingx.AssertCode(t, err, errors.CodeValidation)
package testingx

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/logx"
)

// OrderSchema is the reference schema: one service, two messages.
const OrderSchema = `syntax = "proto3";

package order;

service OrderService {
  rpc GetOrder(GetOrderRequest) returns (Order);
}

message GetOrderRequest {
  string id = 1;
}

message Order {
  string id = 1;
  double total = 2;
}
`

// MockLogger records log calls for later inspection.
type MockLogger struct {
	t      testing.TB
	store  *entryStore
	fields []any
}

type entryStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a single recorded log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []any
	Error   error
}

// NewMockLogger creates a new mock logger.
func NewMockLogger(t testing.TB) *MockLogger {
	return &MockLogger{t: t, store: &entryStore{}}
}

// With returns a logger that shares the entry store and prepends kv to every entry.
func (m *MockLogger) With(kv ...any) logx.Logger {
	fields := append(append([]any{}, m.fields...), kv...)
	return &MockLogger{t: m.t, store: m.store, fields: fields}
}

// Debug logs a debug message.
func (m *MockLogger) Debug(msg string, kv ...any) { m.log("DEBUG", msg, nil, kv) }

// Info logs an info message.
func (m *MockLogger) Info(msg string, kv ...any) { m.log("INFO", msg, nil, kv) }

// Warn logs a warning message.
func (m *MockLogger) Warn(msg string, kv ...any) { m.log("WARN", msg, nil, kv) }

// Error logs an error message.
func (m *MockLogger) Error(err error, msg string, kv ...any) { m.log("ERROR", msg, err, kv) }

func (m *MockLogger) log(level, msg string, err error, kv []any) {
	fields := append(append([]any{}, m.fields...), kv...)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
	})
}

// Entries returns a copy of all recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	entries := make([]LogEntry, len(m.store.entries))
	copy(entries, m.store.entries)
	return entries
}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// AssertLogged asserts that a message was logged at level.
func (m *MockLogger) AssertLogged(level, msg string) {
	m.t.Helper()
	for _, entry := range m.Entries() {
		if entry.Level == level && entry.Message == msg {
			return
		}
	}
	m.t.Errorf("Expected log message not found: level=%s msg=%q", level, msg)
}

// Field returns the value logged under key in entry, or nil.
func (e LogEntry) Field(key string) any {
	for i := 0; i+1 < len(e.Fields); i += 2 {
		if k, ok := e.Fields[i].(string); ok && k == key {
			return e.Fields[i+1]
		}
	}
	return nil
}

// AssertCode asserts that err carries the expected code.
func AssertCode(t testing.TB, err error, expected errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", expected)
	}
	if code := errors.CodeOf(err); code != expected {
		t.Errorf("Expected error code %s, got %s (%v)", expected, code, err)
	}
}

// AssertNoError fails the test immediately when err is non-nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertFinding asserts that err carries a finding whose message contains substr.
func AssertFinding(t testing.TB, err error, substr string) {
	t.Helper()
	findings := errors.FindingsOf(err)
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return
		}
	}
	t.Errorf("Expected a finding containing %q, got %v", substr, findings)
}

// WriteSchema writes content to name inside a fresh temp directory and returns its path.
func WriteSchema(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write schema fixture: %v", err)
	}
	return path
}
