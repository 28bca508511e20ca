package testutil

import (
	"replyguy/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockNotifier implements providers.NotifierInterface and records the
// delivered messages.
type MockNotifier struct {
	mu       sync.Mutex
	Messages []string
	Files    []string
}

func (m *MockNotifier) Notify(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

func (m *MockNotifier) NotifyFile(msg string, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
	m.Files = append(m.Files, path)
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// calls.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	Commands       map[string]int
	LinksRecorded  int
	SweepRuns      int
	SweepEvictions int
	TrackedUsers   int
	LedgerWrites   int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCommandsTotal(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Commands == nil {
		m.Commands = map[string]int{}
	}
	m.Commands[command]++
}

func (m *MockMetrics) AddLinksRecorded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinksRecorded += n
}

func (m *MockMetrics) IncSweepRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepRuns++
}

func (m *MockMetrics) IncSweepEvictions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepEvictions++
}

func (m *MockMetrics) SetTrackedUsers(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrackedUsers = count
}

func (m *MockMetrics) ObserveLedgerWriteDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LedgerWrites++
}

// MockCache implements providers.CacheProviderInterface on a plain map.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Data == nil {
		m.Data = map[string][]byte{}
	}
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}
