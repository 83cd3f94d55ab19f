package logging

import (
	"context"
	"sync"
)

const DEBUG = "debug"
const INFO = "info"
const WARNING = "warning"
const ERROR = "error"

type FakeLoggerRecord struct {
	Level   string
	Msg     string
	Entries []LogEntry
}

func (r FakeLoggerRecord) Get(key string) (interface{}, bool) {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

type FakeLogger struct {
	logged []FakeLoggerRecord
	lock   sync.RWMutex
}

func NewFakeLogger() *FakeLogger {
	return &FakeLogger{}
}

func (l *FakeLogger) Debug(ctx context.Context, msg string, entries ...LogEntry) {
	l.log(DEBUG, msg, entries...)
}

func (l *FakeLogger) Info(ctx context.Context, msg string, entries ...LogEntry) {
	l.log(INFO, msg, entries...)
}

func (l *FakeLogger) Warning(ctx context.Context, msg string, entries ...LogEntry) {
	l.log(WARNING, msg, entries...)
}

func (l *FakeLogger) Error(ctx context.Context, msg string, entries ...LogEntry) {
	l.log(ERROR, msg, entries...)
}

func (l *FakeLogger) Logged() []FakeLoggerRecord {
	l.lock.RLock()
	defer l.lock.RUnlock()
	records := make([]FakeLoggerRecord, len(l.logged))
	copy(records, l.logged)
	return records
}

func (l *FakeLogger) ByLevel(level string) []FakeLoggerRecord {
	records := make([]FakeLoggerRecord, 0)
	for _, r := range l.Logged() {
		if r.Level == level {
			records = append(records, r)
		}
	}
	return records
}

func (l *FakeLogger) log(level string, msg string, entries ...LogEntry) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.logged = append(l.logged, FakeLoggerRecord{
		Level:   level,
		Msg:     msg,
		Entries: entries,
	})
}
