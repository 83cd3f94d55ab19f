package logging

import (
	"context"
	"runtime"
	"strings"
)

type LogEntry struct {
	Key   string
	Value interface{}
}

func Entry(k string, v interface{}) LogEntry {
	return LogEntry{Key: k, Value: v}
}

type Logger interface {
	Debug(ctx context.Context, msg string, entries ...LogEntry)
	Info(ctx context.Context, msg string, entries ...LogEntry)
	Warning(ctx context.Context, msg string, entries ...LogEntry)
	Error(ctx context.Context, msg string, entries ...LogEntry)
}

// Error logs an unexpected error together with the name of the calling function.
func Error(ctx context.Context, log Logger, err error, entries ...LogEntry) {
	all := make([]LogEntry, 0, len(entries)+2)
	all = append(all, Entry("err", err), Entry("caller", caller()))
	all = append(all, entries...)
	log.Error(ctx, "Unexpected error occurred.", all...)
}

func caller() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	if ix := strings.LastIndex(name, "/"); ix >= 0 {
		name = name[ix+1:]
	}
	return name
}
