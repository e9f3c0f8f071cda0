// Package logger writes single-line JSON logs to stdout, carrying the
// request correlation ID and the ride ID from the context when present.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelError level = "ERROR"
)

// errorDetail is attached to ERROR lines.
type errorDetail struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack"`
}

type entry struct {
	Timestamp string       `json:"timestamp"`
	Level     level        `json:"level"`
	Service   string       `json:"service"`
	Action    string       `json:"action"`
	Message   string       `json:"message"`
	Hostname  string       `json:"hostname"`
	RequestID string       `json:"request_id,omitempty"`
	RideID    string       `json:"ride_id,omitempty"`
	Details   any          `json:"details,omitempty"`
	Error     *errorDetail `json:"error,omitempty"`
}

// Logger is a structured logger scoped to one service.
type Logger struct {
	service  string
	hostname string
	mu       sync.Mutex
}

// New creates a logger for the given service name.
func New(service string) *Logger {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = "unknown-hostname"
	}
	if strings.TrimSpace(service) == "" {
		service = "unknown-service"
	}
	return &Logger{service: service, hostname: host}
}

// Debug writes a DEBUG line.
func (l *Logger) Debug(ctx context.Context, action, msg string, details any) {
	l.write(ctx, levelDebug, action, msg, details, nil)
}

// Info writes an INFO line.
func (l *Logger) Info(ctx context.Context, action, msg string, details any) {
	l.write(ctx, levelInfo, action, msg, details, nil)
}

// Error writes an ERROR line with the error message and a stack trace.
func (l *Logger) Error(ctx context.Context, action, msg string, err error, details any) {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	l.write(ctx, levelError, action, msg, details, &errorDetail{
		Msg:   strings.TrimSpace(err.Error()),
		Stack: string(debug.Stack()),
	})
}

func (l *Logger) write(ctx context.Context, lvl level, action, msg string, details any, errObj *errorDetail) {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "unspecified"
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     lvl,
		Service:   l.service,
		Action:    action,
		Message:   strings.TrimSpace(msg),
		Hostname:  l.hostname,
		RequestID: fromContext(ctx, requestIDKey{}),
		RideID:    fromContext(ctx, rideIDKey{}),
		Details:   details,
		Error:     errObj,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := json.Marshal(e)
	if err != nil {
		// details are the usual marshal offender; retry without them
		e.Details = nil
		if b, err = json.Marshal(e); err != nil {
			fmt.Fprintf(os.Stderr, "log marshal failed: %v\n", err)
			return
		}
	}
	fmt.Println(string(b))
}

type requestIDKey struct{}
type rideIDKey struct{}

// WithRequestID returns a context carrying the correlation ID.
func (l *Logger) WithRequestID(ctx context.Context, reqID string) context.Context {
	if strings.TrimSpace(reqID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

// WithRideID returns a context carrying the ride ID.
func (l *Logger) WithRideID(ctx context.Context, rideID int64) context.Context {
	if rideID <= 0 {
		return ctx
	}
	return context.WithValue(ctx, rideIDKey{}, strconv.FormatInt(rideID, 10))
}

func fromContext(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}
