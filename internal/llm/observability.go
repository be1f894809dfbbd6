package llm

import (
	"context"
	"log/slog"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Provider  Provider
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

type slogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver logs every call through logger: successful calls at
// INFO, failed ones at WARN with their error code.
func NewSlogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &slogObserver{logger: logger}
}

func (o *slogObserver) OnCallComplete(e LLMCallEvent) {
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("task", string(e.Task)),
		slog.String("provider", string(e.Provider)),
		slog.String("model", e.Model),
		slog.Int64("latency_ms", e.LatencyMs),
	}
	if !e.Success {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error_code", e.ErrorCode))
	}
	o.logger.LogAttrs(context.Background(), level, "llm call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
