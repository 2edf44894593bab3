package llm

import "github.com/rs/zerolog"

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events to a zerolog logger.
type LogObserver struct {
	logger *zerolog.Logger
}

// NewLogObserver creates an Observer that logs events through logger.
func NewLogObserver(logger *zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	level := zerolog.InfoLevel
	if !event.Success {
		level = zerolog.WarnLevel
	}
	o.logger.WithLevel(level).
		Str("task", string(event.Task)).
		Str("error_code", event.ErrorCode).
		Str("model", event.Model).
		Int64("latency_ms", event.LatencyMs).
		Bool("success", event.Success).
		Msg("llm_call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
