package llm

import "time"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskClassify TaskType = "classify"
)

// Provider selects the LLM backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Provider   Provider
	LogCalls   bool
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	RetryDelay time.Duration
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig pointing at a local Ollama instance.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:   ProviderOllama,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  30000,
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		Tasks: map[TaskType]TaskConfig{
			TaskClassify: {Temperature: 0.2, MaxTokens: 2048, TimeoutMs: 60000},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// WithTaskTimeout returns a copy of c with the timeout of task replaced.
func (c LLMConfig) WithTaskTimeout(task TaskType, ms int) LLMConfig {
	if ms <= 0 {
		return c
	}
	tasks := make(map[TaskType]TaskConfig, len(c.Tasks))
	for k, v := range c.Tasks {
		tasks[k] = v
	}
	tc := tasks[task]
	tc.TimeoutMs = ms
	tasks[task] = tc
	c.Tasks = tasks
	return c
}
