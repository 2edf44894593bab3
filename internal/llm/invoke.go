package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/alexanderramin/tasksync/internal/retry"
)

// attemptFunc performs one generation against a backend.
type attemptFunc func(ctx context.Context) (text, model string, err error)

type attemptResult struct {
	text  string
	model string
}

// invoke runs attempt under the task timeout and the configured retry budget,
// maps the outcome onto the package errors and reports it to obs.
// Each attempt gets its own timeout.
func invoke(ctx context.Context, cfg LLMConfig, obs Observer, task TaskType, attempt attemptFunc) (*GenerateResponse, error) {
	start := time.Now()
	timeout := time.Duration(cfg.TaskTimeout(task)) * time.Millisecond
	policy := retry.Policy{
		MaxAttempts:  1 + cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		Multiplier:   2,
	}

	res, err := retry.DoValue(ctx, policy, "llm "+string(task), func(ctx context.Context) (attemptResult, error) {
		actx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		text, model, err := attempt(actx)
		if err != nil && actx.Err() != nil && ctx.Err() == nil {
			return attemptResult{}, fmt.Errorf("%w after %s: %v", ErrTimeout, timeout, err)
		}
		return attemptResult{text: text, model: model}, err
	})
	latency := time.Since(start).Milliseconds()

	if err == nil {
		if res.model == "" {
			res.model = cfg.Model
		}
		obs.OnCallComplete(LLMCallEvent{Task: task, Model: cfg.Model, LatencyMs: latency, Success: true})
		return &GenerateResponse{Text: res.text, Model: res.model, LatencyMs: latency}, nil
	}

	err = classifyError(ctx, err)
	obs.OnCallComplete(LLMCallEvent{Task: task, Model: cfg.Model, LatencyMs: latency, ErrorCode: errorCode(err)})
	return nil, err
}

func classifyError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrUnavailable):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// resolveSampling applies per-request overrides to the task defaults.
func resolveSampling(cfg LLMConfig, req GenerateRequest) (temperature float64, maxTokens int) {
	tc := cfg.Tasks[req.Task]
	temperature, maxTokens = tc.Temperature, tc.MaxTokens
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	return temperature, maxTokens
}
