// Package classify turns raw task names into categorized tasks using an LLM.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/llm"
	"github.com/rs/zerolog"
)

// Classifier categorizes a batch of task names.
type Classifier interface {
	Classify(ctx context.Context, names []string) ([]domain.CategorizedTask, error)
}

// entry is one element of the LLM's JSON array.
type entry struct {
	Task        *string `json:"task"`
	Category    string  `json:"category"`
	Client      *string `json:"client"`
	CleanedTask *string `json:"cleaned_task"`
}

type llmClassifier struct {
	client llm.LLMClient
	logger *zerolog.Logger
}

// NewLLMClassifier creates a Classifier backed by client.
func NewLLMClassifier(client llm.LLMClient, logger *zerolog.Logger) Classifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &llmClassifier{client: client, logger: logger}
}

func (c *llmClassifier) Classify(ctx context.Context, names []string) ([]domain.CategorizedTask, error) {
	if len(names) == 0 {
		return nil, nil
	}

	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskClassify,
		SystemPrompt: classifySystemPrompt,
		UserPrompt:   buildClassifyPrompt(names),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: llm classify failed: %w", domain.ErrClassification, err)
	}
	c.logger.Debug().Str("response", resp.Text).Msg("classifier response")

	raw, err := llm.ExtractJSONArray[json.RawMessage](resp.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrClassification, err)
	}

	out := make([]domain.CategorizedTask, 0, len(raw))
	for i, msg := range raw {
		cat, err := decodeEntry(msg)
		if err != nil {
			c.logger.Warn().Int("index", i).Err(err).Msg("skipping classifier entry")
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

// decodeEntry validates one array element on its own so a single bad entry
// does not discard the batch.
func decodeEntry(msg json.RawMessage) (domain.CategorizedTask, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.CategorizedTask{}, fmt.Errorf("entry is not an object: %s", trimmed)
	}

	var e entry
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return domain.CategorizedTask{}, fmt.Errorf("decoding entry: %w", err)
	}
	if e.Task == nil || strings.TrimSpace(*e.Task) == "" {
		return domain.CategorizedTask{}, fmt.Errorf("entry has no task")
	}
	category, ok := domain.ParseCategory(e.Category)
	if !ok {
		return domain.CategorizedTask{}, fmt.Errorf("unknown category %q", e.Category)
	}

	name, stableID := domain.ExtractTaskIDMarker(strings.TrimSpace(*e.Task))
	cleaned := optionalString(e.CleanedTask)
	if cleaned != "" {
		cleaned, _ = domain.ExtractTaskIDMarker(cleaned)
	}

	return domain.CategorizedTask{
		OriginalName: name,
		Category:     category,
		ClientName:   optionalString(e.Client),
		CleanedName:  domain.CoalesceStr(cleaned, name),
		StableID:     stableID,
	}, nil
}

// optionalString treats nil, blank and the literal "null" as absent.
func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}
