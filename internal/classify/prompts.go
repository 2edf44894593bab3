package classify

import (
	"fmt"
	"strings"
)

// classifySystemPrompt instructs the LLM to sort task names into categories.
const classifySystemPrompt = `You are a time-tracking assistant that categorizes tasks.
Categorize every task you are given into exactly one of these categories:
- "Client Work": work billed to a named client
- "Work": internal work that is not billed to a client
- "Personal": anything unrelated to work

You must output ONLY a JSON array with one object per task, in the order given:
[
  {
    "task": "Original task name, exactly as given",
    "category": "Client Work" | "Work" | "Personal",
    "client": "Client name, or null if not Client Work",
    "cleaned_task": "Task name with the client name and noise removed",
    "task_id": null
  }
]

CRITICAL RULES:
1. Copy "task" verbatim, including any "[TaskID: ...]" marker
2. Never invent client names; use null when unsure
3. Do not add tasks that were not given
4. No prose, no comments, only the JSON array`

func buildClassifyPrompt(names []string) string {
	var b strings.Builder
	b.WriteString("Tasks:\n")
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	return b.String()
}
