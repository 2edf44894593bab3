package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// FormatRuns lists past sync runs, newest first.
func FormatRuns(runs []*domain.SyncRun, now time.Time) string {
	if len(runs) == 0 {
		return Dim("No sync runs recorded.") + "\n"
	}
	headers := []string{"ID", "STARTED", "DATE", "STATUS", "TASKS", "CREATED", "UPDATED", "SKIPPED", "FAILED"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			TruncID(r.ID),
			HumanTimestampFrom(r.StartedAt, now),
			formatDate(r.TaskDate),
			RunStatusPill(r.Status),
			fmt.Sprint(r.TaskCount),
			fmt.Sprint(r.Created),
			fmt.Sprint(r.Updated),
			fmt.Sprint(r.Skipped),
			fmt.Sprint(r.Failed),
		})
	}
	return RenderTable(headers, rows, 4, 5, 6, 7, 8)
}
