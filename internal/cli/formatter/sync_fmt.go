package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/service"
)

// FormatSyncReport renders the intents of a run, what happened to each, and
// every task that was dropped along the way.
func FormatSyncReport(r *service.SyncReport) string {
	var b strings.Builder
	run := r.Run

	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		Bold(formatDate(run.TaskDate)),
		RunStatusPill(run.Status),
		TruncID(run.ID))

	if r.Plan != nil && len(r.Plan.Intents) > 0 {
		headers := []string{"ACTION", "TASK", "CATEGORY", "HOURS", "BILLED", "TARGET", "RESULT"}
		rows := make([][]string, 0, len(r.Plan.Intents))
		for i, in := range r.Plan.Intents {
			billed := Dim("--")
			target := string(in.DatabaseRef)
			if in.Kind == domain.IntentUpdate {
				if in.BillingMonthHours != nil {
					billed = FormatHours(*in.BillingMonthHours)
				}
				target = in.RecordID
			}
			result := Dim("planned")
			if i < len(r.Results) {
				result = StyleGreen.Render("ok")
				if r.Results[i].Err != nil {
					result = StyleRed.Render("failed")
				}
			}
			rows = append(rows, []string{
				IntentBadge(in.Kind),
				in.Name,
				CategoryBadge(in.Category),
				FormatHours(in.DurationHours),
				billed,
				TruncID(target),
				result,
			})
		}
		b.WriteString(RenderTable(headers, rows, 3, 4))
	} else {
		b.WriteString(Dim("Nothing to sync.") + "\n")
	}

	problems := dropped(r)
	if len(problems) > 0 {
		b.WriteString("\n")
		for _, p := range problems {
			b.WriteString(StyleYellow.Render("  ! "+p) + "\n")
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s, %s, %s, %s\n",
		StyleGreen.Render(fmt.Sprintf("%d created", run.Created)),
		StyleBlue.Render(fmt.Sprintf("%d updated", run.Updated)),
		StyleYellow.Render(fmt.Sprintf("%d skipped", run.Skipped)),
		StyleRed.Render(fmt.Sprintf("%d failed", run.Failed)))
	if run.Error != "" {
		b.WriteString(StyleRed.Render("  ERROR: "+run.Error) + "\n")
	}

	return RenderBox("Sync", b.String())
}

func dropped(r *service.SyncReport) []string {
	var out []string
	for _, e := range r.RowErrors {
		out = append(out, e.Error())
	}
	for _, e := range r.Unclassified {
		out = append(out, e.Error())
	}
	if r.Plan != nil {
		for _, e := range r.Plan.Skipped {
			out = append(out, e.Error())
		}
	}
	for _, e := range r.Failures() {
		out = append(out, e.Error())
	}
	return out
}
