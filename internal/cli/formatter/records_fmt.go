package formatter

import (
	"fmt"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// FormatRecords lists the records of one local collection.
func FormatRecords(c *domain.Collection, records []*domain.StoredRecord) string {
	title := fmt.Sprintf("%s %s", Bold(c.Name), Dim(fmt.Sprintf("(billing anchor day %d)", c.BillingAnchorDay)))
	if len(records) == 0 {
		return title + "\n" + Dim("No records.") + "\n"
	}

	var total float64
	headers := []string{"DATE", "NAME", "CATEGORY", "CLIENT", "HOURS", "BILLED", "TASK ID"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		total += r.DurationHours
		billed := Dim("--")
		if r.BillingMonthHours != nil {
			billed = FormatHours(*r.BillingMonthHours)
		}
		rows = append(rows, []string{
			formatDate(r.RecordDate),
			r.Name,
			CategoryBadge(r.Category),
			orDash(r.Client),
			FormatHours(r.DurationHours),
			billed,
			TruncID(r.StableID),
		})
	}
	return title + "\n\n" + RenderTable(headers, rows, 4, 5) +
		"\n" + Dim("Total: ") + Bold(FormatHours(total)) + "\n"
}

// FormatCollections lists the collections known to the local ledger.
func FormatCollections(cs []*domain.Collection) string {
	if len(cs) == 0 {
		return Dim("No collections.") + "\n"
	}
	headers := []string{"ID", "NAME", "ANCHOR DAY", "CREATED"}
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{
			c.ID,
			Bold(c.Name),
			fmt.Sprint(c.BillingAnchorDay),
			formatDate(c.CreatedAt),
		})
	}
	return RenderTable(headers, rows, 2)
}
