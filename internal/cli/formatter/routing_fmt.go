package formatter

import (
	"sort"
	"strings"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// FormatRoutingTable shows where each category and client is written.
func FormatRoutingTable(t domain.RoutingTable) string {
	headers := []string{"ROUTE", "DATABASE"}
	rows := [][]string{
		{"default", orDash(string(t.Default))},
		{CategoryBadge(domain.CategoryWork), orDash(string(t.Work))},
		{CategoryBadge(domain.CategoryPersonal), orDash(string(t.Personal))},
	}

	clients := make([]string, 0, len(t.Clients))
	for name := range t.Clients {
		clients = append(clients, name)
	}
	sort.Strings(clients)
	for _, name := range clients {
		rows = append(rows, []string{
			StylePurple.Render("client: ") + name,
			orDash(string(t.Clients[name])),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	if err := t.Validate(); err != nil {
		b.WriteString("\n" + StyleYellow.Render("  WARNING: "+err.Error()) + "\n")
	}
	return RenderBox("Routing", b.String())
}
