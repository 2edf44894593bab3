package reconcile

import "github.com/alexanderramin/tasksync/internal/domain"

// Route picks the target collection for a category and optional client.
// It never fails; an empty result means the routing table has a gap.
func Route(category domain.Category, client string, table domain.RoutingTable) domain.DatabaseRef {
	switch {
	case category == domain.CategoryClientWork && client != "":
		if ref, ok := table.Clients[client]; ok && ref != "" {
			return ref
		}
		return table.Default
	case category == domain.CategoryWork:
		return table.Work
	case category == domain.CategoryPersonal:
		return table.Personal
	default:
		return table.Default
	}
}
