package notion

import (
	"context"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// Property names used on the configuration database.
const (
	PropConfigCategory = "Category"
	PropDatabaseID     = "DatabaseID"
	PropClientName     = "ClientName"
)

// ConfigSource reads the routing table from a Notion configuration database.
// Each row maps a Category (Default, Work, Personal or Client) to a DatabaseID;
// Client rows also carry a ClientName.
type ConfigSource struct {
	Client     *Client
	DatabaseID string
}

func (s ConfigSource) FetchRoutingTable(ctx context.Context) (domain.RoutingTable, error) {
	if s.DatabaseID == "" {
		return domain.RoutingTable{}, &domain.ConfigError{
			Field:   "notion.config_database_id",
			Message: "notion configuration database id is required",
		}
	}

	pages, err := s.Client.queryDatabase(ctx, s.DatabaseID, nil)
	if err != nil {
		return domain.RoutingTable{}, err
	}

	table := domain.RoutingTable{Clients: map[string]domain.DatabaseRef{}}
	for _, p := range pages {
		ref := domain.DatabaseRef(p.text(PropDatabaseID))
		if ref == "" {
			s.Client.logger.Warn().Str("page", p.ID).Msg("configuration row without database id")
			continue
		}
		switch category := p.selectName(PropConfigCategory); category {
		case "Default":
			table.Default = ref
		case "Work":
			table.Work = ref
		case "Personal":
			table.Personal = ref
		case "Client":
			name := p.text(PropClientName)
			if name == "" {
				s.Client.logger.Warn().Str("page", p.ID).Msg("client row without client name")
				continue
			}
			table.Clients[name] = ref
		default:
			s.Client.logger.Warn().Str("page", p.ID).Str("category", category).Msg("unknown configuration category")
		}
	}
	return table, nil
}
