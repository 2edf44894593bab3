package notion

import (
	"context"
	"net/http"
	"testing"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configRow(category, databaseID, client string) map[string]any {
	props := map[string]any{
		"Category":   map[string]any{"select": map[string]any{"name": category}},
		"DatabaseID": map[string]any{"rich_text": []any{map[string]any{"text": map[string]any{"content": databaseID}}}},
	}
	if client != "" {
		props["ClientName"] = map[string]any{"rich_text": []any{map[string]any{"plain_text": client}}}
	}
	return map[string]any{"id": "row-" + category + client, "properties": props}
}

func TestConfigSource_BuildsRoutingTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/cfg/query", r.URL.Path)
		assert.NotContains(t, decodeBody(t, r), "filter")
		writeJSON(t, w, http.StatusOK, map[string]any{"results": []any{
			configRow("Default", "db-default", ""),
			configRow("Work", "db-work", ""),
			configRow("Personal", "db-personal", ""),
			configRow("Client", "db-acme", "Acme"),
			configRow("Client", "db-orphan", ""),
			configRow("Archive", "db-old", ""),
			configRow("Work", "", ""),
		}})
	})

	table, err := ConfigSource{Client: c, DatabaseID: "cfg"}.FetchRoutingTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RoutingTable{
		Default:  "db-default",
		Work:     "db-work",
		Personal: "db-personal",
		Clients:  map[string]domain.DatabaseRef{"Acme": "db-acme"},
	}, table)
}

func TestConfigSource_RequiresDatabaseID(t *testing.T) {
	c, err := NewClient("token")
	require.NoError(t, err)

	_, err = ConfigSource{Client: c}.FetchRoutingTable(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfig)
}
