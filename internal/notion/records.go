package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
)

// Property names used on task databases.
const (
	PropName         = "Name"
	PropDuration     = "Duration"
	PropDate         = "Date"
	PropCategory     = "Category"
	PropTaskID       = "TaskID"
	PropClient       = "Client"
	PropMonthHours   = "Duration (month)"
	PropBillingDate  = "Billing Date"
	notionDateLayout = "2006-01-02"
)

// QueryExisting returns every page in databaseID whose Date equals date.
func (c *Client) QueryExisting(ctx context.Context, databaseID string, date time.Time) ([]domain.ExistingRecord, error) {
	day := date.Format(notionDateLayout)
	pages, err := c.queryDatabase(ctx, databaseID, dateFilter{
		Property: PropDate,
		Date:     map[string]string{"equals": day},
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.ExistingRecord, 0, len(pages))
	for _, p := range pages {
		out = append(out, domain.ExistingRecord{
			RecordID:      p.ID,
			StableID:      p.text(PropTaskID),
			Name:          p.text(PropName),
			DurationHours: p.number(PropDuration),
		})
	}
	c.logger.Info().
		Str("database", databaseID).
		Str("date", day).
		Int("count", len(out)).
		Msg("retrieved existing records")
	return out, nil
}

// GetBillingAnchor reads the day of month from the database's Billing Date property.
func (c *Client) GetBillingAnchor(ctx context.Context, databaseID string) (int, error) {
	var db database
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &db); err != nil {
		return 0, err
	}

	prop, ok := db.Properties[PropBillingDate]
	if !ok || prop.Date == nil || prop.Date.Start == "" {
		return 0, fmt.Errorf("database %s has no %q value", databaseID, PropBillingDate)
	}
	start := prop.Date.Start
	if len(start) > len(notionDateLayout) {
		start = start[:len(notionDateLayout)]
	}
	t, err := time.Parse(notionDateLayout, start)
	if err != nil {
		return 0, fmt.Errorf("parsing %q for database %s: %w", PropBillingDate, databaseID, err)
	}
	return t.Day(), nil
}

// CreateRecord creates a page in databaseID and returns its ID.
func (c *Client) CreateRecord(ctx context.Context, databaseID string, fields domain.RecordFields) (string, error) {
	body := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": recordProperties(fields),
	}
	var created page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateRecord patches the page's properties. Empty fields are left untouched.
func (c *Client) UpdateRecord(ctx context.Context, recordID string, fields domain.RecordFields) error {
	body := map[string]any{"properties": recordProperties(fields)}
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+recordID, body, nil)
}

func recordProperties(f domain.RecordFields) map[string]any {
	props := map[string]any{
		PropDuration: numberProp(f.DurationHours),
	}
	if f.Name != "" {
		props[PropName] = titleProp(f.Name)
	}
	if f.Category != "" {
		props[PropCategory] = richTextProp(string(f.Category))
	}
	if f.StableID != "" {
		props[PropTaskID] = richTextProp(f.StableID)
	}
	if f.Client != "" {
		props[PropClient] = richTextProp(f.Client)
	}
	if f.Date != nil {
		props[PropDate] = dateProp(f.Date.Format(notionDateLayout))
	}
	if f.BillingMonthHours != nil {
		props[PropMonthHours] = numberProp(*f.BillingMonthHours)
	}
	return props
}
