package notion

import "strings"

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type database struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	Title    []richText `json:"title,omitempty"`
	RichText []richText `json:"rich_text,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Date     *dateValue `json:"date,omitempty"`
	Select   *option    `json:"select,omitempty"`
}

type richText struct {
	PlainText string    `json:"plain_text,omitempty"`
	Text      *textBody `json:"text,omitempty"`
}

type textBody struct {
	Content string `json:"content"`
}

type dateValue struct {
	Start string `json:"start"`
}

type option struct {
	Name string `json:"name"`
}

type dateFilter struct {
	Property string            `json:"property"`
	Date     map[string]string `json:"date"`
}

func textValue(parts []richText) string {
	var b strings.Builder
	for _, p := range parts {
		switch {
		case p.Text != nil:
			b.WriteString(p.Text.Content)
		default:
			b.WriteString(p.PlainText)
		}
	}
	return strings.TrimSpace(b.String())
}

func (p page) text(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	if len(prop.Title) > 0 {
		return textValue(prop.Title)
	}
	return textValue(prop.RichText)
}

func (p page) number(name string) *float64 {
	prop, ok := p.Properties[name]
	if !ok {
		return nil
	}
	return prop.Number
}

func (p page) selectName(name string) string {
	prop, ok := p.Properties[name]
	if !ok || prop.Select == nil {
		return ""
	}
	return prop.Select.Name
}

func titleProp(s string) map[string]any {
	return map[string]any{"title": []map[string]any{{"text": map[string]string{"content": s}}}}
}

func richTextProp(s string) map[string]any {
	return map[string]any{"rich_text": []map[string]any{{"text": map[string]string{"content": s}}}}
}

func numberProp(v float64) map[string]any {
	return map[string]any{"number": v}
}

func dateProp(day string) map[string]any {
	return map[string]any{"date": map[string]string{"start": day}}
}
