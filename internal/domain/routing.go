package domain

import (
	"fmt"
	"strings"
)

// DatabaseRef identifies a target collection in the record store.
type DatabaseRef string

// RoutingTable maps categories and clients to target collections.
type RoutingTable struct {
	Default  DatabaseRef            `json:"default" yaml:"default"`
	Work     DatabaseRef            `json:"work" yaml:"work"`
	Personal DatabaseRef            `json:"personal" yaml:"personal"`
	Clients  map[string]DatabaseRef `json:"clients" yaml:"clients"`
}

// Validate reports every missing required entry as a single ConfigError.
func (t RoutingTable) Validate() error {
	var missing []string
	if t.Default == "" {
		missing = append(missing, "default")
	}
	if t.Work == "" {
		missing = append(missing, "work")
	}
	if t.Personal == "" {
		missing = append(missing, "personal")
	}
	if len(missing) > 0 {
		return &ConfigError{
			Field:   strings.Join(missing, ","),
			Message: fmt.Sprintf("missing required database id for: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
