package routing

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/goccy/go-yaml"
)

// Source loads the routing table from its system of record.
type Source interface {
	FetchRoutingTable(ctx context.Context) (domain.RoutingTable, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (domain.RoutingTable, error)

func (f SourceFunc) FetchRoutingTable(ctx context.Context) (domain.RoutingTable, error) {
	return f(ctx)
}

// FileSource reads the routing table from a YAML file:
//
//	default: <database id>
//	work: <database id>
//	personal: <database id>
//	clients:
//	  Acme: <database id>
type FileSource struct {
	Path string
}

func (s FileSource) FetchRoutingTable(_ context.Context) (domain.RoutingTable, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return domain.RoutingTable{}, &domain.ConfigError{
			Field:   "routing_file",
			Message: fmt.Sprintf("reading %s: %v", s.Path, err),
		}
	}

	var table domain.RoutingTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return domain.RoutingTable{}, &domain.ConfigError{
			Field:   "routing_file",
			Message: fmt.Sprintf("parsing %s: %v", s.Path, err),
		}
	}
	return table, nil
}

// WriteFile stores table at path in the format FileSource reads.
func WriteFile(path string, table domain.RoutingTable) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return fmt.Errorf("encoding routing table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
