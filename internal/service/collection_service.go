package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tasksync/internal/db"
	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/repository"
	"github.com/google/uuid"
)

type collectionService struct {
	collections repository.CollectionRepo
	uow         db.UnitOfWork
}

func NewCollectionService(collections repository.CollectionRepo, uow db.UnitOfWork) CollectionService {
	return &collectionService{collections: collections, uow: uow}
}

func (s *collectionService) Add(ctx context.Context, name string, anchorDay int) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ConfigError{Field: "name", Message: "collection name is required"}
	}
	if err := validateAnchor(anchorDay); err != nil {
		return nil, err
	}
	c := &domain.Collection{
		ID:               uuid.New().String(),
		Name:             name,
		BillingAnchorDay: anchorDay,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.collections.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *collectionService) List(ctx context.Context) ([]*domain.Collection, error) {
	return s.collections.List(ctx)
}

// EnsureFromRouting creates a local collection for every database the routing
// table names that the ledger does not know yet. The collection ID is the
// database reference itself. All inserts share one transaction.
func (s *collectionService) EnsureFromRouting(ctx context.Context, table domain.RoutingTable, anchorDay int) ([]*domain.Collection, error) {
	if err := validateAnchor(anchorDay); err != nil {
		return nil, err
	}

	return db.InTx(ctx, s.uow, func(ctx context.Context, tx db.DBTX) ([]*domain.Collection, error) {
		repo := repository.NewSQLiteCollectionRepo(tx)
		now := time.Now().UTC()
		seen := make(map[domain.DatabaseRef]bool)

		var created []*domain.Collection
		for _, e := range routingEntries(table) {
			if e.ref == "" || seen[e.ref] {
				continue
			}
			seen[e.ref] = true

			_, err := repo.GetByID(ctx, string(e.ref))
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			c := &domain.Collection{
				ID:               string(e.ref),
				Name:             e.label,
				BillingAnchorDay: anchorDay,
				CreatedAt:        now,
			}
			if err := repo.Create(ctx, c); err != nil {
				return nil, fmt.Errorf("creating collection %q: %w", e.label, err)
			}
			created = append(created, c)
		}
		return created, nil
	})
}

type routingEntry struct {
	label string
	ref   domain.DatabaseRef
}

func routingEntries(t domain.RoutingTable) []routingEntry {
	entries := []routingEntry{
		{"default", t.Default},
		{"work", t.Work},
		{"personal", t.Personal},
	}
	clients := make([]string, 0, len(t.Clients))
	for name := range t.Clients {
		clients = append(clients, name)
	}
	sort.Strings(clients)
	for _, name := range clients {
		entries = append(entries, routingEntry{"client: " + name, t.Clients[name]})
	}
	return entries
}

func validateAnchor(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: day %d", domain.ErrInvalidBillingAnchor, day)
	}
	return nil
}
