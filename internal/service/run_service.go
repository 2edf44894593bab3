package service

import (
	"context"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/repository"
)

type runService struct {
	runs repository.SyncRunRepo
}

func NewRunService(runs repository.SyncRunRepo) RunService {
	return &runService{runs: runs}
}

func (s *runService) GetByID(ctx context.Context, id string) (*domain.SyncRun, error) {
	return s.runs.GetByID(ctx, id)
}

func (s *runService) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	return s.runs.ListRecent(ctx, limit)
}
