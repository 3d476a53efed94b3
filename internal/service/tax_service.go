package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taxdesk/internal/aggregate"
	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

// TaxService exposes computed aggregates and compact contexts.
type TaxService interface {
	GetAggregate(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.TaxAggregate, error)
	GetContext(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.CompactTaxContext, error)
	// Regenerate recomputes the aggregate from the ledger and rebuilds the
	// compact context.
	Regenerate(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.CompactTaxContext, error)
}

type taxService struct {
	aggRepo    port.AggregateRepository
	ctxRepo    port.TaxContextRepository
	computer   *aggregate.Computer
	ctxBuilder *aggregate.ContextBuilder
}

// NewTaxService creates a new TaxService implementation.
func NewTaxService(
	aggRepo port.AggregateRepository,
	ctxRepo port.TaxContextRepository,
	computer *aggregate.Computer,
	ctxBuilder *aggregate.ContextBuilder,
) TaxService {
	return &taxService{
		aggRepo:    aggRepo,
		ctxRepo:    ctxRepo,
		computer:   computer,
		ctxBuilder: ctxBuilder,
	}
}

func (s *taxService) GetAggregate(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.TaxAggregate, error) {
	return s.aggRepo.GetLatestValid(ctx, ownerID, taxYear)
}

// GetContext returns the persisted compact context, decoded. Serving the
// stored copy keeps reads cheap; Regenerate exists for staleness.
func (s *taxService) GetContext(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.CompactTaxContext, error) {
	rec, err := s.ctxRepo.Get(ctx, ownerID, taxYear)
	if err != nil {
		return nil, err
	}
	var compact domain.CompactTaxContext
	if err := json.Unmarshal(rec.ContextJSON, &compact); err != nil {
		return nil, fmt.Errorf("taxService.GetContext: decoding stored context: %w", err)
	}
	return &compact, nil
}

func (s *taxService) Regenerate(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.CompactTaxContext, error) {
	if err := s.computer.Compute(ctx, ownerID, taxYear); err != nil {
		return nil, err
	}
	return s.ctxBuilder.Build(ctx, ownerID, taxYear)
}
