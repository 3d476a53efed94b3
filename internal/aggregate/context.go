package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ContextBuilder derives the compact tax context from the latest valid
// aggregate and persists it.
type ContextBuilder struct {
	aggregates port.AggregateRepository
	files      port.FileMetaRepository
	contexts   port.TaxContextRepository
}

// NewContextBuilder creates a context builder.
func NewContextBuilder(aggregates port.AggregateRepository, files port.FileMetaRepository, contexts port.TaxContextRepository) *ContextBuilder {
	return &ContextBuilder{aggregates: aggregates, files: files, contexts: contexts}
}

// Build projects the latest valid aggregate into a compact context,
// persists it with a bumped version, and returns it. Returns
// domain.ErrNoValidAggregate when nothing has been computed yet.
func (b *ContextBuilder) Build(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.CompactTaxContext, error) {
	agg, err := b.aggregates.GetLatestValid(ctx, ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("aggregate.Build: %w", err)
	}

	fileMetas, err := b.files.ListByOwner(ctx, ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("aggregate.Build: listing files: %w", err)
	}

	var liability struct {
		TotalTax      float64 `json:"totalTax"`
		EffectiveRate float64 `json:"effectiveRate"`
	}
	if len(agg.TaxLiability) > 0 {
		if err := json.Unmarshal(agg.TaxLiability, &liability); err != nil {
			return nil, fmt.Errorf("aggregate.Build: decoding liability: %w", err)
		}
	}

	compact := &domain.CompactTaxContext{
		TaxYear:        taxYear,
		IncomeSources:  incomeSources(agg.IncomeCategories),
		TotalIncome:    agg.TotalIncome,
		TaxableIncome:  agg.TaxableIncome,
		EstimatedTax:   liability.TotalTax,
		EffectiveRate:  formatRate(liability.EffectiveRate),
		EmploymentType: employmentOrDefault(agg.EmploymentClassification),
		BankCharges:    agg.TotalBankCharges,
		Flags:          decodeFlags(agg.Flags),
		UploadStatus:   uploadStatus(fileMetas),
		DataMonths:     dataMonths(agg.MonthlyBreakdown),
	}

	contextJSON, err := json.Marshal(compact)
	if err != nil {
		return nil, fmt.Errorf("aggregate.Build: encoding context: %w", err)
	}
	tokenEstimate := (len(contextJSON) + 3) / 4

	version := 1
	if existing, err := b.contexts.Get(ctx, ownerID, taxYear); err == nil {
		version = existing.Version + 1
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("aggregate.Build: reading existing context: %w", err)
	}

	rec := &domain.TaxContextRecord{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		TaxYear:       taxYear,
		Version:       version,
		ContextJSON:   contextJSON,
		TokenEstimate: tokenEstimate,
	}
	if err := b.contexts.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("aggregate.Build: persisting context: %w", err)
	}

	log.Printf("aggregate: context built for owner %s, year %d (~%d tokens)", ownerID, taxYear, tokenEstimate)
	return compact, nil
}

// incomeSources extracts non-zero categories sorted by amount descending.
func incomeSources(raw json.RawMessage) []domain.IncomeSource {
	var cats map[string]float64
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &cats)
	}
	sources := make([]domain.IncomeSource, 0, len(cats))
	for name, total := range cats {
		if total > 0 {
			sources = append(sources, domain.IncomeSource{Type: name, Total: total})
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Total > sources[j].Total })
	return sources
}

func decodeFlags(raw json.RawMessage) []string {
	flags := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &flags)
	}
	return flags
}

// uploadStatus summarizes file processing progress in one short phrase.
func uploadStatus(fileMetas []domain.FileMeta) string {
	total := len(fileMetas)
	completed := 0
	processing := 0
	for _, f := range fileMetas {
		switch f.Status {
		case domain.FileStatusCompleted:
			completed++
		case domain.FileStatusProcessing:
			processing++
		}
	}

	status := fmt.Sprintf("%d file", total)
	if total != 1 {
		status += "s"
	}
	if processing > 0 {
		status += fmt.Sprintf(", %d processing", processing)
	} else if completed == total {
		status += ", fully processed"
	}
	return status
}

// dataMonths renders the covered period as "Jan 2025 – Jun 2025".
func dataMonths(raw json.RawMessage) string {
	var monthly []struct {
		Month string `json:"month"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &monthly)
	}
	if len(monthly) == 0 {
		return "No data"
	}

	months := make([]string, 0, len(monthly))
	for _, m := range monthly {
		months = append(months, m.Month)
	}
	sort.Strings(months)

	first := shortMonth(months[0])
	last := shortMonth(months[len(months)-1])
	if first == last {
		return first
	}
	return first + " – " + last
}

func shortMonth(ym string) string {
	parts := strings.SplitN(ym, "-", 2)
	if len(parts) != 2 {
		return ym
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return ym
	}
	return monthNames[m-1] + " " + parts[0]
}

// formatRate renders an effective rate like "3%" or "3.5%".
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "%"
}

func employmentOrDefault(e domain.EmploymentType) domain.EmploymentType {
	if e == "" {
		return domain.EmploymentPAYE
	}
	return e
}
