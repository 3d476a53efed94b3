// Package aggregate computes versioned tax-relevant rollups from the
// transaction ledger and derives the compact context served to
// downstream consumers. Aggregates are never edited in place: each
// recomputation invalidates the prior version and appends the next.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/google/uuid"

	"taxdesk/internal/domain"
	"taxdesk/internal/port"
	"taxdesk/internal/tax"
)

// IncomeCategories splits credit inflows by source.
type IncomeCategories struct {
	Salary     float64 `json:"salary"`
	Business   float64 `json:"business"`
	Rental     float64 `json:"rental"`
	Investment float64 `json:"investment"`
	Other      float64 `json:"other"`
}

// MonthlyEntry is one month's income/expense rollup.
type MonthlyEntry struct {
	Month       string  `json:"month"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	BankCharges float64 `json:"bankCharges"`
	NetBalance  float64 `json:"netBalance"`
}

// Computer recomputes a user's tax aggregate from their full ledger.
type Computer struct {
	transactions port.TransactionRepository
	aggregates   port.AggregateRepository
}

// NewComputer creates an aggregate computer.
func NewComputer(transactions port.TransactionRepository, aggregates port.AggregateRepository) *Computer {
	return &Computer{transactions: transactions, aggregates: aggregates}
}

// Compute folds every transaction for (owner, year) into a new aggregate
// version. A user with no transactions is a no-op, not an error: no new
// version is written and any existing one stays valid.
func (c *Computer) Compute(ctx context.Context, ownerID uuid.UUID, taxYear int) error {
	txs, err := c.transactions.ListByOwnerYear(ctx, ownerID, taxYear)
	if err != nil {
		return fmt.Errorf("aggregate.Compute: listing transactions: %w", err)
	}
	if len(txs) == 0 {
		log.Printf("aggregate: no transactions for owner %s, year %d", ownerID, taxYear)
		return nil
	}

	var (
		cats             IncomeCategories
		totalIncome      float64
		totalExpenses    float64
		totalBankCharges float64
		annualRentPaid   float64
		annualSalary     float64
		pensionVisible   bool
		nhfVisible       bool
		nhisAmount       float64
		lifeInsurance    float64
	)
	monthlyMap := make(map[string]*MonthlyEntry)

	for _, t := range txs {
		amount := t.Amount.InexactFloat64()
		month := t.Date.Format("2006-01")

		me, ok := monthlyMap[month]
		if !ok {
			me = &MonthlyEntry{Month: month}
			monthlyMap[month] = me
		}

		if t.Direction == domain.DirectionCredit {
			totalIncome += amount
			me.Income += amount

			if t.Category == domain.CategoryIncome {
				switch t.SubCategory {
				case "salary":
					cats.Salary += amount
					annualSalary += amount
				case "business":
					cats.Business += amount
				case "rental":
					cats.Rental += amount
				case "investment":
					cats.Investment += amount
				default:
					cats.Other += amount
				}
			} else {
				cats.Other += amount
			}
			continue
		}

		totalExpenses += amount
		me.Expenses += amount

		if t.Category == domain.CategoryBankCharges {
			totalBankCharges += amount
			me.BankCharges += amount
		}
		if t.Category == domain.CategoryExpense && t.SubCategory == "rent" {
			annualRentPaid += amount
		}
		if t.Category == domain.CategoryDeduction {
			switch t.SubCategory {
			case "pension":
				pensionVisible = true
			case "nhf":
				nhfVisible = true
			case "nhis":
				nhisAmount += amount
			case "insurance":
				lifeInsurance += amount
			}
		}
	}

	monthly := make([]MonthlyEntry, 0, len(monthlyMap))
	for _, me := range monthlyMap {
		me.NetBalance = round2(me.Income - me.Expenses)
		me.Income = round2(me.Income)
		me.Expenses = round2(me.Expenses)
		me.BankCharges = round2(me.BankCharges)
		monthly = append(monthly, *me)
	}
	sort.Slice(monthly, func(i, j int) bool { return monthly[i].Month < monthly[j].Month })

	deductions := tax.CalculateDeductions(tax.DeductionsInput{
		AnnualRentPaid:      annualRentPaid,
		AnnualSalary:        annualSalary,
		PensionVisible:      pensionVisible,
		NHFVisible:          nhfVisible,
		NHISAmount:          nhisAmount,
		LifeInsuranceAmount: lifeInsurance,
	})

	taxableIncome := math.Max(0, totalIncome-deductions.Total)
	liability := tax.CalculateLiability(taxableIncome)
	employment := tax.ClassifyEmployment(cats.Salary, cats.Business, totalIncome)
	flags := tax.GenerateFlags(tax.FlagsInput{
		TotalIncome:      totalIncome,
		TaxableIncome:    taxableIncome,
		TotalTax:         liability.TotalTax,
		MonthsCovered:    len(monthlyMap),
		TransactionCount: len(txs),
		EmploymentType:   employment,
	})
	if flags == nil {
		flags = []string{}
	}

	maxVersion, err := c.aggregates.MaxVersion(ctx, ownerID, taxYear)
	if err != nil {
		return fmt.Errorf("aggregate.Compute: reading max version: %w", err)
	}

	agg := &domain.TaxAggregate{
		ID:                       uuid.New(),
		OwnerID:                  ownerID,
		TaxYear:                  taxYear,
		Version:                  maxVersion + 1,
		TotalIncome:              round2(totalIncome),
		TotalExpenses:            round2(totalExpenses),
		TotalBankCharges:         round2(totalBankCharges),
		TaxableIncome:            round2(taxableIncome),
		IncomeCategories:         mustJSON(roundCategories(cats)),
		MonthlyBreakdown:         mustJSON(monthly),
		Deductions:               mustJSON(deductions),
		TaxLiability:             mustJSON(liability),
		EmploymentClassification: employment,
		Flags:                    mustJSON(flags),
		TransactionCount:         len(txs),
	}

	if err := c.aggregates.InsertNewVersion(ctx, agg); err != nil {
		return fmt.Errorf("aggregate.Compute: inserting version %d: %w", agg.Version, err)
	}

	log.Printf("aggregate: computed for owner %s, year %d (v%d)", ownerID, taxYear, agg.Version)
	return nil
}

func roundCategories(c IncomeCategories) IncomeCategories {
	return IncomeCategories{
		Salary:     round2(c.Salary),
		Business:   round2(c.Business),
		Rental:     round2(c.Rental),
		Investment: round2(c.Investment),
		Other:      round2(c.Other),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Only reachable with an unmarshalable type, which would be a
		// programming error.
		panic(err)
	}
	return b
}
