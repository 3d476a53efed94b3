package tax

import (
	"fmt"

	"taxdesk/internal/domain"
)

const annualMinimumWage = 70_000 * 12

// ClassifyEmployment infers employment type from income composition:
// over 80% salary is PAYE, over 80% business is self-employed, anything
// else is mixed. No income defaults to PAYE.
func ClassifyEmployment(salaryIncome, businessIncome, totalIncome float64) domain.EmploymentType {
	if totalIncome <= 0 {
		return domain.EmploymentPAYE
	}
	if salaryIncome/totalIncome > 0.8 {
		return domain.EmploymentPAYE
	}
	if businessIncome/totalIncome > 0.8 {
		return domain.EmploymentSelfEmployed
	}
	return domain.EmploymentMixed
}

// FlagsInput carries the figures the data-quality checks run over.
type FlagsInput struct {
	TotalIncome      float64
	TaxableIncome    float64
	TotalTax         float64
	MonthsCovered    int
	TransactionCount int
	EmploymentType   domain.EmploymentType
}

// GenerateFlags produces human-readable caveats about the computed
// result: thin data, partial-year coverage, and bracket edge cases.
func GenerateFlags(in FlagsInput) []string {
	var flags []string

	if in.TotalIncome > 0 && in.TotalIncome < annualMinimumWage {
		flags = append(flags, "Income below national minimum wage (₦840,000/year)")
	}
	if in.TaxableIncome <= 800_000 {
		flags = append(flags, "Taxable income within zero-rate bracket (≤₦800,000)")
	}
	if in.MonthsCovered < 12 {
		flags = append(flags, fmt.Sprintf("Data covers %d of 12 months — income may be extrapolated", in.MonthsCovered))
	}
	if in.TransactionCount < 10 {
		flags = append(flags, "Limited transaction data — results may not reflect full financial picture")
	}
	if in.TaxableIncome > 50_000_000 {
		flags = append(flags, "Income exceeds ₦50M — top bracket (25%) applies")
	}

	return flags
}
