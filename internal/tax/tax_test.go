package tax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/domain"
	"taxdesk/internal/tax"
)

func TestCalculateLiability_ZeroAndNegative(t *testing.T) {
	for _, income := range []float64{0, -100} {
		res := tax.CalculateLiability(income)
		assert.NotNil(t, res.Brackets)
		assert.Empty(t, res.Brackets)
		assert.Zero(t, res.TotalTax)
		assert.Zero(t, res.EffectiveRate)
		assert.Zero(t, res.MonthlyEstimate)
	}
}

func TestCalculateLiability_WithinZeroBand(t *testing.T) {
	res := tax.CalculateLiability(800_000)

	require.Len(t, res.Brackets, 1)
	assert.Equal(t, "₦0 – ₦800,000", res.Brackets[0].Range)
	assert.Zero(t, res.Brackets[0].Tax)
	assert.Zero(t, res.TotalTax)
	assert.Zero(t, res.EffectiveRate)
}

func TestCalculateLiability_OneMillion(t *testing.T) {
	res := tax.CalculateLiability(1_000_000)

	require.Len(t, res.Brackets, 2)

	zero := res.Brackets[0]
	assert.InDelta(t, 800_001, zero.Taxable, 0.001)
	assert.Zero(t, zero.Tax)

	band := res.Brackets[1]
	assert.Equal(t, 0.15, band.Rate)
	assert.InDelta(t, 199_999, band.Taxable, 0.001)
	assert.InDelta(t, 29_999.85, band.Tax, 0.001)

	assert.InDelta(t, 29_999.85, res.TotalTax, 0.001)
	assert.InDelta(t, 3.0, res.EffectiveRate, 0.001)
	assert.InDelta(t, 2_499.99, res.MonthlyEstimate, 0.001)
}

func TestCalculateLiability_FiveMillion(t *testing.T) {
	res := tax.CalculateLiability(5_000_000)

	require.Len(t, res.Brackets, 3)
	assert.InDelta(t, 330_000, res.Brackets[1].Tax, 0.001)
	assert.InDelta(t, 359_999.82, res.Brackets[2].Tax, 0.001)
	assert.InDelta(t, 689_999.82, res.TotalTax, 0.001)
	assert.InDelta(t, 13.8, res.EffectiveRate, 0.001)
}

func TestCalculateLiability_TopBracket(t *testing.T) {
	res := tax.CalculateLiability(60_000_000)

	require.Len(t, res.Brackets, 6)
	top := res.Brackets[5]
	assert.Equal(t, "Above ₦50,000,000", top.Range)
	assert.Equal(t, 0.25, top.Rate)
	assert.InDelta(t, 9_999_999, top.Taxable, 0.001)
	assert.InDelta(t, 12_929_999.75, res.TotalTax, 0.01)
}

func TestCalculateDeductions_RentRelief(t *testing.T) {
	res := tax.CalculateDeductions(tax.DeductionsInput{AnnualRentPaid: 2_000_000})
	assert.InDelta(t, 400_000, res.RentRelief, 0.001)
	assert.InDelta(t, 400_000, res.Total, 0.001)

	capped := tax.CalculateDeductions(tax.DeductionsInput{AnnualRentPaid: 5_000_000})
	assert.InDelta(t, 500_000, capped.RentRelief, 0.001)

	none := tax.CalculateDeductions(tax.DeductionsInput{})
	assert.Zero(t, none.RentRelief)
	assert.Zero(t, none.Total)
}

func TestCalculateDeductions_StatutoryOnlyWhenVisible(t *testing.T) {
	hidden := tax.CalculateDeductions(tax.DeductionsInput{AnnualSalary: 3_000_000})
	assert.Zero(t, hidden.Pension)
	assert.Zero(t, hidden.NHF)

	visible := tax.CalculateDeductions(tax.DeductionsInput{
		AnnualSalary:   3_000_000,
		PensionVisible: true,
		NHFVisible:     true,
	})
	assert.InDelta(t, 240_000, visible.Pension, 0.001)
	assert.InDelta(t, 75_000, visible.NHF, 0.001)
	assert.InDelta(t, 315_000, visible.Total, 0.001)
}

func TestCalculateDeductions_Passthrough(t *testing.T) {
	res := tax.CalculateDeductions(tax.DeductionsInput{
		NHISAmount:          12_000,
		LifeInsuranceAmount: 30_000,
	})
	assert.InDelta(t, 12_000, res.NHIS, 0.001)
	assert.InDelta(t, 30_000, res.LifeInsurance, 0.001)
	assert.InDelta(t, 42_000, res.Total, 0.001)
}

func TestClassifyEmployment(t *testing.T) {
	tests := []struct {
		name     string
		salary   float64
		business float64
		total    float64
		want     domain.EmploymentType
	}{
		{"no income defaults to paye", 0, 0, 0, domain.EmploymentPAYE},
		{"mostly salary", 900_000, 0, 1_000_000, domain.EmploymentPAYE},
		{"mostly business", 0, 900_000, 1_000_000, domain.EmploymentSelfEmployed},
		{"even split", 500_000, 500_000, 1_000_000, domain.EmploymentMixed},
		{"exactly 80 percent salary is mixed", 800_000, 0, 1_000_000, domain.EmploymentMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.ClassifyEmployment(tt.salary, tt.business, tt.total))
		})
	}
}

func TestGenerateFlags(t *testing.T) {
	flags := tax.GenerateFlags(tax.FlagsInput{
		TotalIncome:      500_000,
		TaxableIncome:    500_000,
		MonthsCovered:    6,
		TransactionCount: 5,
	})

	assert.Contains(t, flags, "Income below national minimum wage (₦840,000/year)")
	assert.Contains(t, flags, "Taxable income within zero-rate bracket (≤₦800,000)")
	assert.Contains(t, flags, "Data covers 6 of 12 months — income may be extrapolated")
	assert.Contains(t, flags, "Limited transaction data — results may not reflect full financial picture")
}

func TestGenerateFlags_NoIncomeSkipsMinimumWage(t *testing.T) {
	flags := tax.GenerateFlags(tax.FlagsInput{
		MonthsCovered:    12,
		TransactionCount: 50,
	})

	assert.NotContains(t, flags, "Income below national minimum wage (₦840,000/year)")
	assert.Contains(t, flags, "Taxable income within zero-rate bracket (≤₦800,000)")
}

func TestGenerateFlags_TopBracketWarning(t *testing.T) {
	flags := tax.GenerateFlags(tax.FlagsInput{
		TotalIncome:      60_000_000,
		TaxableIncome:    55_000_000,
		MonthsCovered:    12,
		TransactionCount: 400,
	})

	assert.Equal(t, []string{"Income exceeds ₦50M — top bracket (25%) applies"}, flags)
}
