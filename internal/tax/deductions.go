package tax

import "math"

const (
	rentReliefCap  = 500_000
	rentReliefRate = 0.20
	pensionRate    = 0.08
	nhfRate        = 0.025
)

// DeductionsInput carries the figures the aggregator observed in the
// transaction stream. Pension and NHF are statutory percentages of
// salary but only count when actually visible as deductions.
type DeductionsInput struct {
	AnnualRentPaid      float64
	AnnualSalary        float64
	PensionVisible      bool
	NHFVisible          bool
	NHISAmount          float64
	LifeInsuranceAmount float64
}

// DeductionsResult is the allowable-deductions breakdown.
type DeductionsResult struct {
	RentRelief    float64 `json:"rentRelief"`
	Pension       float64 `json:"pension"`
	NHF           float64 `json:"nhf"`
	NHIS          float64 `json:"nhis"`
	LifeInsurance float64 `json:"lifeInsurance"`
	Total         float64 `json:"total"`
}

// CalculateDeductions computes allowable deductions and reliefs. Rent
// relief is the lesser of ₦500,000 and 20% of annual rent.
func CalculateDeductions(in DeductionsInput) DeductionsResult {
	rentRelief := 0.0
	if in.AnnualRentPaid > 0 {
		rentRelief = math.Min(rentReliefCap, in.AnnualRentPaid*rentReliefRate)
	}

	pension := 0.0
	if in.PensionVisible {
		pension = in.AnnualSalary * pensionRate
	}

	nhf := 0.0
	if in.NHFVisible {
		nhf = in.AnnualSalary * nhfRate
	}

	return DeductionsResult{
		RentRelief:    round2(rentRelief),
		Pension:       round2(pension),
		NHF:           round2(nhf),
		NHIS:          in.NHISAmount,
		LifeInsurance: in.LifeInsuranceAmount,
		Total:         round2(rentRelief + pension + nhf + in.NHISAmount + in.LifeInsuranceAmount),
	}
}
