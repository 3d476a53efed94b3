// Package tax implements the Nigeria Tax Act 2025 personal income tax
// rules effective January 1, 2026. Everything here is deterministic
// arithmetic over the aggregated figures; nothing calls out.
package tax

import "math"

// Bracket is one band of the progressive schedule. Max is +Inf for the
// top band.
type Bracket struct {
	Min   float64
	Max   float64
	Rate  float64
	Label string
}

// Brackets2026 is the progressive schedule for the 2026 tax year.
var Brackets2026 = []Bracket{
	{Min: 0, Max: 800_000, Rate: 0.00, Label: "₦0 – ₦800,000"},
	{Min: 800_001, Max: 3_000_000, Rate: 0.15, Label: "₦800,001 – ₦3,000,000"},
	{Min: 3_000_001, Max: 12_000_000, Rate: 0.18, Label: "₦3,000,001 – ₦12,000,000"},
	{Min: 12_000_001, Max: 25_000_000, Rate: 0.21, Label: "₦12,000,001 – ₦25,000,000"},
	{Min: 25_000_001, Max: 50_000_000, Rate: 0.23, Label: "₦25,000,001 – ₦50,000,000"},
	{Min: 50_000_001, Max: math.Inf(1), Rate: 0.25, Label: "Above ₦50,000,000"},
}

// BracketResult is the liability contribution of one band.
type BracketResult struct {
	Range   string  `json:"range"`
	Rate    float64 `json:"rate"`
	Taxable float64 `json:"taxable"`
	Tax     float64 `json:"tax"`
}

// LiabilityResult is the full progressive liability breakdown.
type LiabilityResult struct {
	Brackets        []BracketResult `json:"brackets"`
	TotalTax        float64         `json:"totalTax"`
	EffectiveRate   float64         `json:"effectiveRate"`
	MonthlyEstimate float64         `json:"monthlyEstimate"`
}

// CalculateLiability walks taxable income through the progressive
// brackets. Band capacity is Max - Min + 1, matching the published band
// boundaries (800,001 belongs to the zero band's capacity, not the 15%
// band's). Per-band tax is rounded to kobo before summing.
func CalculateLiability(taxableIncome float64) LiabilityResult {
	if taxableIncome <= 0 {
		return LiabilityResult{Brackets: []BracketResult{}}
	}

	var results []BracketResult
	totalTax := 0.0
	remaining := taxableIncome

	for _, bracket := range Brackets2026 {
		if remaining <= 0 {
			break
		}
		bracketSize := remaining
		if !math.IsInf(bracket.Max, 1) {
			bracketSize = bracket.Max - bracket.Min + 1
		}
		taxableInBracket := math.Min(remaining, bracketSize)
		bandTax := round2(taxableInBracket * bracket.Rate)

		results = append(results, BracketResult{
			Range:   bracket.Label,
			Rate:    bracket.Rate,
			Taxable: taxableInBracket,
			Tax:     bandTax,
		})

		totalTax += bandTax
		remaining -= taxableInBracket
	}

	totalTax = round2(totalTax)

	return LiabilityResult{
		Brackets:        results,
		TotalTax:        totalTax,
		EffectiveRate:   math.Round(totalTax/taxableIncome*1000) / 10,
		MonthlyEstimate: round2(totalTax / 12),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
