package normalize

import (
	"regexp"
	"strings"

	"taxdesk/internal/domain"
)

// categoryRule assigns a category when its keywords match the raw
// description. Rules are checked in order; the first match wins, so
// income and bank-charge rules take precedence over generic expense
// keywords ("transfer" appears in charge descriptions too).
type categoryRule struct {
	category    string
	subCategory string
	keywords    *regexp.Regexp
}

var categoryRules = []categoryRule{
	{domain.CategoryIncome, "salary", regexp.MustCompile(`(?i)salary|wages|payroll|staff\s*pay`)},
	{domain.CategoryIncome, "business", regexp.MustCompile(`(?i)payment\s*received|invoice|client|sales\s*proceed`)},
	{domain.CategoryIncome, "rental", regexp.MustCompile(`(?i)rent\s*(received|income)|tenant`)},
	{domain.CategoryIncome, "investment", regexp.MustCompile(`(?i)dividend|interest\s*(earned|income|credit)|investment\s*return`)},

	{domain.CategoryBankCharges, "stamp_duty", regexp.MustCompile(`(?i)stamp\s*duty|emtl|electronic\s*money\s*transfer`)},
	{domain.CategoryBankCharges, "maintenance", regexp.MustCompile(`(?i)account\s*maintenance|monthly\s*fee|cot|commission\s*on\s*turnover`)},
	{domain.CategoryBankCharges, "transfer_fee", regexp.MustCompile(`(?i)transfer\s*fee|inter[\s\-]*bank\s*transfer`)},
	{domain.CategoryBankCharges, "sms_alert", regexp.MustCompile(`(?i)sms\s*alert|e[\s\-]*alert|notification\s*fee`)},
	{domain.CategoryBankCharges, "card_fee", regexp.MustCompile(`(?i)card\s*maintenance|annual\s*card`)},
	{domain.CategoryBankCharges, "atm_fee", regexp.MustCompile(`(?i)atm\s*(withdrawal\s*)?fee|inter[\s\-]*bank\s*atm`)},

	{domain.CategoryDeduction, "pension", regexp.MustCompile(`(?i)pension|pencom|rsf|retirement`)},
	{domain.CategoryDeduction, "nhf", regexp.MustCompile(`(?i)nhf|national\s*housing`)},
	{domain.CategoryDeduction, "nhis", regexp.MustCompile(`(?i)nhis|health\s*insurance`)},
	{domain.CategoryDeduction, "tax", regexp.MustCompile(`(?i)paye|tax\s*deduct|withholding`)},
	{domain.CategoryDeduction, "insurance", regexp.MustCompile(`(?i)life\s*insurance|insurance\s*premium`)},

	{domain.CategoryExpense, "rent", regexp.MustCompile(`(?i)^rent|rent\s*payment|house\s*rent`)},
	{domain.CategoryExpense, "utilities", regexp.MustCompile(`(?i)electricity|nepa|phcn|water\s*bill|gas\s*bill|dstv|gotv`)},
	{domain.CategoryExpense, "transport", regexp.MustCompile(`(?i)uber|bolt|fuel|petrol|diesel|transport`)},
	{domain.CategoryExpense, "food", regexp.MustCompile(`(?i)food|restaurant|grocery|market`)},
	{domain.CategoryExpense, "transfer", regexp.MustCompile(`(?i)transfer|trf|nip|nibss`)},
}

// InferCategory assigns a category and sub-category from keywords in the
// description. No external calls; a transaction nothing matches stays
// uncategorized.
func InferCategory(description string) (category, subCategory string) {
	desc := strings.TrimSpace(description)
	for _, rule := range categoryRules {
		if rule.keywords.MatchString(desc) {
			return rule.category, rule.subCategory
		}
	}
	return domain.CategoryUncategorized, ""
}

var (
	collapsePattern    = regexp.MustCompile(`\s+`)
	specialCharPattern = regexp.MustCompile(`[^\w\s₦.,()\-/]`)
)

// CleanDescription collapses whitespace, strips characters that have no
// business in a narration, and truncates to the column limit.
func CleanDescription(raw string) string {
	s := collapsePattern.ReplaceAllString(raw, " ")
	s = specialCharPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > 500 {
		return string(runes[:500])
	}
	return s
}
