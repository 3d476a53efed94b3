package normalize

import "regexp"

// Header patterns cover the column labels Nigerian banks actually use.
// Anchored to the whole header so "value date" never matches an amount
// pattern on the word "value".
var (
	datePattern        = regexp.MustCompile(`(?i)^(date|tran[_\s]*date|transaction[_\s]*date|value[_\s]*date|post[_\s]*date|posting[_\s]*date)$`)
	descriptionPattern = regexp.MustCompile(`(?i)^(description|narration|particulars|details|remarks|transaction[_\s]*details|memo|reference)$`)
	amountPattern      = regexp.MustCompile(`(?i)^(amount|value|sum|total|tran[_\s]*amount)$`)
	creditPattern      = regexp.MustCompile(`(?i)^(credit|cr|deposit|money[_\s]*in|inflow|credits)$`)
	debitPattern       = regexp.MustCompile(`(?i)^(debit|dr|withdrawal|money[_\s]*out|outflow|debits)$`)
	typePattern        = regexp.MustCompile(`(?i)^(type|direction|tran[_\s]*type|transaction[_\s]*type)$`)
)

// ColumnMap holds the detected column name for each transaction field.
// An empty string means no header matched.
type ColumnMap struct {
	DateKey        string
	DescriptionKey string
	AmountKey      string
	CreditKey      string
	DebitKey       string
	TypeKey        string
}

// DetectColumns matches headers against the known label patterns. The
// first matching header wins for each field.
func DetectColumns(headers []string) ColumnMap {
	find := func(pattern *regexp.Regexp) string {
		for _, h := range headers {
			if pattern.MatchString(h) {
				return h
			}
		}
		return ""
	}
	return ColumnMap{
		DateKey:        find(datePattern),
		DescriptionKey: find(descriptionPattern),
		AmountKey:      find(amountPattern),
		CreditKey:      find(creditPattern),
		DebitKey:       find(debitPattern),
		TypeKey:        find(typePattern),
	}
}
