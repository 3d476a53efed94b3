// Package dedupe fingerprints transactions so the same financial event
// appearing in overlapping statement uploads collapses to a single row.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"taxdesk/internal/domain"
)

// Result reports which transactions survived a deduplication pass.
type Result struct {
	Unique          []domain.NormalizedTransaction
	DuplicateCount  int
	DuplicateHashes []string
}

// Hash derives the deterministic fingerprint of a transaction from its
// date, amount, direction, bank and the first 50 characters of its
// cleaned description. Description and bank are lowercased so cosmetic
// differences between statement exports do not defeat matching.
func Hash(tx domain.NormalizedTransaction) string {
	desc := strings.TrimSpace(firstN(strings.ToLower(tx.Description), 50))
	bank := strings.TrimSpace(strings.ToLower(tx.BankName))

	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		tx.Date.Format("2006-01-02"),
		tx.Amount.StringFixed(2),
		tx.Direction,
		bank,
		desc,
	)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// DeduplicateBatch removes duplicates within one freshly parsed batch.
// The first occurrence wins.
func DeduplicateBatch(transactions []domain.NormalizedTransaction) Result {
	seen := make(map[string]struct{}, len(transactions))
	res := Result{}
	for _, tx := range transactions {
		h := Hash(tx)
		if _, ok := seen[h]; ok {
			res.DuplicateHashes = append(res.DuplicateHashes, h)
			continue
		}
		seen[h] = struct{}{}
		res.Unique = append(res.Unique, tx)
	}
	res.DuplicateCount = len(res.DuplicateHashes)
	return res
}

// DeduplicateAgainstExisting drops transactions whose hash is already
// persisted for the owner.
func DeduplicateAgainstExisting(transactions []domain.NormalizedTransaction, existing map[string]struct{}) Result {
	res := Result{}
	for _, tx := range transactions {
		h := Hash(tx)
		if _, ok := existing[h]; ok {
			res.DuplicateHashes = append(res.DuplicateHashes, h)
			continue
		}
		res.Unique = append(res.Unique, tx)
	}
	res.DuplicateCount = len(res.DuplicateHashes)
	return res
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
