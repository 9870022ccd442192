package insight

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/dvloznov/insight-service/internal/domain"
)

// fingerprintLimit caps how many transactions contribute to the cache key.
// Trade-off carried over from the source system: histories differing only
// beyond the first 50 transactions share a cache entry, in exchange for a
// bounded fingerprint cost.
const fingerprintLimit = 50

// Fingerprint derives a stable cache key from the economically relevant fields
// of the transaction set (amount, category, date). Description and ID are
// excluded so cosmetic edits still hit the cache.
func Fingerprint(txs []domain.Transaction) string {
	n := len(txs)
	if n > fingerprintLimit {
		n = fingerprintLimit
	}

	var b strings.Builder
	for _, tx := range txs[:n] {
		b.WriteString(strconv.FormatFloat(tx.Amount, 'f', 2, 64))
		b.WriteByte('|')
		b.WriteString(tx.Category)
		b.WriteByte('|')
		b.WriteString(tx.Date.Format("2006-01-02"))
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
