package usecase

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = numberAlphabet[int(b[i])%len(numberAlphabet)]
	}
	return string(b)
}

// newRegistrationNumber yields R-<last 6 digits of a millisecond timestamp>-<4
// random uppercase alphanumerics>. Collisions are rare but possible; the
// applications table enforces uniqueness and callers retry with a fresh number.
func newRegistrationNumber(now time.Time) string {
	return fmt.Sprintf("R-%06d-%s", now.UnixMilli()%1_000_000, randomSuffix(4))
}

// newReceiptNumber yields RCP-<unix timestamp>-<9 random uppercase
// alphanumerics>, unique per the receipts table constraint.
func newReceiptNumber(now time.Time) string {
	return fmt.Sprintf("RCP-%d-%s", now.Unix(), randomSuffix(9))
}
