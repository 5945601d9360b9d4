package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const billNumberPrefix = "INV"

// Prefix returns the numbering scope for the month containing t, e.g.
// "INV-2026-10". It doubles as the sequence counter key.
func Prefix(t time.Time) string {
	return fmt.Sprintf("%s-%04d-%02d", billNumberPrefix, t.Year(), int(t.Month()))
}

// FormatBillNumber renders seq zero-padded to at least three digits.
func FormatBillNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// ParseSequence extracts the numeric suffix of a bill number in prefix's
// scope.
func ParseSequence(billNumber, prefix string) (int, bool) {
	suffix, ok := strings.CutPrefix(billNumber, prefix+"-")
	if !ok || suffix == "" {
		return 0, false
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
