package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Record id prefixes.
const (
	PrefixAsset      = "A"
	PrefixSale       = "S"
	PrefixPurchase   = "P"
	PrefixDividend   = "D"
	PrefixRemittance = "R"
)

// Format returns a record ID like "P-0007".
func Format(prefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// Parse splits "P-0007" into its prefix and sequence number.
func Parse(id string) (prefix string, seq int, err error) {
	prefix, num, ok := strings.Cut(id, "-")
	if !ok || prefix == "" || num == "" {
		return "", 0, fmt.Errorf("invalid record ID format: %q", id)
	}
	seq, err = strconv.Atoi(num)
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in record ID %q: %w", id, err)
	}
	if seq <= 0 {
		return "", 0, fmt.Errorf("invalid sequence in record ID %q", id)
	}
	return prefix, seq, nil
}

// Next returns the next ID after the highest existing one with the same prefix.
// IDs with another prefix or a malformed shape are ignored.
func Next(prefix string, existing []string) string {
	maxSeq := 0
	for _, e := range existing {
		p, seq, err := Parse(e)
		if err != nil || p != prefix {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return Format(prefix, maxSeq+1)
}

// FormatEntryKey returns the depreciation entry key "A-0003/2024".
// There is exactly one entry per key.
func FormatEntryKey(assetID string, fiscalYear int) string {
	return fmt.Sprintf("%s/%04d", assetID, fiscalYear)
}

// ParseEntryKey splits "A-0003/2024" into asset ID and fiscal year.
func ParseEntryKey(key string) (assetID string, fiscalYear int, err error) {
	i := strings.LastIndexByte(key, '/')
	if i <= 0 || i == len(key)-1 {
		return "", 0, fmt.Errorf("invalid entry key format: %q", key)
	}
	fiscalYear, err = strconv.Atoi(key[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid fiscal year in entry key %q: %w", key, err)
	}
	return key[:i], fiscalYear, nil
}
