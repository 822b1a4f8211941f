// Package fingerprint computes the content hashes used to deduplicate
// documents and to key cached analyses.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Size is the length of a fingerprint in hex characters.
const Size = sha256.Size * 2

// Normalize lower-cases the text and collapses every run of whitespace,
// line breaks included, into a single space. Two texts that differ only in
// case or spacing normalize to the same string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Of returns the fingerprint of the normalized text.
func Of(text string) string {
	return Sum(Normalize(text))
}

// Sum hashes text as is, without normalization.
func Sum(text string) string {
	return HashBytes([]byte(text))
}

func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short returns a prefix suitable for log fields.
func Short(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
