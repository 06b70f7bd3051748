package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const documentPrefix = "pdfs/"

// deriveDocumentPath builds the deterministic blob-store key for a
// proposal document. Edits re-derive the same key when customer, date,
// revision and tag are unchanged, which makes overwrite-in-place safe.
func deriveDocumentPath(customerName string, date time.Time, revision, tag string) string {
	path := fmt.Sprintf("%sProposta-Automatize-%s-%s-REV%s",
		documentPrefix,
		normalizeToken(customerName),
		date.Format("02012006"),
		strings.TrimSpace(revision),
	)
	if normalized := normalizeToken(tag); normalized != "" {
		path += "-" + normalized
	}
	return path + ".pdf"
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeToken strips diacritics and squeezes everything outside
// [A-Za-z0-9] into single dashes.
func normalizeToken(input string) string {
	stripped, _, err := transform.String(stripDiacritics, input)
	if err != nil {
		stripped = input
	}

	var builder strings.Builder
	lastDash := true
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				builder.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(builder.String(), "-")
}

// blobPathFromURL recovers the storage key from a stored document link.
// Returns "" when the link does not point into the pdfs namespace.
func blobPathFromURL(url string) string {
	idx := strings.Index(url, documentPrefix)
	if idx < 0 {
		return ""
	}
	return url[idx:]
}
