// Package content assembles the embeddable text of a course and fingerprints it
// for idempotency checks. The worker and the change detection must always hash
// the exact same string, so AssembleCourseText is the only place that builds it.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Fingerprint returns the sha256 hex digest of the trimmed, lowercased content.
// Deterministic: the same content always yields the same digest.
func Fingerprint(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(normalized))

	return hex.EncodeToString(sum[:])
}

// Changed reports whether newText differs from the content that produced
// existingHash. A nil or empty existing hash always counts as changed.
func Changed(newText string, existingHash *string) bool {
	if existingHash == nil || *existingHash == "" {
		return true
	}

	return Fingerprint(newText) != *existingHash
}

// AssembleCourseText joins the non-empty text fields of a course with " | ",
// flattening tags to a comma-separated list and collapsing whitespace runs.
// The result is both the embedding input and the fingerprint input.
func AssembleCourseText(title string, description, category *string, tags []string) string {
	parts := make([]string, 0, 4)

	if s := strings.TrimSpace(title); s != "" {
		parts = append(parts, s)
	}

	if description != nil {
		if s := strings.TrimSpace(*description); s != "" {
			parts = append(parts, s)
		}
	}

	if category != nil {
		if s := strings.TrimSpace(*category); s != "" {
			parts = append(parts, s)
		}
	}

	if len(tags) > 0 {
		kept := make([]string, 0, len(tags))
		for _, tag := range tags {
			if t := strings.TrimSpace(tag); t != "" {
				kept = append(kept, t)
			}
		}

		if len(kept) > 0 {
			parts = append(parts, strings.Join(kept, ", "))
		}
	}

	joined := strings.Join(parts, " | ")

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(joined, " "))
}
