// Package slug derives URL-safe identifiers from free-form names.
package slug

import "strings"

// Make converts a display name into a URL-safe slug: lowercase,
// non [a-z0-9-] characters become hyphens, runs of hyphens collapse,
// and leading/trailing hyphens are trimmed.
func Make(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}

// ForLink builds the share-link key for a company/job pairing.
func ForLink(companyName, jobTitle string) string {
	return Make(companyName) + "/" + Make(jobTitle)
}
