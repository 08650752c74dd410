package models

import "strings"

// DeriveDisplayName computes the display name for a person from its name
// parts. Fallback chain: preferred name, then a composition of
// first/middle/last, then the legacy single name field.
func DeriveDisplayName(p *Person) string {
	if name := strings.TrimSpace(p.PreferredName); name != "" {
		return name
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}

	return "Unnamed"
}
