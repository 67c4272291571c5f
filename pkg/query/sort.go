package query

import "strings"

// SortField is a single ordering term. Field is a view name.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields parses "a,-b" into ascending a, descending b.
// Blank entries are skipped.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	fields := make([]SortField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		desc := false
		if strings.HasPrefix(part, "-") {
			desc = true
			part = strings.TrimPrefix(part, "-")
		} else if strings.HasPrefix(part, "+") {
			part = strings.TrimPrefix(part, "+")
		}

		if part == "" {
			continue
		}

		fields = append(fields, SortField{Field: part, Descending: desc})
	}

	return fields
}
