package main

import (
	"strconv"
	"strings"
)

// measurementFields are target fields carrying counts, scores or
// capacities. Their cells become integers when they parse as one and
// keep the original string otherwise.
var measurementFields = map[string]bool{
	"capacity":     true,
	"initial_seed": true,
	"team1_score":  true,
	"team2_score":  true,
	"goals":        true,
	"assists":      true,
}

// relationFields are target fields that reference another entity's
// primary key without carrying an _id suffix. Alongside these, any
// field ending in _id is treated as a relation.
var relationFields = map[string]bool{
	"team":                     true,
	"game":                     true,
	"player":                   true,
	"pool":                     true,
	"field":                    true,
	"team1":                    true,
	"team2":                    true,
	"scored_by":                true,
	"mvp_female_nomination":    true,
	"mvp_male_nomination":      true,
	"spirit_female_nomination": true,
	"spirit_male_nomination":   true,
}

// booleanFields are target fields with boolean semantics whose legacy
// cells arrive as "1"/"0" or "true"/"True" strings.
var booleanFields = map[string]bool{
	"is_superuser": true,
	"is_staff":     true,
	"is_active":    true,
}

// coerceValue converts a raw dump cell into its canonical fixture
// value for the given target field. It is total: any value that fails
// its conversion is returned as the original string unchanged.
func coerceValue(field, raw string) any {
	switch {
	case measurementFields[field]:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		return raw

	case booleanFields[field]:
		if b, ok := parseBooleanLike(raw); ok {
			return b
		}
		return raw

	case strings.HasSuffix(field, "_id") || relationFields[field]:
		// A relation cell may legitimately be non-numeric in malformed
		// legacy data; keep it as-is rather than guess.
		if isAllDigits(raw) {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return n
			}
		}
		return raw

	default:
		return raw
	}
}

// parseBooleanLike recognizes the boolean encodings the legacy schema
// used. The second return reports whether s was boolean-like at all.
func parseBooleanLike(s string) (bool, bool) {
	switch s {
	case "1", "true", "True":
		return true, true
	case "0", "false", "False":
		return false, true
	}
	return false, false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
