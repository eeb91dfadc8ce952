// Package correlation implements the alert–entity correlation engine:
// identifier recovery from NRQL text, bounded enrichment of alert
// conditions with resolved entity metadata, bidirectional alert↔entity
// matching, and threshold term formatting.
package correlation

import (
	"regexp"

	"github.com/alertlens/alertlens/internal/nerdgraph"
)

// guidClause is the identifier grammar recovered from NRQL filter text:
//
//	keyword  = "entity.guid" | "entity guid" | "entityGuid" | "guid"   (case-insensitive)
//	operator = "IN (" | "="
//	value    = single- or double-quoted string
//
// The grammar is a stable parser contract; the regexp is an implementation
// detail that can be swapped for a tokenizer if precision issues arise.
var guidClause = regexp.MustCompile(`(?i)(?:entity[. ]?guid|entityGuid|guid)\s*(?:IN\s*\(|=)\s*['"]([^'"]+)['"]`)

// ExtractGUIDs returns every entity GUID embedded in the given NRQL text,
// in order of occurrence. Duplicates are kept; deduplication happens
// downstream. Malformed or empty text yields an empty result.
func ExtractGUIDs(nrql string) []string {
	if nrql == "" {
		return nil
	}
	matches := guidClause.FindAllStringSubmatch(nrql, -1)
	if len(matches) == 0 {
		return nil
	}
	guids := make([]string, 0, len(matches))
	for _, m := range matches {
		guids = append(guids, m[1])
	}
	return guids
}

// EffectiveGUID returns the identifier an alert condition really targets:
// the first GUID extracted from its NRQL text, else the declared entity
// reference's GUID, else empty. Conditions with no effective GUID can only
// be matched by the name-substring fallback.
func EffectiveGUID(cond *nerdgraph.AlertCondition) string {
	if guids := ExtractGUIDs(cond.NRQL.Query); len(guids) > 0 {
		return guids[0]
	}
	if cond.Entity != nil {
		return cond.Entity.GUID
	}
	return ""
}
