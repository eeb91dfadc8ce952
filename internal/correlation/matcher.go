package correlation

import (
	"strings"

	"github.com/alertlens/alertlens/internal/nerdgraph"
)

// CorrelationResult is the per-entity record of the correlated view:
// identity, friendliness-normalized type label, and the matched alert
// condition names. Derived per request, never persisted.
type CorrelationResult struct {
	GUID       string   `json:"guid"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	HasAlerts  bool     `json:"hasAlerts"`
	AlertNames []string `json:"alertNames"`
}

// TypeKey addresses the friendly-label table by raw entity type and
// owning domain.
type TypeKey struct {
	Type   string
	Domain string
}

// DefaultTypeLabels is the versioned (raw type × domain) → display label
// table. Adding a new entity type is a data change, not a code change;
// pairs with no entry keep their raw type.
func DefaultTypeLabels() map[TypeKey]string {
	return map[TypeKey]string{
		{Type: "APPLICATION", Domain: "APM"}:         "APM Service",
		{Type: "APPLICATION", Domain: "BROWSER"}:     "Browser App",
		{Type: "APPLICATION", Domain: "MOBILE"}:      "Mobile App",
		{Type: "HOST", Domain: "INFRA"}:              "Infrastructure Host",
		{Type: "CONTAINER", Domain: "INFRA"}:         "Container",
		{Type: "KUBERNETESCLUSTER", Domain: "INFRA"}: "Kubernetes Cluster",
		{Type: "MONITOR", Domain: "SYNTH"}:           "Synthetic Monitor",
		{Type: "WORKLOAD", Domain: "NR1"}:            "Workload",
		{Type: "DASHBOARD", Domain: "VIZ"}:           "Dashboard",
		{Type: "SERVICE", Domain: "EXT"}:             "External Service",
	}
}

// Matcher cross-references entities and alert conditions using a primary
// exact-GUID strategy and a secondary name-substring fallback.
type Matcher struct {
	labels map[TypeKey]string
}

// NewMatcher creates a matcher with the given label table; nil uses
// DefaultTypeLabels.
func NewMatcher(labels map[TypeKey]string) *Matcher {
	if labels == nil {
		labels = DefaultTypeLabels()
	}
	return &Matcher{labels: labels}
}

// Correlate produces one CorrelationResult per input entity, in input
// order. Primary match: the condition's GUID set (extracted from NRQL text
// plus the declared reference) contains the entity's GUID. Fallback, only when
// the primary match is empty: the entity's lowercased name appears as a
// substring of the condition's lowercased NRQL text or name. The fallback
// exists because recorded GUIDs can reference entities recreated under a
// new GUID but the same human name. Matched names are deduplicated in
// first-seen order.
func (m *Matcher) Correlate(entities []nerdgraph.EntityRef, conds []nerdgraph.AlertCondition) []CorrelationResult {
	index := buildGUIDIndex(conds)

	results := make([]CorrelationResult, 0, len(entities))
	for i := range entities {
		ent := &entities[i]
		names := index[ent.GUID]
		if len(names) == 0 {
			names = nameFallback(ent, conds)
		}
		names = dedupe(names)
		results = append(results, CorrelationResult{
			GUID:       ent.GUID,
			Name:       ent.Name,
			Type:       m.FriendlyType(ent),
			HasAlerts:  len(names) > 0,
			AlertNames: names,
		})
	}
	return results
}

// FriendlyType normalizes an entity's raw type to its display label;
// unmapped (type, domain) pairs keep the raw type.
func (m *Matcher) FriendlyType(ent *nerdgraph.EntityRef) string {
	if label, ok := m.labels[TypeKey{Type: ent.Type, Domain: ent.Domain}]; ok {
		return label
	}
	return ent.Type
}

// buildGUIDIndex maps every GUID a condition references (extracted from
// its NRQL text plus the declared entity reference) to the condition's
// name.
func buildGUIDIndex(conds []nerdgraph.AlertCondition) map[string][]string {
	index := make(map[string][]string)
	for i := range conds {
		cond := &conds[i]
		guids := ExtractGUIDs(cond.NRQL.Query)
		if cond.Entity != nil && cond.Entity.GUID != "" {
			guids = append(guids, cond.Entity.GUID)
		}
		for _, guid := range dedupe(guids) {
			index[guid] = append(index[guid], cond.Name)
		}
	}
	return index
}

// nameFallback scans every condition for the entity name as a
// case-insensitive substring of its NRQL text or its own name. Both sides
// are lowercased; no further normalization is applied.
func nameFallback(ent *nerdgraph.EntityRef, conds []nerdgraph.AlertCondition) []string {
	name := strings.ToLower(ent.Name)
	if name == "" {
		return nil
	}
	var matched []string
	for i := range conds {
		cond := &conds[i]
		if strings.Contains(strings.ToLower(cond.NRQL.Query), name) ||
			strings.Contains(strings.ToLower(cond.Name), name) {
			matched = append(matched, cond.Name)
		}
	}
	return matched
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
