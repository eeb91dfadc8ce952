package nerdgraph

import "encoding/json"

// EntityRef identifies a monitored entity. Two provenances exist: the
// declared reference attached to an alert condition by the remote system
// (allowed to be stale) and the resolved reference looked up by GUID at
// enrichment time, which always supersedes the declared one.
type EntityRef struct {
	GUID   string `json:"guid"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// ThresholdTerm is one threshold rule of an alert condition. Immutable
// once fetched.
type ThresholdTerm struct {
	Operator             string  `json:"operator"`
	Threshold            float64 `json:"threshold"`
	Priority             string  `json:"priority,omitempty"`
	ThresholdDuration    int     `json:"thresholdDuration,omitempty"`
	ThresholdOccurrences int     `json:"thresholdOccurrences,omitempty"`
}

// NRQLQuery carries the free-text filter expression of a condition.
type NRQLQuery struct {
	Query string `json:"query"`
}

// AlertCondition is a read-only snapshot of one NRQL alert condition,
// augmented in memory with ResolvedEntity and FormattedTerms before the
// response is sent. Never persisted.
type AlertCondition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Enabled     bool            `json:"enabled"`
	Type        string          `json:"type,omitempty"`
	RunbookURL  string          `json:"runbookUrl,omitempty"`
	PolicyID    string          `json:"policyId,omitempty"`
	PolicyName  string          `json:"policyName,omitempty"`
	NRQL        NRQLQuery       `json:"nrql"`
	Terms       []ThresholdTerm `json:"terms,omitempty"`
	// Entity is the declared reference; may be stale or absent.
	Entity *EntityRef `json:"entity,omitempty"`
	// ResolvedEntity is the authoritative reference recovered at
	// enrichment time. The JSON key matches the original dashboard API.
	ResolvedEntity *EntityRef `json:"realEntity,omitempty"`
	FormattedTerms string     `json:"formattedTerms,omitempty"`
}

// Policy is an identifier → name lookup row; no further structure.
type Policy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Envelope is the NerdGraph response wrapper. A missing data path or the
// presence of errors is a soft failure, never a hard fault.
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []QueryError    `json:"errors,omitempty"`
}

// QueryError is one entry of the response-level errors array.
type QueryError struct {
	Message string `json:"message"`
}
