package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alertlens/alertlens/internal/nerdgraph"
)

func TestExtractGUIDs_SingleEqualsClause(t *testing.T) {
	nrql := `SELECT count(*) FROM Transaction WHERE entity.guid = 'MXxBUE18QVBQTElDQVRJT058MQ'`
	assert.Equal(t, []string{"MXxBUE18QVBQTElDQVRJT058MQ"}, ExtractGUIDs(nrql))
}

func TestExtractGUIDs_InClause(t *testing.T) {
	nrql := `SELECT average(duration) FROM Transaction WHERE entityGuid IN ('g-one', 'g-two')`
	// Only the first quoted value of the IN list belongs to the clause;
	// the grammar matches keyword + opening paren + first value.
	assert.Equal(t, []string{"g-one"}, ExtractGUIDs(nrql))
}

func TestExtractGUIDs_MultipleOccurrencesInSourceOrder(t *testing.T) {
	nrql := `SELECT * FROM Metric WHERE entity.guid = 'first' OR guid = "second" OR entityGuid = 'third'`
	assert.Equal(t, []string{"first", "second", "third"}, ExtractGUIDs(nrql))
}

func TestExtractGUIDs_CaseInsensitiveKeywords(t *testing.T) {
	nrql := `WHERE ENTITY.GUID = 'upper' AND Guid = 'mixed'`
	assert.Equal(t, []string{"upper", "mixed"}, ExtractGUIDs(nrql))
}

func TestExtractGUIDs_DuplicatesKept(t *testing.T) {
	nrql := `WHERE guid = 'same' OR guid = 'same'`
	// Deduplication happens downstream, not at this layer.
	assert.Equal(t, []string{"same", "same"}, ExtractGUIDs(nrql))
}

func TestExtractGUIDs_EmptyText(t *testing.T) {
	assert.Empty(t, ExtractGUIDs(""))
}

func TestExtractGUIDs_NoClause(t *testing.T) {
	assert.Empty(t, ExtractGUIDs(`SELECT count(*) FROM Transaction WHERE appName = 'checkout-svc'`))
}

func TestExtractGUIDs_MalformedClause(t *testing.T) {
	// Unquoted value does not satisfy the grammar; must not panic.
	assert.Empty(t, ExtractGUIDs(`WHERE entity.guid = MXxBUE18`))
}

func TestEffectiveGUID_ExtractedWinsOverDeclared(t *testing.T) {
	cond := &nerdgraph.AlertCondition{
		NRQL:   nerdgraph.NRQLQuery{Query: `WHERE entity.guid = 'from-nrql'`},
		Entity: &nerdgraph.EntityRef{GUID: "declared"},
	}
	assert.Equal(t, "from-nrql", EffectiveGUID(cond))
}

func TestEffectiveGUID_DeclaredFallback(t *testing.T) {
	cond := &nerdgraph.AlertCondition{
		NRQL:   nerdgraph.NRQLQuery{Query: `SELECT count(*) FROM Transaction`},
		Entity: &nerdgraph.EntityRef{GUID: "declared"},
	}
	assert.Equal(t, "declared", EffectiveGUID(cond))
}

func TestEffectiveGUID_Absent(t *testing.T) {
	cond := &nerdgraph.AlertCondition{
		NRQL: nerdgraph.NRQLQuery{Query: `SELECT count(*) FROM Transaction`},
	}
	assert.Empty(t, EffectiveGUID(cond))
}
