package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractFor(t *testing.T) {
	lens := ContractFor(ModeLens)
	today, ok := lens.Field("today_steps")
	require.True(t, ok)
	assert.Equal(t, 6, today.Min)
	assert.Equal(t, 10, today.Max)
	assert.True(t, today.Required)

	mapping := ContractFor(ModeMapping)
	future, ok := mapping.Field("future_steps")
	require.True(t, ok)
	assert.Equal(t, 4, future.Min)
	assert.Equal(t, 12, future.Max)

	mappedToday, ok := mapping.Field("today_steps")
	require.True(t, ok)
	assert.Equal(t, MaxMappedSteps, mappedToday.Max, "every supplied step survives the cap")

	opp, ok := mapping.Field("opportunities")
	require.True(t, ok)
	assert.False(t, opp.Required)

	_, ok = lens.Field("nope")
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLens, m)

	m, err = ParseMode(" Mapping ")
	require.NoError(t, err)
	assert.Equal(t, ModeMapping, m)

	_, err = ParseMode("poster")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestContract_Describe(t *testing.T) {
	desc := ContractFor(ModeLens).Describe()
	for _, want := range []string{
		"today_steps (array of step objects, required, 6-10 entries)",
		"future_steps (array of step objects, required, 6-10 entries)",
		"kpis (array of strings, required, 4-8 entries)",
		"notes (array of strings, optional, 0-3 entries)",
		"with keys: id, label, actor, intent, maps_to, detail",
		"Step labels are 1-3 words",
		"AI+HUMAN",
	} {
		assert.Contains(t, desc, want)
	}
}

func TestContract_Check(t *testing.T) {
	contract := ContractFor(ModeLens)

	t.Run("valid", func(t *testing.T) {
		obj, err := ParseObject(mustJSON(lensFixture(6, 6, "AI+HUMAN")))
		require.NoError(t, err)
		assert.NoError(t, contract.Check(obj))
	})

	t.Run("future below minimum", func(t *testing.T) {
		obj, err := ParseObject(mustJSON(lensFixture(6, 3, "AI")))
		require.NoError(t, err)

		err = contract.Check(obj)
		var sv *SchemaViolation
		require.ErrorAs(t, err, &sv)
		assert.Equal(t, []string{"future_steps: 3 entries, need at least 6"}, sv.Problems)
		assert.NotEmpty(t, sv.Raw)
	})

	t.Run("missing and mistyped fields reported together", func(t *testing.T) {
		fixture := lensFixture(6, 6, "AI")
		delete(fixture, "today_steps")
		fixture["kpis"] = "faster close"
		fixture["deltas"] = map[string]any{"a": 1}
		obj, err := ParseObject(mustJSON(fixture))
		require.NoError(t, err)

		err = contract.Check(obj)
		var sv *SchemaViolation
		require.ErrorAs(t, err, &sv)
		assert.ElementsMatch(t, []string{
			"today_steps: required field missing",
			"kpis: expected array of strings",
			"deltas: expected array of strings",
		}, sv.Problems)
	})

	t.Run("optional fields of another shape pass", func(t *testing.T) {
		fixture := lensFixture(6, 6, "AI")
		fixture["notes"] = "No further notes."
		fixture["glossary"] = map[string]any{"term": "GL", "definition": "General ledger"}
		obj, err := ParseObject(mustJSON(fixture))
		require.NoError(t, err)
		assert.NoError(t, contract.Check(obj))
	})

	t.Run("null counts as missing", func(t *testing.T) {
		fixture := lensFixture(6, 6, "AI")
		fixture["future_steps"] = nil
		obj, err := ParseObject(mustJSON(fixture))
		require.NoError(t, err)
		assert.Error(t, contract.Check(obj))
	})

	t.Run("above maximum is not a violation", func(t *testing.T) {
		obj, err := ParseObject(mustJSON(lensFixture(14, 6, "AI")))
		require.NoError(t, err)
		assert.NoError(t, contract.Check(obj))
	})
}
