package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObject_CleanInputMatchesStrictDecode(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"a":1}`,
		`{"today_steps":[{"label":"x","actor":"HUMAN"}],"nested":{"k":[1,2,{"z":null}]}}`,
		"  \n{\"a\":\"brace } in string\"}\n\t",
		`{"escaped":"quote \" and backslash \\"}`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			obj, err := ParseObject(in)
			require.NoError(t, err)

			var want map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(in), &want))
			if diff := cmp.Diff(want, obj.Fields); diff != "" {
				t.Errorf("ParseObject() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseObject_EmbeddedObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "leading prose",
			input: `Sure! Here is the JSON: {"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "trailing prose",
			input: `{"a":1} Let me know if you need anything else.`,
			want:  `{"a":1}`,
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"a\":{\"b\":2}}\n```",
			want:  `{"a":{"b":2}}`,
		},
		{
			name:  "braces inside strings",
			input: `Result: {"label":"use } and { freely","n":1} done`,
			want:  `{"label":"use } and { freely","n":1}`,
		},
		{
			name:  "escaped quote before brace",
			input: `x {"label":"say \"}\" now","n":2} y`,
			want:  `{"label":"say \"}\" now","n":2}`,
		},
		{
			name:  "escaped backslash ends string",
			input: `x {"path":"C:\\","n":3} {"second":true}`,
			want:  `{"path":"C:\\","n":3}`,
		},
		{
			name:  "only first of two objects",
			input: `{"first":1}{"second":2}`,
			want:  `{"first":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseObject(tt.input)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(obj.Raw))
		})
	}
}

func TestParseObject_Failures(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", "", ReasonNoObject},
		{"prose only", "I cannot help with that.", ReasonNoObject},
		{"truncated mid array", `{"today_steps":[{"label":"a"},{"label":`, ReasonNoObject},
		{"truncated inside string", `Sure {"a":"unterminated`, ReasonNoObject},
		{"unbalanced after prose", `Here: {"a":{"b":1}`, ReasonNoObject},
		{"balanced but invalid", `{"a":1,}`, ReasonMalformed},
		{"first candidate invalid", `use {braces} then {"a":1}`, ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseObject(tt.input)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.reason, pe.Reason)
			assert.Equal(t, tt.input, pe.Raw)
		})
	}
}

func TestParseObject_ScalarsAndListsAreNotObjects(t *testing.T) {
	for _, in := range []string{`null`, `42`, `"text"`, `[1,2]`, `true`} {
		_, err := ParseObject(in)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, "input %s", in)
	}

	obj, err := ParseObject(`[{"a":1}]`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(obj.Raw))
}

func TestFirstBalancedObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"simple", `{"a":1}`, `{"a":1}`, true},
		{"nested", `{"a":{"b":{}}}`, `{"a":{"b":{}}}`, true},
		{"empty object", `xx{}yy`, `{}`, true},
		{"no brace", `none`, "", false},
		{"incomplete", `{"a":{"b":1}`, "", false},
		{"stray closer first", `} {"a":1}`, `{"a":1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstBalancedObject(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
