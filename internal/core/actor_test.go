package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeActor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HUMAN", "HUMAN"},
		{"human", "HUMAN"},
		{" Person ", "HUMAN"},
		{"employee", "HUMAN"},
		{"ERP", "ERP"},
		{"system", "ERP"},
		{"Platform", "ERP"},
		{"AI", "AI"},
		{"llm", "AI"},
		{"Copilot", "AI"},
		{"human+ai", "AI+HUMAN"},
		{"AI + ERP", "AI+ERP"},
		{"erp+ai+human", "AI+ERP+HUMAN"},
		{"HUMAN+ERP", "ERP+HUMAN"},
		{"ai+ai+human", "AI+HUMAN"},
		{"AI++HUMAN", "AI+HUMAN"},
		{"system + person", "ERP+HUMAN"},
		{"AI+banana+HUMAN", "AI+HUMAN"},
		{"AI+banana", "HUMAN"},
		{"AI+AI", "HUMAN"},
		{"+", "HUMAN"},
		{"", "HUMAN"},
		{"banana", "HUMAN"},
		{"A I", "AI"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeActor(tt.input).String())
		})
	}
}

func TestNormalizeActor_Idempotent(t *testing.T) {
	all := []Actor{
		ActorAI, ActorERP, ActorHuman,
		ActorAI | ActorERP, ActorAI | ActorHuman, ActorERP | ActorHuman,
		ActorAI | ActorERP | ActorHuman,
	}
	for _, a := range all {
		assert.True(t, a.Valid())
		assert.Equal(t, a, NormalizeActor(a.String()), "normalize(%s)", a)
		assert.Equal(t, a, NormalizeActor(NormalizeActor(a.String()).String()))
	}
}

func TestNormalizeActor_OrderInsensitive(t *testing.T) {
	perms := []string{
		"ai+erp+human", "AI+HUMAN+ERP", "erp + ai + human",
		"ERP+HUMAN+AI", "human+ai+erp", "Human + Erp + Ai",
	}
	for _, p := range perms {
		assert.Equal(t, ActorAI|ActorERP|ActorHuman, NormalizeActor(p), p)
	}
}

func TestActor_JSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Actor
	}{
		{"string", `"ai+human"`, ActorAI | ActorHuman},
		{"list", `["Human","AI"]`, ActorAI | ActorHuman},
		{"null", `null`, ActorHuman},
		{"number", `7`, ActorHuman},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Actor
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.expected, a)
		})
	}

	out, err := json.Marshal(ActorERP | ActorHuman)
	require.NoError(t, err)
	assert.Equal(t, `"ERP+HUMAN"`, string(out))
}

func TestActor_Members(t *testing.T) {
	assert.Equal(t, []Actor{ActorAI, ActorHuman}, (ActorHuman | ActorAI).Members())
	assert.True(t, (ActorAI | ActorERP).Has(ActorAI))
	assert.False(t, ActorERP.Has(ActorAI))
	assert.False(t, Actor(0).Valid())
	assert.False(t, Actor(8).Valid())
}
