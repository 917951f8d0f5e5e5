package core

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Actor is the owner of a workflow step: one of the canonical singles or an
// unordered combination of them.
type Actor uint8

const (
	ActorAI Actor = 1 << iota
	ActorERP
	ActorHuman
)

// canonicalOrder is the order members appear in a composite.
var canonicalOrder = []struct {
	actor Actor
	name  string
}{
	{ActorAI, "AI"},
	{ActorERP, "ERP"},
	{ActorHuman, "HUMAN"},
}

var actorSynonyms = map[string]Actor{
	"HUMAN": ActorHuman, "HUMANS": ActorHuman, "PERSON": ActorHuman, "PEOPLE": ActorHuman,
	"USER": ActorHuman, "MANUAL": ActorHuman, "EMPLOYEE": ActorHuman, "STAFF": ActorHuman,
	"TEAM": ActorHuman, "OPERATOR": ActorHuman,

	"ERP": ActorERP, "SYSTEM": ActorERP, "SYSTEMS": ActorERP, "SYS": ActorERP,
	"APP": ActorERP, "APPLICATION": ActorERP, "SOFTWARE": ActorERP, "PLATFORM": ActorERP,
	"WORKFLOW": ActorERP,

	"AI": ActorAI, "LLM": ActorAI, "GENAI": ActorAI, "AGENT": ActorAI, "COPILOT": ActorAI,
	"ML": ActorAI, "BOT": ActorAI, "ASSISTANT": ActorAI, "MODEL": ActorAI, "AUTOMATION": ActorAI,
}

// NormalizeActor maps free text to a canonical actor. It never fails:
// empty, unknown and invalid composite input all yield ActorHuman.
func NormalizeActor(raw string) Actor {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)

	if a, ok := actorSynonyms[cleaned]; ok {
		return a
	}

	if strings.Contains(cleaned, "+") {
		var set Actor
		members := 0
		for _, part := range strings.Split(cleaned, "+") {
			a, ok := actorSynonyms[part]
			if !ok || set&a != 0 {
				continue
			}
			set |= a
			members++
		}
		if members >= 2 {
			return set
		}
	}

	return ActorHuman
}

// Has reports whether a includes every member of other.
func (a Actor) Has(other Actor) bool {
	return other != 0 && a&other == other
}

// Valid reports whether a is one of the seven canonical values.
func (a Actor) Valid() bool {
	return a != 0 && a&^(ActorAI|ActorERP|ActorHuman) == 0
}

// Members returns the canonical singles in canonical order.
func (a Actor) Members() []Actor {
	var out []Actor
	for _, c := range canonicalOrder {
		if a&c.actor != 0 {
			out = append(out, c.actor)
		}
	}
	return out
}

func (a Actor) String() string {
	var parts []string
	for _, c := range canonicalOrder {
		if a&c.actor != 0 {
			parts = append(parts, c.name)
		}
	}
	if len(parts) == 0 {
		return "HUMAN"
	}
	return strings.Join(parts, "+")
}

func (a Actor) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a string, a list of strings or null.
func (a *Actor) UnmarshalJSON(data []byte) error {
	*a = NormalizeActor(actorText(data))
	return nil
}

// actorText flattens the JSON forms models use for actors into "A+B" text.
func actorText(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return strings.Join(list, "+")
	}
	return ""
}
