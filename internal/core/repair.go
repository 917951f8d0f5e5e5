package core

import (
	"context"
	"fmt"
)

// RepairSystemPrompt is the system instruction for the repair request.
const RepairSystemPrompt = `You repair truncated or invalid JSON. You output ONLY one complete, valid JSON object. No explanations, no commentary, no markdown fences.

Keep every key and value that is already present. Continue from where the text was cut off, close every open string, array and object, and keep the output no longer than needed.`

// RepairPromptTemplate wraps the partial output verbatim between markers.
const RepairPromptTemplate = `The following output was supposed to be a single JSON object but it is invalid or was cut off.

%s

<<<PARTIAL OUTPUT
%s
PARTIAL OUTPUT>>>

Return the complete, corrected JSON object only.`

// Repairer asks the generation collaborator to complete an invalid response.
type Repairer struct {
	Generator Generator
	Contract  Contract
	MaxTokens int
}

// BuildRepairPrompt renders the user prompt for a repair request.
func BuildRepairPrompt(partial string, contract Contract) string {
	return fmt.Sprintf(RepairPromptTemplate, contract.Describe(), partial)
}

// Repair sends one independent request containing the partial text and
// returns the raw reply. The caller parses it.
func (r *Repairer) Repair(ctx context.Context, partial string) (string, error) {
	contract := r.Contract
	return r.Generator.Generate(ctx, GenerationRequest{
		System:    RepairSystemPrompt,
		User:      BuildRepairPrompt(partial, contract),
		MaxTokens: r.MaxTokens,
		Contract:  &contract,
	})
}
