package narrative

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/trial-reconciler/internal/prompts"
	"github.com/jonathan/trial-reconciler/internal/types"
)

// BuildSummaryPrompt renders the executive-summary prompt with the findings
// serialized as JSON.
func BuildSummaryPrompt(findings *types.Findings) (string, error) {
	template, err := prompts.Get("narrative.json", "executive_summary")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal findings: %w", err)
	}

	return prompts.Format(template, map[string]string{
		"Findings": string(data),
	}), nil
}
