package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withoutGeminiKey strips GEMINI_API_KEY so the command must fail or use
// the template backend.
func withoutGeminiKey(cmd *exec.Cmd) {
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "GEMINI_API_KEY=") {
			env = append(env, e)
		}
	}
	cmd.Env = env
}

func TestInvestigateCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "investigate")
	withoutGeminiKey(cmd)

	output, err := cmd.CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "GEMINI_API_KEY environment variable is required")
}

func TestInvestigateCommand_TemplateSummarizer(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "investigate", "--summarizer", "template", "--seed", "42")
	withoutGeminiKey(cmd)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	assert.Contains(t, string(output), "CLINICAL TRIAL PAYMENT RECONCILIATION - EXECUTIVE REPORT")
	assert.Contains(t, string(output), "KEY METRICS")
	assert.Contains(t, string(output), "RECOMMENDED ACTIONS")
}

func TestInvestigateCommand_InvalidSummarizer(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "investigate", "--summarizer", "oracle")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "'summarizer' must be")
}
