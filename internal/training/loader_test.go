package training

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBank = `
1. What is phishing?
An attempt to obtain sensitive information
by impersonating a trustworthy party.

2. What does MFA stand for?
Multi-factor authentication.

3. Question with no answer yet?
`

func TestParseQuestionBank(t *testing.T) {
	questions, err := ParseQuestionBank(strings.NewReader(sampleBank))
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, 1, questions[0].Number)
	assert.Equal(t, "What is phishing?", questions[0].Question)
	assert.Equal(t,
		"An attempt to obtain sensitive information by impersonating a trustworthy party.",
		questions[0].Answer)
	assert.Equal(t, 1, questions[0].Level)
	assert.Equal(t, "general", questions[0].Module)

	assert.Equal(t, 2, questions[1].Number)
	assert.Equal(t, "Multi-factor authentication.", questions[1].Answer)

	assert.Equal(t, 3, questions[2].Number)
	assert.Empty(t, questions[2].Answer)
}

func TestParseQuestionBank_Empty(t *testing.T) {
	_, err := ParseQuestionBank(strings.NewReader("no numbered questions here"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no questions detected")
}

func TestParseQuestionBank_WindowsLineEndings(t *testing.T) {
	bank := strings.ReplaceAll(sampleBank, "\n", "\r\n")
	questions, err := ParseQuestionBank(strings.NewReader(bank))
	require.NoError(t, err)
	assert.Len(t, questions, 3)
}
