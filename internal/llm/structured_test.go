package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

type testProposal struct {
	Features []testItem `json:"features"`
	Score    float64    `json:"score"`
}

func TestExtractJSON_CleanJSON(t *testing.T) {
	raw := `{"features":[{"title":"SSO","priority":"high"}],"score":0.95}`
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	require.Len(t, result.Features, 1)
	assert.Equal(t, "SSO", result.Features[0].Title)
	assert.Equal(t, 0.95, result.Score)
}

func TestExtractJSON_FencedJSON(t *testing.T) {
	raw := "```json\n{\"features\":[{\"title\":\"Audit log\"}],\"score\":0.88}\n```"
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Audit log", result.Features[0].Title)
}

func TestExtractJSON_SurroundingText(t *testing.T) {
	raw := "Here are the features:\n{\"features\":[{\"title\":\"Dark mode\"}]}\nHope that helps!"
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Dark mode", result.Features[0].Title)
}

func TestExtractJSON_BareArray(t *testing.T) {
	raw := "Sure:\n[{\"title\":\"Export CSV\",\"priority\":\"low\"},{\"title\":\"Import CSV\"}]"
	result, err := ExtractJSON[[]testItem](raw, nil)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "low", result[0].Priority)
	assert.Equal(t, "Import CSV", result[1].Title)
}

func TestExtractJSON_BracketsInsideStrings(t *testing.T) {
	raw := `{"features":[{"title":"Parse [beta] {flags}"}]}`
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Parse [beta] {flags}", result.Features[0].Title)
}

func TestExtractJSON_MismatchedBrackets(t *testing.T) {
	raw := `{"features":[{"title":"x"}}`
	_, err := ExtractJSON[testProposal](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	raw := "I can't think of any features."
	_, err := ExtractJSON[testProposal](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	raw := `{"features": broken}`
	_, err := ExtractJSON[testProposal](raw, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_CommentsAndLeadingDecimals(t *testing.T) {
	raw := "{\n  // the model explains itself\n  \"features\": [],\n  \"score\": .8 /* confident */\n}"
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.8, result.Score)
}

func TestExtractJSON_ValidationFailure(t *testing.T) {
	raw := `{"features":[{"title":""}]}`
	validator := func(p testProposal) error {
		for _, f := range p.Features {
			if f.Title == "" {
				return fmt.Errorf("feature title is required")
			}
		}
		return nil
	}
	_, err := ExtractJSON(raw, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestExtractJSON_MultipleFences(t *testing.T) {
	raw := "Some text\n```\n{\"features\":[{\"title\":\"Webhooks\"}]}\n```\nMore text"
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Webhooks", result.Features[0].Title)
}

func TestExtractJSON_TrailingCommas(t *testing.T) {
	raw := "{\"features\": [{\"title\": \"Saved cards\",}, {\"title\": \"Guest, checkout\"},\n],}"
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	require.Len(t, result.Features, 2)
	assert.Equal(t, "Guest, checkout", result.Features[1].Title, "commas inside strings are kept")
}

func TestExtractJSON_CommentWithQuote(t *testing.T) {
	raw := "{\n  \"score\": -.3, // the \"raw\" score\n  \"features\": [{\"title\": \"a // b\"}]\n}"
	result, err := ExtractJSON[testProposal](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, -0.3, result.Score)
	assert.Equal(t, "a // b", result.Features[0].Title)
}

func TestTidyJSON(t *testing.T) {
	assert.Equal(t, `{"a":[1,2]}`, tidyJSON(`{"a":[1,2,]}`))
	assert.Equal(t, `{"a":0.5}`, tidyJSON(`{"a":.5}`))
	assert.Equal(t, `{"a":".5,]"}`, tidyJSON(`{"a":".5,]"}`))
}
