package llmclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObjectFindsBraceBalancedObject(t *testing.T) {
	text := `Sure, here you go:\n{"memories": [{"content": "a"}]}\nHope that helps.`
	got := extractJSONObject(text)
	assert.Equal(t, `{"memories": [{"content": "a"}]}`, got)
}

func TestExtractJSONObjectHandlesNestedBracesInsideStrings(t *testing.T) {
	text := `{"reason": "a \"curly {brace}\" inside a string"}`
	got := extractJSONObject(text)
	assert.Equal(t, text, got)
}

func TestExtractJSONObjectNoObjectReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", extractJSONObject("no json here at all"))
}

func TestExtractJSONObjectUnterminatedReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", extractJSONObject(`{"memories": [`))
}

func TestFirstDigit(t *testing.T) {
	assert.Equal(t, "4", firstDigit("I'd rate this a 4 out of 5."))
	assert.Equal(t, "", firstDigit("no numeric rating here"))
	assert.Equal(t, "", firstDigit("a 9 is out of range"), "only 1-5 are valid scores")
	assert.Equal(t, "1", firstDigit("1"))
}
