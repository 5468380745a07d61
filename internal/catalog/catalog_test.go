package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatProviders_Order(t *testing.T) {
	var ids []string
	for _, d := range ChatProviders() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"anthropic", "ollama", "openai"}, ids)
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("openai")
	assert.True(t, ok)
	assert.Equal(t, Fast, d.Speed)
	assert.True(t, d.Capabilities.FunctionCalling)

	_, ok = Lookup("skynet")
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 0, Index("anthropic"))
	assert.Equal(t, 2, Index("openai"))
	assert.Equal(t, -1, Index("skynet"))
}

func TestChatProviders_ReturnsCopy(t *testing.T) {
	a := ChatProviders()
	a[0].ID = "mutated"
	b := ChatProviders()
	assert.Equal(t, "anthropic", b[0].ID)
}
