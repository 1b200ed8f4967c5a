package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lightfold/statefx/intent"
)

func TestCorrelator_ResolveConsumesToken(t *testing.T) {
	c := intent.NewCorrelator()

	tok := c.Issue()
	assert.True(t, c.Pending(tok))
	assert.True(t, c.Resolve(tok))
	assert.False(t, c.Pending(tok))
	assert.False(t, c.Resolve(tok), "duplicate resolution must be rejected")
}

func TestCorrelator_StaleTokenRejected(t *testing.T) {
	c := intent.NewCorrelator()
	_ = c.Issue()

	assert.False(t, c.Resolve(intent.NewToken()))
}

func TestCorrelator_TokensAreIndependent(t *testing.T) {
	c := intent.NewCorrelator()

	first := c.Issue()
	second := c.Issue()

	assert.True(t, c.Resolve(second))
	assert.True(t, c.Pending(first), "resolving one token must not resolve another")
}

func TestCorrelator_DropInvalidatesWithoutResolving(t *testing.T) {
	c := intent.NewCorrelator()

	tok := c.Issue()
	c.Drop(tok)
	assert.False(t, c.Resolve(tok))
}

func TestCorrelator_ClearInvalidatesAll(t *testing.T) {
	c := intent.NewCorrelator()

	first := c.Issue()
	second := c.Issue()
	c.Clear()

	assert.False(t, c.Resolve(first))
	assert.False(t, c.Resolve(second))
}
