package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c, err := NewCounter("", "cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, "cl100k_base", c.Name())

	n, err := c.Count("hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Count("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCounterForModel(t *testing.T) {
	c, err := NewCounter("gpt-4", "")
	require.NoError(t, err)
	assert.Equal(t, "cl100k_base", c.Name())
}

func TestUnknownEncoding(t *testing.T) {
	_, err := NewCounter("", "no_such_encoding")
	assert.Error(t, err)
}
