package randid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	id := Generate(6)
	assert.Len(t, id, 6)
	assert.Regexp(t, `^[a-z0-9]+$`, id)
	assert.NotEqual(t, id, Generate(6))
}
