package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "helene lefevre", SearchKey("Hélène", "Lefèvre"))
	assert.Equal(t, "francois garcon", SearchKey("  François   GARÇON "))
	assert.Equal(t, SearchKey("Œuvre"), SearchKey("Œuvre"))
	assert.Equal(t, "", SearchKey())
}
